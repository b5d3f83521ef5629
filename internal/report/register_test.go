package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

func TestWriteRegister(t *testing.T) {
	orderID := int64(7)
	rows := []RegisterRow{
		{
			Invoice: &entity.Invoice{
				InvoiceNumber: "INV-20240301-0001",
				Reference:     "GAR-42",
				InvoiceDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
				CustomerID:    5,
				OrderID:       &orderID,
				Subtotal:      decimal.NewFromInt(1000),
				TaxAmount:     decimal.NewFromInt(160),
				TotalAmount:   decimal.NewFromInt(1160),
				Status:        entity.InvoiceStatusIssued,
				SellerName:    "Autofix Garage",
			},
			Paid: decimal.NewFromInt(500),
		},
		{
			Invoice: &entity.Invoice{
				InvoiceNumber: "INV-20240301-0002",
				InvoiceDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
				CustomerID:    6,
				Status:        entity.InvoiceStatusDraft,
			},
			Paid: decimal.Zero,
		},
	}

	data, err := WriteRegister(rows)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{registerSheet}, f.GetSheetList())

	got, err := f.GetRows(registerSheet)
	require.NoError(t, err)
	require.Len(t, got, 3, "header plus two invoice rows")

	assert.Equal(t, registerHeaders, got[0])
	assert.Equal(t, "INV-20240301-0001", got[1][0])
	assert.Equal(t, "2024-03-01", got[1][2])
	assert.Equal(t, "7", got[1][4])
	assert.Equal(t, "1160", got[1][7])
	assert.Equal(t, "500", got[1][8])

	assert.Equal(t, "INV-20240301-0002", got[2][0])
	if len(got[2]) > 4 {
		assert.Equal(t, "", got[2][4], "no order linked")
	}
}

func TestWriteRegister_EmptyRows(t *testing.T) {
	data, err := WriteRegister(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(registerSheet)
	require.NoError(t, err)
	require.Len(t, got, 1, "header only")
}
