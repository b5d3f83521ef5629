package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

func TestReportService_BuildRegisterScopesBranch(t *testing.T) {
	invoices := newFakeInvoiceRepo()
	payments := &fakePaymentRepo{}
	svc := NewReportService(invoices, payments, zap.NewNop())

	ours := &entity.Invoice{BranchID: 1, InvoiceNumber: "INV-20240301-0001", Status: entity.InvoiceStatusIssued}
	require.NoError(t, invoices.Create(context.Background(), ours))
	theirs := &entity.Invoice{BranchID: 2, InvoiceNumber: "INV-20240301-0009", Status: entity.InvoiceStatusIssued}
	require.NoError(t, invoices.Create(context.Background(), theirs))

	require.NoError(t, payments.Create(context.Background(), &entity.InvoicePayment{
		InvoiceID: ours.ID, Amount: decimal.NewFromInt(300),
	}))
	require.NoError(t, payments.Create(context.Background(), &entity.InvoicePayment{
		InvoiceID: ours.ID, Amount: decimal.NewFromInt(200),
	}))

	data, err := svc.BuildRegister(context.Background(), 1)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Invoice Register")
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus the one branch-1 invoice")
	assert.Equal(t, "INV-20240301-0001", rows[1][0])
	assert.Equal(t, "500", rows[1][8], "payments summed")
}
