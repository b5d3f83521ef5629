// Package report renders invoice data into spreadsheet form.
package report

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

const registerSheet = "Invoice Register"

var registerHeaders = []string{
	"Invoice Number", "Reference", "Invoice Date", "Customer ID", "Order ID",
	"Subtotal", "Tax", "Total", "Paid", "Status", "Seller",
}

// RegisterRow is one invoice with its accumulated payment amount.
type RegisterRow struct {
	Invoice *entity.Invoice
	Paid    decimal.Decimal
}

// WriteRegister renders the invoice register workbook: one row per invoice
// with totals and payment state.
func WriteRegister(rows []RegisterRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(registerSheet)
	if err != nil {
		return nil, fmt.Errorf("create register sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("remove default sheet: %w", err)
	}

	for col, h := range registerHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(registerSheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header %q: %w", h, err)
		}
	}

	for i, row := range rows {
		inv := row.Invoice
		orderID := ""
		if inv.OrderID != nil {
			orderID = fmt.Sprintf("%d", *inv.OrderID)
		}
		values := []interface{}{
			inv.InvoiceNumber,
			inv.Reference,
			inv.InvoiceDate.Format("2006-01-02"),
			inv.CustomerID,
			orderID,
			inv.Subtotal.String(),
			inv.TaxAmount.String(),
			inv.TotalAmount.String(),
			row.Paid.String(),
			inv.Status,
			inv.SellerName,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(registerSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
