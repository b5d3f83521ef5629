package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

func TestParseInvoiceDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.Local)

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"day first slash", "05/03/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{"day first dash", "05-03-2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{"iso", "2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{"two digit year", "05/03/24", time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{"empty defaults to today", "", time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)},
		{"garbage defaults to today", "next tuesday", time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInvoiceDate(tt.raw, now))
		})
	}
}

func newReconcilerFixture() (*InvoiceReconciler, *fakeInvoiceRepo, *fakePaymentRepo) {
	invoices := newFakeInvoiceRepo()
	payments := &fakePaymentRepo{}
	return NewInvoiceReconciler(invoices, payments, zap.NewNop()), invoices, payments
}

func baseReconcileInput(order *entity.Order) ReconcileInput {
	return ReconcileInput{
		BranchID: 1,
		Order:    order,
		Customer: &entity.Customer{ID: 5, FullName: "Test Customer", Phone: "0711"},
		Header: entity.ExtractionHeader{
			InvoiceNo: "GAR-0042",
			Date:      "05/03/2024",
			Subtotal:  "1000",
			Tax:       "160",
			Total:     "1160",
		},
		Items: []AggregatedLineItem{
			{Description: "Brake service", Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1000)},
		},
		ReferencePrefix: "UPLOAD",
		SubmittedBy:     "tester",
	}
}

func TestReconciler_CreatesInvoice(t *testing.T) {
	reconciler, invoices, payments := newReconcilerFixture()
	order := &entity.Order{ID: 3, BranchID: 1, CustomerID: 5}

	inv, err := reconciler.CreateOrUpdate(context.Background(), baseReconcileInput(order))
	require.NoError(t, err)

	assert.Equal(t, "GAR-0042", inv.Reference)
	assert.Equal(t, entity.InvoiceStatusDraft, inv.Status)
	require.NotNil(t, inv.OrderID)
	assert.Equal(t, int64(3), *inv.OrderID)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local), inv.InvoiceDate)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1160)))

	expectedNumber := fmt.Sprintf("INV-%s-0001", time.Now().Format("20060102"))
	assert.Equal(t, expectedNumber, inv.InvoiceNumber)

	assert.Len(t, invoices.lineItems[inv.ID], 1)
	assert.Equal(t, 1, invoices.totalsCalls, "totals asserted once after line items")
	require.Len(t, payments.payments, 1)
	assert.True(t, payments.payments[0].Amount.IsZero())
	assert.Equal(t, entity.PaymentMethodOnDelivery, payments.payments[0].PaymentMethod)
}

func TestReconciler_ReusesOrderInvoice(t *testing.T) {
	reconciler, invoices, _ := newReconcilerFixture()
	order := &entity.Order{ID: 3, BranchID: 1, CustomerID: 5}

	first, err := reconciler.CreateOrUpdate(context.Background(), baseReconcileInput(order))
	require.NoError(t, err)

	in := baseReconcileInput(order)
	in.Items = []AggregatedLineItem{
		{Description: "Brake service", Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1000)},
		{Description: "Wheel balancing", Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(160)},
	}
	second, err := reconciler.CreateOrUpdate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "one invoice per order")
	assert.Len(t, invoices.invoices, 1)
	assert.Contains(t, invoices.deletedItems, first.ID, "line items replaced, not appended")
	assert.Len(t, invoices.lineItems[first.ID], 2)
	assert.Equal(t, first.InvoiceNumber, second.InvoiceNumber, "invoice number survives reuse")
}

func TestReconciler_ZeroTotalDerivedFromSubtotalAndTax(t *testing.T) {
	reconciler, _, _ := newReconcilerFixture()
	in := baseReconcileInput(nil)
	in.Header.Total = "0"
	in.Header.Subtotal = "2000"
	in.Header.Tax = "320"

	inv, err := reconciler.CreateOrUpdate(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(2320)), "got %s", inv.TotalAmount)
}

func TestReconciler_TotalsNotRecomputedFromItems(t *testing.T) {
	reconciler, _, _ := newReconcilerFixture()
	in := baseReconcileInput(nil)
	// Items deliberately sum to something other than the header total.
	in.Items = []AggregatedLineItem{
		{Description: "Partial extraction", Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)},
	}

	inv, err := reconciler.CreateOrUpdate(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1160)), "header total is authoritative")
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(1000)))
}

func TestReconciler_NoItemsStillKeepsTotals(t *testing.T) {
	reconciler, invoices, _ := newReconcilerFixture()
	in := baseReconcileInput(nil)
	in.Items = nil

	inv, err := reconciler.CreateOrUpdate(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, invoices.lineItems[inv.ID])
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1160)))
	assert.Equal(t, 1, invoices.totalsCalls)
}

func TestReconciler_ReferenceFallback(t *testing.T) {
	tests := []struct {
		name   string
		header entity.ExtractionHeader
		want   string
	}{
		{"reference wins", entity.ExtractionHeader{Reference: "REF-1", InvoiceNo: "NO-2", CodeNo: "CODE-3"}, "REF-1"},
		{"invoice number next", entity.ExtractionHeader{InvoiceNo: "NO-2", CodeNo: "CODE-3"}, "NO-2"},
		{"code number last", entity.ExtractionHeader{CodeNo: "CODE-3"}, "CODE-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reconciler, _, _ := newReconcilerFixture()
			in := baseReconcileInput(nil)
			in.Header.InvoiceNo = tt.header.InvoiceNo
			in.Header.Reference = tt.header.Reference
			in.Header.CodeNo = tt.header.CodeNo

			inv, err := reconciler.CreateOrUpdate(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, inv.Reference)
		})
	}
}

func TestReconciler_GeneratedReferenceUsesPrefix(t *testing.T) {
	reconciler, _, _ := newReconcilerFixture()
	in := baseReconcileInput(nil)
	in.Header.InvoiceNo = ""
	in.ReferencePrefix = "INV"

	inv, err := reconciler.CreateOrUpdate(context.Background(), in)
	require.NoError(t, err)
	assert.Regexp(t, `^INV-\d{14}$`, inv.Reference)
}

func TestReconciler_InvoiceNumberSequencesPerDay(t *testing.T) {
	reconciler, _, _ := newReconcilerFixture()

	first, err := reconciler.CreateOrUpdate(context.Background(), baseReconcileInput(nil))
	require.NoError(t, err)
	second, err := reconciler.CreateOrUpdate(context.Background(), baseReconcileInput(nil))
	require.NoError(t, err)

	day := time.Now().Format("20060102")
	assert.Equal(t, fmt.Sprintf("INV-%s-0001", day), first.InvoiceNumber)
	assert.Equal(t, fmt.Sprintf("INV-%s-0002", day), second.InvoiceNumber)
}

func TestReconciler_NoPaymentForZeroTotal(t *testing.T) {
	reconciler, _, payments := newReconcilerFixture()
	in := baseReconcileInput(nil)
	in.Header.Subtotal = "0"
	in.Header.Tax = "0"
	in.Header.Total = "0"

	_, err := reconciler.CreateOrUpdate(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, payments.payments)
}

func TestReconciler_DefaultPaymentIdempotent(t *testing.T) {
	reconciler, _, payments := newReconcilerFixture()
	order := &entity.Order{ID: 3, BranchID: 1, CustomerID: 5}

	_, err := reconciler.CreateOrUpdate(context.Background(), baseReconcileInput(order))
	require.NoError(t, err)
	_, err = reconciler.CreateOrUpdate(context.Background(), baseReconcileInput(order))
	require.NoError(t, err)

	assert.Len(t, payments.payments, 1, "second reconciliation does not add a payment")
}

func TestReconciler_PaymentMethodFromHeader(t *testing.T) {
	reconciler, _, payments := newReconcilerFixture()
	in := baseReconcileInput(nil)
	in.Header.PaymentMethod = "Paid via Mpesa till"

	_, err := reconciler.CreateOrUpdate(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, payments.payments, 1)
	assert.Equal(t, entity.PaymentMethodMpesa, payments.payments[0].PaymentMethod)
}

func TestReconciler_NilCustomerRejected(t *testing.T) {
	reconciler, _, _ := newReconcilerFixture()
	in := baseReconcileInput(nil)
	in.Customer = nil

	_, err := reconciler.CreateOrUpdate(context.Background(), in)
	assert.ErrorIs(t, err, ErrCustomerUnresolved)
}
