package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
	"github.com/motorsvc/invoice-tracker/internal/money"
)

// invoiceDateFormats are tried in order; the first successful parse wins.
// Day-first formats come before ISO so "05/03/2024" reads as 5 March.
var invoiceDateFormats = []string{
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
	"02/01/06",
}

// ParseInvoiceDate parses an extracted date string through the format
// cascade, defaulting to the current local date when nothing parses.
func ParseInvoiceDate(raw string, now time.Time) time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		for _, layout := range invoiceDateFormats {
			if d, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
				return d
			}
		}
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

// ReconcileInput carries everything the reconciler needs for one pass.
type ReconcileInput struct {
	BranchID int64
	Order    *entity.Order // nil when no order could be resolved
	Customer *entity.Customer
	Header   entity.ExtractionHeader
	Items    []AggregatedLineItem

	// ReferencePrefix labels the generated placeholder reference when the
	// header carries none ("UPLOAD" for extraction commits, "INV" for form
	// submissions).
	ReferencePrefix string
	SubmittedBy     string
}

// InvoiceReconciler enforces the one-invoice-per-order invariant and applies
// the monetary policy: header-level totals are the source of truth and are
// re-asserted after line-item creation, never recomputed from the line-item
// sum. Line-item extraction is less reliable than header totals, so a zero
// parsed item set must still leave the extracted totals intact.
type InvoiceReconciler struct {
	invoices port.InvoiceRepository
	payments port.PaymentRepository
	logger   *zap.Logger
}

// NewInvoiceReconciler creates a new InvoiceReconciler.
func NewInvoiceReconciler(invoices port.InvoiceRepository, payments port.PaymentRepository, logger *zap.Logger) *InvoiceReconciler {
	return &InvoiceReconciler{
		invoices: invoices,
		payments: payments,
		logger:   logger,
	}
}

// CreateOrUpdate reconciles one extraction pass into the persistent record
// set. When the resolved order already carries an invoice, that invoice is
// updated in place; its line items are replaced so repeated extractions
// converge instead of accumulating duplicates.
func (r *InvoiceReconciler) CreateOrUpdate(ctx context.Context, in ReconcileInput) (*entity.Invoice, error) {
	if in.Customer == nil {
		return nil, ErrCustomerUnresolved
	}

	now := time.Now()

	var inv *entity.Invoice
	if in.Order != nil {
		existing, err := r.invoices.GetByOrderID(ctx, in.Order.ID)
		if err != nil {
			return nil, fmt.Errorf("lookup invoice for order %d: %w", in.Order.ID, err)
		}
		inv = existing
	}
	isNew := inv == nil
	if isNew {
		inv = &entity.Invoice{Status: entity.InvoiceStatusDraft}
	}

	inv.BranchID = in.BranchID
	inv.CustomerID = in.Customer.ID
	if in.Order != nil {
		orderID := in.Order.ID
		inv.OrderID = &orderID
	}

	inv.InvoiceDate = ParseInvoiceDate(in.Header.Date, now)
	inv.Reference = r.resolveReference(in.Header, in.ReferencePrefix, now)
	inv.AttendedBy = strings.TrimSpace(in.Header.AttendedBy)
	inv.KindAttention = strings.TrimSpace(in.Header.KindAttention)
	inv.Remarks = strings.TrimSpace(in.Header.Remarks)
	inv.Notes = strings.TrimSpace(in.Header.Notes)

	// Seller identity stays on the invoice; it is never folded into the
	// customer record.
	inv.SellerName = strings.TrimSpace(in.Header.SellerName)
	inv.SellerAddress = strings.TrimSpace(in.Header.SellerAddress)
	inv.SellerPhone = strings.TrimSpace(in.Header.SellerPhone)
	inv.SellerEmail = strings.TrimSpace(in.Header.SellerEmail)
	inv.SellerTaxID = strings.TrimSpace(in.Header.SellerTaxID)
	inv.SellerVATReg = strings.TrimSpace(in.Header.SellerVATReg)

	subtotal := money.Amount(in.Header.Subtotal)
	taxAmount := money.Amount(in.Header.Tax)
	totalAmount := money.Amount(in.Header.Total)
	if totalAmount.IsZero() {
		totalAmount = subtotal.Add(taxAmount)
	}
	inv.Subtotal = subtotal
	inv.TaxAmount = taxAmount
	inv.TotalAmount = totalAmount
	inv.TaxRate = money.Percent(in.Header.TaxRate)
	inv.CreatedBy = in.SubmittedBy

	if inv.InvoiceNumber == "" {
		number, err := r.nextInvoiceNumber(ctx, in.BranchID, now)
		if err != nil {
			return nil, fmt.Errorf("generate invoice number: %w", err)
		}
		inv.InvoiceNumber = number
	}

	if isNew {
		if err := r.invoices.Create(ctx, inv); err != nil {
			return nil, fmt.Errorf("create invoice: %w", err)
		}
	} else {
		if err := r.invoices.Update(ctx, inv); err != nil {
			return nil, fmt.Errorf("update invoice: %w", err)
		}
		if err := r.invoices.DeleteLineItems(ctx, inv.ID); err != nil {
			return nil, fmt.Errorf("clear line items: %w", err)
		}
	}

	if len(in.Items) > 0 {
		lineItems := make([]*entity.InvoiceLineItem, 0, len(in.Items))
		for _, it := range in.Items {
			lineItems = append(lineItems, &entity.InvoiceLineItem{
				InvoiceID:   inv.ID,
				Code:        it.Code,
				Description: it.Description,
				Quantity:    it.Qty,
				Unit:        it.Unit,
				UnitPrice:   it.UnitPrice,
				LineTotal:   it.Qty.Mul(it.UnitPrice),
				TaxRate:     decimal.Zero,
				TaxAmount:   decimal.Zero,
			})
		}
		if err := r.invoices.BulkInsertLineItems(ctx, lineItems); err != nil {
			return nil, fmt.Errorf("insert line items: %w", err)
		}
	}

	// Re-assert the extracted totals after line-item creation so nothing
	// that happened above can have overwritten them.
	if err := r.invoices.UpdateTotals(ctx, inv.ID, subtotal, taxAmount, totalAmount); err != nil {
		return nil, fmt.Errorf("assert invoice totals: %w", err)
	}

	if totalAmount.GreaterThan(decimal.Zero) {
		if err := r.ensureDefaultPayment(ctx, inv, in.Header.PaymentMethod); err != nil {
			// A missing tracking record does not invalidate the invoice.
			r.logger.Warn("failed to create default payment record",
				zap.Int64("invoice_id", inv.ID), zap.Error(err))
		}
	}

	return inv, nil
}

// resolveReference falls through extracted reference, invoice number and code
// number before generating a timestamp-based placeholder.
func (r *InvoiceReconciler) resolveReference(header entity.ExtractionHeader, prefix string, now time.Time) string {
	for _, candidate := range []string{header.Reference, header.InvoiceNo, header.CodeNo} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	if prefix == "" {
		prefix = "UPLOAD"
	}
	return fmt.Sprintf("%s-%s", prefix, now.Format("20060102150405"))
}

// nextInvoiceNumber assigns INV-YYYYMMDD-NNNN with a per-day, per-branch
// sequence. Runs inside the commit transaction.
func (r *InvoiceReconciler) nextInvoiceNumber(ctx context.Context, branchID int64, now time.Time) (string, error) {
	count, err := r.invoices.CountByDate(ctx, branchID, now)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%04d", now.Format("20060102"), count+1), nil
}

// ensureDefaultPayment creates the unpaid tracking record once per invoice.
func (r *InvoiceReconciler) ensureDefaultPayment(ctx context.Context, inv *entity.Invoice, methodText string) error {
	existing, err := r.payments.ListByInvoiceID(ctx, inv.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	payment := &entity.InvoicePayment{
		InvoiceID:     inv.ID,
		Amount:        decimal.Zero,
		PaymentMethod: entity.MatchPaymentMethod(methodText),
	}
	return r.payments.Create(ctx, payment)
}
