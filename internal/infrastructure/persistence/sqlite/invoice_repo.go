package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

// InvoiceRepository implements port.InvoiceRepository over SQLite. Monetary
// values are persisted as TEXT and parsed back into decimals on scan.
type InvoiceRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(db *DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

const invoiceColumns = `
	id, branch_id, order_id, customer_id, invoice_number, reference,
	invoice_date, subtotal, tax_amount, tax_rate, total_amount,
	notes, remarks, attended_by, kind_attention,
	seller_name, seller_address, seller_phone, seller_email,
	seller_tax_id, seller_vat_reg, document_path, status, created_by,
	created_at, updated_at`

// Create persists a new invoice.
func (r *InvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (
			branch_id, order_id, customer_id, invoice_number, reference,
			invoice_date, subtotal, tax_amount, tax_rate, total_amount,
			notes, remarks, attended_by, kind_attention,
			seller_name, seller_address, seller_phone, seller_email,
			seller_tax_id, seller_vat_reg, document_path, status, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.getExecutor(ctx).ExecContext(ctx, query,
		inv.BranchID, inv.OrderID, inv.CustomerID, inv.InvoiceNumber, inv.Reference,
		inv.InvoiceDate.Format("2006-01-02"),
		inv.Subtotal.String(), inv.TaxAmount.String(), inv.TaxRate.String(), inv.TotalAmount.String(),
		inv.Notes, inv.Remarks, inv.AttendedBy, inv.KindAttention,
		inv.SellerName, inv.SellerAddress, inv.SellerPhone, inv.SellerEmail,
		inv.SellerTaxID, inv.SellerVATReg, inv.DocumentPath, inv.Status, inv.CreatedBy,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	inv.ID = id
	return nil
}

// GetByID loads an invoice by id within a branch.
func (r *InvoiceRepository) GetByID(ctx context.Context, branchID, id int64) (*entity.Invoice, error) {
	query := `SELECT` + invoiceColumns + `
		FROM invoices WHERE id = ? AND branch_id = ?`
	return r.scanOne(r.db.getExecutor(ctx).QueryRowContext(ctx, query, id, branchID))
}

// GetByOrderID returns the invoice attached to an order, or nil. Callers
// rely on this before every create to keep at most one invoice per order.
func (r *InvoiceRepository) GetByOrderID(ctx context.Context, orderID int64) (*entity.Invoice, error) {
	query := `SELECT` + invoiceColumns + `
		FROM invoices WHERE order_id = ? LIMIT 1`
	return r.scanOne(r.db.getExecutor(ctx).QueryRowContext(ctx, query, orderID))
}

// Update rewrites an invoice's mutable fields.
func (r *InvoiceRepository) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET branch_id = ?, order_id = ?, customer_id = ?, reference = ?,
		    invoice_date = ?, subtotal = ?, tax_amount = ?, tax_rate = ?,
		    total_amount = ?, notes = ?, remarks = ?, attended_by = ?,
		    kind_attention = ?, seller_name = ?, seller_address = ?,
		    seller_phone = ?, seller_email = ?, seller_tax_id = ?,
		    seller_vat_reg = ?, created_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.getExecutor(ctx).ExecContext(ctx, query,
		inv.BranchID, inv.OrderID, inv.CustomerID, inv.Reference,
		inv.InvoiceDate.Format("2006-01-02"),
		inv.Subtotal.String(), inv.TaxAmount.String(), inv.TaxRate.String(),
		inv.TotalAmount.String(), inv.Notes, inv.Remarks, inv.AttendedBy,
		inv.KindAttention, inv.SellerName, inv.SellerAddress,
		inv.SellerPhone, inv.SellerEmail, inv.SellerTaxID,
		inv.SellerVATReg, inv.CreatedBy, inv.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update invoice", zap.Int64("invoice_id", inv.ID), zap.Error(err))
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return nil
}

// UpdateStatus transitions the invoice status.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`UPDATE invoices SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	return nil
}

// UpdateDocumentPath records the stored source document.
func (r *InvoiceRepository) UpdateDocumentPath(ctx context.Context, id int64, path string) error {
	_, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`UPDATE invoices SET document_path = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		path, id)
	if err != nil {
		return fmt.Errorf("failed to update document path: %w", err)
	}
	return nil
}

// UpdateTotals writes the authoritative header-derived totals. This is the
// only statement that touches the three totals columns after line-item
// creation.
func (r *InvoiceRepository) UpdateTotals(ctx context.Context, id int64, subtotal, taxAmount, totalAmount decimal.Decimal) error {
	_, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`UPDATE invoices SET subtotal = ?, tax_amount = ?, total_amount = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		subtotal.String(), taxAmount.String(), totalAmount.String(), id)
	if err != nil {
		r.logger.Error("Failed to assert invoice totals", zap.Int64("invoice_id", id), zap.Error(err))
		return fmt.Errorf("failed to update invoice totals: %w", err)
	}
	return nil
}

// BulkInsertLineItems inserts all line items in one statement. No per-item
// write touches the parent invoice, by contract with the reconciler's
// totals policy.
func (r *InvoiceRepository) BulkInsertLineItems(ctx context.Context, items []*entity.InvoiceLineItem) error {
	if len(items) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO invoice_line_items (
			invoice_id, code, description, quantity, unit, unit_price,
			line_total, tax_rate, tax_amount
		) VALUES `)
	args := make([]interface{}, 0, len(items)*9)
	for i, it := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			it.InvoiceID, it.Code, it.Description,
			it.Quantity.String(), it.Unit, it.UnitPrice.String(),
			it.LineTotal.String(), it.TaxRate.String(), it.TaxAmount.String(),
		)
	}

	_, err := r.db.getExecutor(ctx).ExecContext(ctx, sb.String(), args...)
	if err != nil {
		r.logger.Error("Failed to bulk insert line items", zap.Error(err))
		return fmt.Errorf("failed to bulk insert line items: %w", err)
	}
	return nil
}

// DeleteLineItems clears an invoice's line items before replacement.
func (r *InvoiceRepository) DeleteLineItems(ctx context.Context, invoiceID int64) error {
	_, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`DELETE FROM invoice_line_items WHERE invoice_id = ?`, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to delete line items: %w", err)
	}
	return nil
}

// ListLineItems returns an invoice's line items in insertion order.
func (r *InvoiceRepository) ListLineItems(ctx context.Context, invoiceID int64) ([]*entity.InvoiceLineItem, error) {
	query := `
		SELECT id, invoice_id, code, description, quantity, unit, unit_price,
		       line_total, tax_rate, tax_amount
		FROM invoice_line_items
		WHERE invoice_id = ?
		ORDER BY id
	`
	rows, err := r.db.getExecutor(ctx).QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer rows.Close()

	var items []*entity.InvoiceLineItem
	for rows.Next() {
		var it entity.InvoiceLineItem
		var qty, unitPrice, lineTotal, taxRate, taxAmount string
		if err := rows.Scan(
			&it.ID, &it.InvoiceID, &it.Code, &it.Description, &qty, &it.Unit,
			&unitPrice, &lineTotal, &taxRate, &taxAmount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		it.Quantity = decFromString(qty)
		it.UnitPrice = decFromString(unitPrice)
		it.LineTotal = decFromString(lineTotal)
		it.TaxRate = decFromString(taxRate)
		it.TaxAmount = decFromString(taxAmount)
		items = append(items, &it)
	}
	return items, rows.Err()
}

// CountLineItems returns the number of line items on an invoice.
func (r *InvoiceRepository) CountLineItems(ctx context.Context, invoiceID int64) (int, error) {
	var count int
	err := r.db.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invoice_line_items WHERE invoice_id = ?`, invoiceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count line items: %w", err)
	}
	return count, nil
}

// CountByDate counts a branch's invoices created on a calendar day, for
// per-day invoice number sequencing.
func (r *InvoiceRepository) CountByDate(ctx context.Context, branchID int64, date time.Time) (int, error) {
	var count int
	err := r.db.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invoices WHERE branch_id = ? AND date(created_at) = ?`,
		branchID, date.Format("2006-01-02")).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count invoices by date: %w", err)
	}
	return count, nil
}

// ListRecent returns the most recent invoices for a branch.
func (r *InvoiceRepository) ListRecent(ctx context.Context, branchID int64, limit int) ([]*entity.Invoice, error) {
	query := `SELECT` + invoiceColumns + `
		FROM invoices
		WHERE branch_id = ?
		ORDER BY invoice_date DESC, id DESC
		LIMIT ?`
	return r.list(ctx, query, branchID, limit)
}

// ListByBranch returns every invoice for a branch, newest first.
func (r *InvoiceRepository) ListByBranch(ctx context.Context, branchID int64) ([]*entity.Invoice, error) {
	query := `SELECT` + invoiceColumns + `
		FROM invoices
		WHERE branch_id = ?
		ORDER BY invoice_date DESC, id DESC`
	return r.list(ctx, query, branchID)
}

func (r *InvoiceRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Invoice, error) {
	rows, err := r.db.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *InvoiceRepository) scanOne(row *sql.Row) (*entity.Invoice, error) {
	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func scanInvoice(row rowScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	var invoiceDate string
	var subtotal, taxAmount, taxRate, totalAmount string
	err := row.Scan(
		&inv.ID, &inv.BranchID, &inv.OrderID, &inv.CustomerID,
		&inv.InvoiceNumber, &inv.Reference, &invoiceDate,
		&subtotal, &taxAmount, &taxRate, &totalAmount,
		&inv.Notes, &inv.Remarks, &inv.AttendedBy, &inv.KindAttention,
		&inv.SellerName, &inv.SellerAddress, &inv.SellerPhone, &inv.SellerEmail,
		&inv.SellerTaxID, &inv.SellerVATReg, &inv.DocumentPath, &inv.Status,
		&inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	if d, perr := time.ParseInLocation("2006-01-02", invoiceDate, time.Local); perr == nil {
		inv.InvoiceDate = d
	}
	inv.Subtotal = decFromString(subtotal)
	inv.TaxAmount = decFromString(taxAmount)
	inv.TaxRate = decFromString(taxRate)
	inv.TotalAmount = decFromString(totalAmount)
	return &inv, nil
}

var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
