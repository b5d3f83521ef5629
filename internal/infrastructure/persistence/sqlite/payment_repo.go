package sqlite

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

// PaymentRepository implements port.PaymentRepository over SQLite.
type PaymentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db *DB, logger *zap.Logger) *PaymentRepository {
	return &PaymentRepository{db: db, logger: logger}
}

// Create persists a payment record.
func (r *PaymentRepository) Create(ctx context.Context, p *entity.InvoicePayment) error {
	query := `
		INSERT INTO invoice_payments (invoice_id, amount, payment_method, payment_date, reference)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.getExecutor(ctx).ExecContext(ctx, query,
		p.InvoiceID, p.Amount.String(), p.PaymentMethod, p.PaymentDate, p.Reference,
	)
	if err != nil {
		r.logger.Error("Failed to create payment", zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	p.ID = id
	return nil
}

// ListByInvoiceID returns an invoice's payments in insertion order.
func (r *PaymentRepository) ListByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.InvoicePayment, error) {
	query := `
		SELECT id, invoice_id, amount, payment_method, payment_date, reference, created_at
		FROM invoice_payments
		WHERE invoice_id = ?
		ORDER BY id
	`
	rows, err := r.db.getExecutor(ctx).QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*entity.InvoicePayment
	for rows.Next() {
		var p entity.InvoicePayment
		var amount string
		if err := rows.Scan(&p.ID, &p.InvoiceID, &amount, &p.PaymentMethod,
			&p.PaymentDate, &p.Reference, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Amount = decFromString(amount)
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

var _ port.PaymentRepository = (*PaymentRepository)(nil)
