// Package port defines the interfaces the application layer consumes:
// repositories over persistent state, the extraction collaborator, and
// transaction management. Lookup methods return (nil, nil) when no row
// matches; an error always means the lookup itself failed.
package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

// CustomerRepository defines persistence operations for Customer. Every
// lookup is scoped by branch.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, branchID, id int64) (*entity.Customer, error)
	// GetByNamePhone performs an exact full_name + phone match within a branch.
	GetByNamePhone(ctx context.Context, branchID int64, fullName, phone string) (*entity.Customer, error)
	// GetByNameAndPlate finds a customer whose name matches and who owns a
	// vehicle with the given plate (case-insensitive), within a branch.
	GetByNameAndPlate(ctx context.Context, branchID int64, fullName, plate string) (*entity.Customer, error)
	UpdateContact(ctx context.Context, customer *entity.Customer) error
}

// VehicleRepository defines persistence operations for Vehicle.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *entity.Vehicle) error
	// GetByCustomerPlate matches the plate case-insensitively within one
	// customer's vehicles.
	GetByCustomerPlate(ctx context.Context, customerID int64, plate string) (*entity.Vehicle, error)
	// GetOwnerByPlate resolves a plate to the owning customer, scoped to the
	// owner's branch.
	GetOwnerByPlate(ctx context.Context, branchID int64, plate string) (*entity.Customer, error)
}

// OrderRepository defines persistence operations for Order.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, branchID, id int64) (*entity.Order, error)
	// FindStartedByPlate returns the most recent started order for a plate
	// within a branch, or nil when none exists.
	FindStartedByPlate(ctx context.Context, branchID int64, plate string) (*entity.Order, error)
	// ListStartedByPlate returns every started order for a plate, most
	// recent first, for disambiguation.
	ListStartedByPlate(ctx context.Context, branchID int64, plate string) ([]*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
}

// InvoiceRepository defines persistence operations for Invoice and its line
// items.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, branchID, id int64) (*entity.Invoice, error)
	// GetByOrderID returns the invoice attached to an order, or nil. The
	// reconciler calls this before every create to keep at most one invoice
	// per order.
	GetByOrderID(ctx context.Context, orderID int64) (*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateDocumentPath(ctx context.Context, id int64, path string) error

	// UpdateTotals re-asserts the authoritative header-derived totals. It is
	// the single point where invoice totals are written after line-item
	// creation.
	UpdateTotals(ctx context.Context, id int64, subtotal, taxAmount, totalAmount decimal.Decimal) error

	// BulkInsertLineItems inserts line items in one statement without any
	// per-item recalculation of the parent invoice.
	BulkInsertLineItems(ctx context.Context, items []*entity.InvoiceLineItem) error
	// DeleteLineItems clears an invoice's line items before a re-extraction
	// replaces them.
	DeleteLineItems(ctx context.Context, invoiceID int64) error
	ListLineItems(ctx context.Context, invoiceID int64) ([]*entity.InvoiceLineItem, error)
	CountLineItems(ctx context.Context, invoiceID int64) (int, error)

	// CountByDate supports per-day invoice number sequencing.
	CountByDate(ctx context.Context, branchID int64, date time.Time) (int, error)
	ListRecent(ctx context.Context, branchID int64, limit int) ([]*entity.Invoice, error)
	ListByBranch(ctx context.Context, branchID int64) ([]*entity.Invoice, error)
}

// PaymentRepository defines persistence operations for InvoicePayment.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.InvoicePayment) error
	ListByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.InvoicePayment, error)
}

// TransactionManager handles database transactions. The full
// resolve-and-create sequence runs inside one transaction so a late failure
// never leaves a partially linked customer/order/invoice.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
