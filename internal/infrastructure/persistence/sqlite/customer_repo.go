package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

// CustomerRepository implements port.CustomerRepository over SQLite.
type CustomerRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(db *DB, logger *zap.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, logger: logger}
}

const customerColumns = `
	id, branch_id, full_name, phone, whatsapp, email, address,
	organization_name, tax_number, customer_type, personal_subtype,
	created_at, updated_at`

// Create persists a new customer.
func (r *CustomerRepository) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (
			branch_id, full_name, phone, whatsapp, email, address,
			organization_name, tax_number, customer_type, personal_subtype
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.getExecutor(ctx).ExecContext(ctx, query,
		c.BranchID, c.FullName, c.Phone, c.Whatsapp, c.Email, c.Address,
		c.OrganizationName, c.TaxNumber, c.CustomerType, c.PersonalSubtype,
	)
	if err != nil {
		r.logger.Error("Failed to create customer", zap.Error(err))
		return fmt.Errorf("failed to create customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	c.ID = id
	return nil
}

// GetByID retrieves a customer by id within a branch.
func (r *CustomerRepository) GetByID(ctx context.Context, branchID, id int64) (*entity.Customer, error) {
	query := `SELECT` + customerColumns + `
		FROM customers WHERE id = ? AND branch_id = ?`
	return r.scanOne(r.db.getExecutor(ctx).QueryRowContext(ctx, query, id, branchID))
}

// GetByNamePhone performs an exact full_name + phone match within a branch.
func (r *CustomerRepository) GetByNamePhone(ctx context.Context, branchID int64, fullName, phone string) (*entity.Customer, error) {
	query := `SELECT` + customerColumns + `
		FROM customers
		WHERE branch_id = ? AND full_name = ? AND phone = ?
		LIMIT 1`
	return r.scanOne(r.db.getExecutor(ctx).QueryRowContext(ctx, query, branchID, fullName, phone))
}

// GetByNameAndPlate finds a customer by name who owns a vehicle with the
// given plate within the branch. Plate matching is case-insensitive.
func (r *CustomerRepository) GetByNameAndPlate(ctx context.Context, branchID int64, fullName, plate string) (*entity.Customer, error) {
	query := `SELECT` + customerColumnsPrefixed("c") + `
		FROM customers c
		JOIN vehicles v ON v.customer_id = c.id
		WHERE c.branch_id = ? AND c.full_name = ? AND v.plate_number = ? COLLATE NOCASE
		LIMIT 1`
	return r.scanOne(r.db.getExecutor(ctx).QueryRowContext(ctx, query, branchID, fullName, plate))
}

// UpdateContact writes refreshed contact fields back to an existing record.
// Identity fields (name, phone) are never changed here.
func (r *CustomerRepository) UpdateContact(ctx context.Context, c *entity.Customer) error {
	query := `
		UPDATE customers
		SET whatsapp = ?, email = ?, address = ?, organization_name = ?,
		    tax_number = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.getExecutor(ctx).ExecContext(ctx, query,
		c.Whatsapp, c.Email, c.Address, c.OrganizationName, c.TaxNumber, c.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update customer contact info",
			zap.Int64("customer_id", c.ID), zap.Error(err))
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) scanOne(row *sql.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(
		&c.ID, &c.BranchID, &c.FullName, &c.Phone, &c.Whatsapp, &c.Email,
		&c.Address, &c.OrganizationName, &c.TaxNumber, &c.CustomerType,
		&c.PersonalSubtype, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	return &c, nil
}

func customerColumnsPrefixed(alias string) string {
	return fmt.Sprintf(`
	%[1]s.id, %[1]s.branch_id, %[1]s.full_name, %[1]s.phone, %[1]s.whatsapp,
	%[1]s.email, %[1]s.address, %[1]s.organization_name, %[1]s.tax_number,
	%[1]s.customer_type, %[1]s.personal_subtype, %[1]s.created_at, %[1]s.updated_at`, alias)
}

var _ port.CustomerRepository = (*CustomerRepository)(nil)
