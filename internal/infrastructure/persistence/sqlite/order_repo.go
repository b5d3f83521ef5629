package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

// OrderRepository implements port.OrderRepository over SQLite.
type OrderRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *DB, logger *zap.Logger) *OrderRepository {
	return &OrderRepository{db: db, logger: logger}
}

const orderColumns = `
	id, order_number, branch_id, customer_id, vehicle_id, type, status,
	description, estimated_duration, started_at, created_at, updated_at`

// Create persists a new order and assigns its sequential order number.
func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (
			order_number, branch_id, customer_id, vehicle_id, type, status,
			description, estimated_duration, started_at
		) VALUES ('', ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.getExecutor(ctx).ExecContext(ctx, query,
		o.BranchID, o.CustomerID, o.VehicleID, o.Type, o.Status,
		o.Description, o.EstimatedDuration, o.StartedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return fmt.Errorf("failed to create order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	o.ID = id

	o.OrderNumber = fmt.Sprintf("ORD%d", id)
	_, err = r.db.getExecutor(ctx).ExecContext(ctx,
		`UPDATE orders SET order_number = ? WHERE id = ?`, o.OrderNumber, id)
	if err != nil {
		return fmt.Errorf("failed to set order number: %w", err)
	}
	return nil
}

// GetByID loads an order by id within a branch.
func (r *OrderRepository) GetByID(ctx context.Context, branchID, id int64) (*entity.Order, error) {
	query := `SELECT` + orderColumns + `
		FROM orders WHERE id = ? AND branch_id = ?`
	return r.scanOne(r.db.getExecutor(ctx).QueryRowContext(ctx, query, id, branchID))
}

// FindStartedByPlate returns the most recent started order for a plate.
func (r *OrderRepository) FindStartedByPlate(ctx context.Context, branchID int64, plate string) (*entity.Order, error) {
	query := `SELECT` + orderColumnsPrefixed("o") + `
		FROM orders o
		JOIN vehicles v ON v.id = o.vehicle_id
		WHERE o.branch_id = ? AND o.status = ? AND v.plate_number = ? COLLATE NOCASE
		ORDER BY o.started_at DESC, o.id DESC
		LIMIT 1`
	return r.scanOne(r.db.getExecutor(ctx).QueryRowContext(ctx, query,
		branchID, entity.OrderStatusCreated, plate))
}

// ListStartedByPlate returns every started order for a plate, most recent
// first.
func (r *OrderRepository) ListStartedByPlate(ctx context.Context, branchID int64, plate string) ([]*entity.Order, error) {
	query := `SELECT` + orderColumnsPrefixed("o") + `
		FROM orders o
		JOIN vehicles v ON v.id = o.vehicle_id
		WHERE o.branch_id = ? AND o.status = ? AND v.plate_number = ? COLLATE NOCASE
		ORDER BY o.started_at DESC, o.id DESC`
	rows, err := r.db.getExecutor(ctx).QueryContext(ctx, query,
		branchID, entity.OrderStatusCreated, plate)
	if err != nil {
		return nil, fmt.Errorf("failed to list started orders: %w", err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		o, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Update writes mutable order fields.
func (r *OrderRepository) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders
		SET customer_id = ?, vehicle_id = ?, type = ?, status = ?,
		    description = ?, estimated_duration = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.getExecutor(ctx).ExecContext(ctx, query,
		o.CustomerID, o.VehicleID, o.Type, o.Status,
		o.Description, o.EstimatedDuration, o.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update order", zap.Int64("order_id", o.ID), zap.Error(err))
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

func (r *OrderRepository) scanOne(row *sql.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.BranchID, &o.CustomerID, &o.VehicleID,
		&o.Type, &o.Status, &o.Description, &o.EstimatedDuration,
		&o.StartedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &o, nil
}

func (r *OrderRepository) scanRow(rows *sql.Rows) (*entity.Order, error) {
	var o entity.Order
	err := rows.Scan(
		&o.ID, &o.OrderNumber, &o.BranchID, &o.CustomerID, &o.VehicleID,
		&o.Type, &o.Status, &o.Description, &o.EstimatedDuration,
		&o.StartedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &o, nil
}

func orderColumnsPrefixed(alias string) string {
	return fmt.Sprintf(`
	%[1]s.id, %[1]s.order_number, %[1]s.branch_id, %[1]s.customer_id,
	%[1]s.vehicle_id, %[1]s.type, %[1]s.status, %[1]s.description,
	%[1]s.estimated_duration, %[1]s.started_at, %[1]s.created_at, %[1]s.updated_at`, alias)
}

var _ port.OrderRepository = (*OrderRepository)(nil)
