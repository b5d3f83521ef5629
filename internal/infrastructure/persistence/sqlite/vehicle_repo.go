package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

// VehicleRepository implements port.VehicleRepository over SQLite.
type VehicleRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewVehicleRepository creates a new VehicleRepository.
func NewVehicleRepository(db *DB, logger *zap.Logger) *VehicleRepository {
	return &VehicleRepository{db: db, logger: logger}
}

// Create persists a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, v *entity.Vehicle) error {
	query := `
		INSERT INTO vehicles (customer_id, plate_number, make, model, vehicle_type)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.getExecutor(ctx).ExecContext(ctx, query,
		v.CustomerID, v.PlateNumber, v.Make, v.Model, v.VehicleType,
	)
	if err != nil {
		r.logger.Error("Failed to create vehicle", zap.Error(err))
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	v.ID = id
	return nil
}

// GetByCustomerPlate matches a plate case-insensitively within one
// customer's vehicles.
func (r *VehicleRepository) GetByCustomerPlate(ctx context.Context, customerID int64, plate string) (*entity.Vehicle, error) {
	query := `
		SELECT id, customer_id, plate_number, make, model, vehicle_type, created_at
		FROM vehicles
		WHERE customer_id = ? AND plate_number = ? COLLATE NOCASE
		LIMIT 1
	`
	var v entity.Vehicle
	err := r.db.getExecutor(ctx).QueryRowContext(ctx, query, customerID, plate).Scan(
		&v.ID, &v.CustomerID, &v.PlateNumber, &v.Make, &v.Model, &v.VehicleType, &v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan vehicle: %w", err)
	}
	return &v, nil
}

// GetOwnerByPlate resolves a plate to the owning customer within a branch.
func (r *VehicleRepository) GetOwnerByPlate(ctx context.Context, branchID int64, plate string) (*entity.Customer, error) {
	query := `SELECT` + customerColumnsPrefixed("c") + `
		FROM vehicles v
		JOIN customers c ON c.id = v.customer_id
		WHERE c.branch_id = ? AND v.plate_number = ? COLLATE NOCASE
		LIMIT 1`
	var c entity.Customer
	err := r.db.getExecutor(ctx).QueryRowContext(ctx, query, branchID, plate).Scan(
		&c.ID, &c.BranchID, &c.FullName, &c.Phone, &c.Whatsapp, &c.Email,
		&c.Address, &c.OrganizationName, &c.TaxNumber, &c.CustomerType,
		&c.PersonalSubtype, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan plate owner: %w", err)
	}
	return &c, nil
}

var _ port.VehicleRepository = (*VehicleRepository)(nil)
