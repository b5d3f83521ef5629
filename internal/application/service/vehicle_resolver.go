package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
	"github.com/motorsvc/invoice-tracker/pkg/utils"
)

// VehicleResolver finds or creates a vehicle by plate number within a
// customer's fleet. Plate matching is case-insensitive; stored plates are
// upper-cased.
type VehicleResolver struct {
	vehicles port.VehicleRepository
	logger   *zap.Logger
}

// NewVehicleResolver creates a new VehicleResolver.
func NewVehicleResolver(vehicles port.VehicleRepository, logger *zap.Logger) *VehicleResolver {
	return &VehicleResolver{vehicles: vehicles, logger: logger}
}

// FindOrCreate returns the customer's vehicle for the plate, creating it when
// absent.
func (r *VehicleResolver) FindOrCreate(ctx context.Context, customer *entity.Customer, plate string) (*entity.Vehicle, error) {
	normalized := utils.NormalizePlate(plate)
	if normalized == "" || customer == nil {
		return nil, nil
	}

	vehicle, err := r.vehicles.GetByCustomerPlate(ctx, customer.ID, normalized)
	if err != nil {
		return nil, err
	}
	if vehicle != nil {
		return vehicle, nil
	}

	vehicle = &entity.Vehicle{
		CustomerID:  customer.ID,
		PlateNumber: normalized,
	}
	if err := r.vehicles.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	r.logger.Info("created vehicle",
		zap.Int64("customer_id", customer.ID),
		zap.String("plate", normalized))
	return vehicle, nil
}
