package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

// OrderResolver finds or creates the order an uploaded invoice belongs to.
type OrderResolver struct {
	orders port.OrderRepository
	logger *zap.Logger
}

// NewOrderResolver creates a new OrderResolver.
func NewOrderResolver(orders port.OrderRepository, logger *zap.Logger) *OrderResolver {
	return &OrderResolver{orders: orders, logger: logger}
}

// Resolve determines the order for an upload:
//  1. an explicitly selected order id, loaded branch-scoped (a load failure
//     falls through rather than aborting)
//  2. the most recent started order on the plate within the branch
//  3. a newly created service order for the customer
//
// A temporary placeholder customer never receives a new order here; the
// result is then nil with no error, and the invoice attaches to no order.
func (r *OrderResolver) Resolve(ctx context.Context, branchID, selectedOrderID int64, plate string, customer *entity.Customer, vehicle *entity.Vehicle, description string) (*entity.Order, bool, error) {
	var order *entity.Order

	if selectedOrderID > 0 {
		found, err := r.orders.GetByID(ctx, branchID, selectedOrderID)
		if err != nil {
			r.logger.Warn("selected order lookup failed",
				zap.Int64("order_id", selectedOrderID), zap.Error(err))
		} else {
			order = found
		}
	}

	normalizedPlate := strings.ToUpper(strings.TrimSpace(plate))
	if order == nil && normalizedPlate != "" {
		found, err := r.orders.FindStartedByPlate(ctx, branchID, normalizedPlate)
		if err != nil {
			r.logger.Warn("started order lookup by plate failed",
				zap.String("plate", normalizedPlate), zap.Error(err))
		} else {
			order = found
		}
	}

	if order != nil {
		return order, false, nil
	}

	if customer == nil || customer.IsTemporary() {
		return nil, false, nil
	}

	now := time.Now()
	if description == "" {
		description = "Auto-created from invoice upload"
	}
	order = &entity.Order{
		BranchID:    branchID,
		CustomerID:  customer.ID,
		Type:        entity.OrderTypeService,
		Status:      entity.OrderStatusCreated,
		Description: description,
		StartedAt:   &now,
	}
	if vehicle != nil {
		order.VehicleID = &vehicle.ID
	}
	if err := r.orders.Create(ctx, order); err != nil {
		return nil, false, err
	}
	r.logger.Info("created order",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", customer.ID))
	return order, true, nil
}

// ListStarted returns every started order for a plate, most recent first,
// for disambiguation in the caller's UI.
func (r *OrderResolver) ListStarted(ctx context.Context, branchID int64, plate string) ([]*entity.Order, error) {
	return r.orders.ListStartedByPlate(ctx, branchID, strings.ToUpper(strings.TrimSpace(plate)))
}

// AttachParties relinks an existing order to the resolved customer and
// vehicle when they differ, so an upload that corrects the identity also
// corrects the order.
func (r *OrderResolver) AttachParties(ctx context.Context, order *entity.Order, customer *entity.Customer, vehicle *entity.Vehicle) error {
	if order == nil {
		return nil
	}
	changed := false
	if customer != nil && order.CustomerID != customer.ID {
		order.CustomerID = customer.ID
		changed = true
	}
	if vehicle != nil && (order.VehicleID == nil || *order.VehicleID != vehicle.ID) {
		order.VehicleID = &vehicle.ID
		changed = true
	}
	if !changed {
		return nil
	}
	return r.orders.Update(ctx, order)
}

// Finalize amends a started order with invoice-derived details: the selected
// service names are appended to the description (previously appended service
// lines are stripped first) and the estimated duration is updated when
// supplied.
func (r *OrderResolver) Finalize(ctx context.Context, order *entity.Order, serviceNames []string, estimatedDuration int) error {
	if order == nil {
		return nil
	}
	order.AppendServiceSelection(serviceNames)
	if estimatedDuration > 0 {
		order.EstimatedDuration = estimatedDuration
	}
	return r.orders.Update(ctx, order)
}
