package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
	"github.com/motorsvc/invoice-tracker/pkg/utils"
)

// CustomerIdentity carries the identity fragments available for resolution:
// an already-resolved reference, extracted name/phone/contact fields, and an
// optional plate number.
type CustomerIdentity struct {
	CustomerID       int64
	FullName         string
	Phone            string
	Email            string
	Address          string
	OrganizationName string
	TaxNumber        string
	CustomerType     string
	PersonalSubtype  string
	Whatsapp         string
	Plate            string
}

// CustomerResolver finds or deterministically creates exactly one customer
// for a set of identity fragments. Resolution is an ordered cascade of
// fallible strategies; a failing step logs and falls through, and only
// exhaustion of every step is a hard failure.
type CustomerResolver struct {
	customers port.CustomerRepository
	vehicles  port.VehicleRepository
	logger    *zap.Logger
}

// NewCustomerResolver creates a new CustomerResolver.
func NewCustomerResolver(customers port.CustomerRepository, vehicles port.VehicleRepository, logger *zap.Logger) *CustomerResolver {
	return &CustomerResolver{
		customers: customers,
		vehicles:  vehicles,
		logger:    logger,
	}
}

// Resolve runs the cascade. selectedOrder, when non-nil, is an already
// resolved order whose customer is reused without re-resolution. The created
// flag reports whether a new customer record was persisted.
//
// Strategies, first success wins:
//  1. explicit customer id
//  2. customer attached to the selected order
//  3. composite full name + plate (vehicle-scoped lookup)
//  4. exact full name + phone, creating when absent
//  5. name-only with a deterministic synthetic phone key
//  6. plate to vehicle to owning customer
func (r *CustomerResolver) Resolve(ctx context.Context, branchID int64, id CustomerIdentity, selectedOrder *entity.Order, createIfMissing bool) (*entity.Customer, bool, error) {
	name := strings.TrimSpace(id.FullName)
	phone := strings.TrimSpace(id.Phone)
	plate := strings.ToUpper(strings.TrimSpace(id.Plate))

	if id.CustomerID > 0 {
		customer, err := r.customers.GetByID(ctx, branchID, id.CustomerID)
		if err != nil {
			r.logger.Warn("explicit customer lookup failed",
				zap.Int64("customer_id", id.CustomerID), zap.Error(err))
		} else if customer != nil {
			return customer, false, nil
		}
	}

	if selectedOrder != nil && selectedOrder.CustomerID > 0 {
		customer, err := r.customers.GetByID(ctx, branchID, selectedOrder.CustomerID)
		if err != nil {
			r.logger.Warn("order customer lookup failed",
				zap.Int64("order_id", selectedOrder.ID), zap.Error(err))
		} else if customer != nil {
			return customer, false, nil
		}
	}

	if name != "" && plate != "" {
		customer, err := r.customers.GetByNameAndPlate(ctx, branchID, name, plate)
		if err != nil {
			r.logger.Warn("name+plate composite lookup failed",
				zap.String("plate", plate), zap.Error(err))
		} else if customer != nil {
			return customer, false, nil
		}
	}

	if name != "" && phone != "" {
		customer, created, err := r.CreateOrGet(ctx, branchID, id, createIfMissing)
		if err != nil {
			r.logger.Warn("name+phone resolution failed", zap.Error(err))
		} else if customer != nil {
			return customer, created, nil
		}
	} else if name != "" {
		// No phone extracted. A synthetic deterministic key keeps repeated
		// uploads that reference the same name resolving to one record.
		withKey := id
		withKey.Phone = entity.SyntheticPhoneForName(name)
		customer, created, err := r.CreateOrGet(ctx, branchID, withKey, createIfMissing)
		if err != nil {
			r.logger.Warn("synthetic-phone resolution failed", zap.Error(err))
		} else if customer != nil {
			return customer, created, nil
		}
	}

	if plate != "" {
		customer, err := r.vehicles.GetOwnerByPlate(ctx, branchID, plate)
		if err != nil {
			r.logger.Warn("plate owner lookup failed",
				zap.String("plate", plate), zap.Error(err))
		} else if customer != nil {
			return customer, false, nil
		}
	}

	return nil, false, ErrCustomerUnresolved
}

// CreateOrGet looks up a customer by exact name+phone within the branch and
// creates one when absent (and createIfMissing is set). Lookups never mutate
// identity; contact fields of an existing record are refreshed when the
// fragments carry values the record lacks.
func (r *CustomerResolver) CreateOrGet(ctx context.Context, branchID int64, id CustomerIdentity, createIfMissing bool) (*entity.Customer, bool, error) {
	name := strings.TrimSpace(id.FullName)
	phone := strings.TrimSpace(id.Phone)
	if name == "" || phone == "" {
		return nil, false, ErrValidation
	}

	existing, err := r.customers.GetByNamePhone(ctx, branchID, name, phone)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if r.refreshContact(existing, id) {
			if err := r.customers.UpdateContact(ctx, existing); err != nil {
				// Contact refresh is best-effort; the match still stands.
				r.logger.Warn("failed to refresh customer contact info",
					zap.Int64("customer_id", existing.ID), zap.Error(err))
			}
		}
		return existing, false, nil
	}

	if !createIfMissing {
		return nil, false, nil
	}

	customerType := id.CustomerType
	if customerType == "" {
		customerType = entity.CustomerTypePersonal
	}
	customer := &entity.Customer{
		BranchID:         branchID,
		FullName:         name,
		Phone:            phone,
		Whatsapp:         strings.TrimSpace(id.Whatsapp),
		Email:            strings.TrimSpace(id.Email),
		Address:          strings.TrimSpace(id.Address),
		OrganizationName: strings.TrimSpace(id.OrganizationName),
		TaxNumber:        strings.TrimSpace(id.TaxNumber),
		CustomerType:     customerType,
		PersonalSubtype:  id.PersonalSubtype,
	}
	if err := r.customers.Create(ctx, customer); err != nil {
		return nil, false, err
	}
	r.logger.Info("created customer",
		zap.Int64("customer_id", customer.ID),
		zap.String("full_name", customer.FullName))
	return customer, true, nil
}

// refreshContact fills empty contact fields from the fragments, reporting
// whether anything changed.
func (r *CustomerResolver) refreshContact(customer *entity.Customer, id CustomerIdentity) bool {
	changed := false
	if email := strings.TrimSpace(id.Email); customer.Email == "" && email != "" && utils.ValidateEmail(email) == nil {
		customer.Email = email
		changed = true
	}
	if customer.Address == "" && strings.TrimSpace(id.Address) != "" {
		customer.Address = strings.TrimSpace(id.Address)
		changed = true
	}
	if customer.OrganizationName == "" && strings.TrimSpace(id.OrganizationName) != "" {
		customer.OrganizationName = strings.TrimSpace(id.OrganizationName)
		changed = true
	}
	if customer.TaxNumber == "" && strings.TrimSpace(id.TaxNumber) != "" {
		customer.TaxNumber = strings.TrimSpace(id.TaxNumber)
		changed = true
	}
	return changed
}
