package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

func newOrderResolverFixture() (*OrderResolver, *fakeOrderRepo) {
	orders := newFakeOrderRepo()
	return NewOrderResolver(orders, zap.NewNop()), orders
}

func startedOrder(t *testing.T, orders *fakeOrderRepo, branchID, customerID int64, plate string) *entity.Order {
	t.Helper()
	o := &entity.Order{
		BranchID:   branchID,
		CustomerID: customerID,
		Type:       entity.OrderTypeService,
		Status:     entity.OrderStatusCreated,
	}
	require.NoError(t, orders.Create(context.Background(), o))
	orders.plates[o.ID] = plate
	return o
}

func TestOrderResolver_SelectedOrderWins(t *testing.T) {
	resolver, orders := newOrderResolverFixture()
	selected := startedOrder(t, orders, 1, 5, "KCA 111A")
	startedOrder(t, orders, 1, 5, "KCA 222B")

	customer := &entity.Customer{ID: 5, FullName: "Regular", Phone: "0711"}
	got, created, err := resolver.Resolve(context.Background(), 1, selected.ID, "KCA 222B", customer, nil, "")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, selected.ID, got.ID, "explicit selection beats the plate match")
}

func TestOrderResolver_StartedByPlate(t *testing.T) {
	resolver, orders := newOrderResolverFixture()
	older := startedOrder(t, orders, 1, 5, "KCA 333C")
	newer := startedOrder(t, orders, 1, 5, "KCA 333C")

	customer := &entity.Customer{ID: 5, FullName: "Regular", Phone: "0711"}
	got, created, err := resolver.Resolve(context.Background(), 1, 0, "kca 333c", customer, nil, "")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, newer.ID, got.ID, "most recent started order wins")
	assert.NotEqual(t, older.ID, got.ID)
}

func TestOrderResolver_CreatesServiceOrder(t *testing.T) {
	resolver, orders := newOrderResolverFixture()
	customer := &entity.Customer{ID: 5, FullName: "Walk-In", Phone: "0711"}
	vehicle := &entity.Vehicle{ID: 3, CustomerID: 5, PlateNumber: "KDD 444D"}

	got, created, err := resolver.Resolve(context.Background(), 1, 0, "KDD 444D", customer, vehicle, "")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.OrderTypeService, got.Type)
	assert.Equal(t, entity.OrderStatusCreated, got.Status)
	assert.Equal(t, customer.ID, got.CustomerID)
	require.NotNil(t, got.VehicleID)
	assert.Equal(t, vehicle.ID, *got.VehicleID)
	assert.NotNil(t, got.StartedAt)
	assert.Equal(t, "Auto-created from invoice upload", got.Description)
	assert.Len(t, orders.orders, 1)
}

func TestOrderResolver_TemporaryCustomerGetsNoOrder(t *testing.T) {
	resolver, orders := newOrderResolverFixture()
	temp := &entity.Customer{
		ID:       5,
		FullName: entity.TempCustomerNamePrefix + "KEE 555E",
		Phone:    entity.TempCustomerPhonePrefix + "KEE555E",
	}

	got, created, err := resolver.Resolve(context.Background(), 1, 0, "KEE 555E", temp, nil, "")

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, created)
	assert.Empty(t, orders.orders)
}

func TestOrderResolver_NilCustomerGetsNoOrder(t *testing.T) {
	resolver, orders := newOrderResolverFixture()

	got, created, err := resolver.Resolve(context.Background(), 1, 0, "", nil, nil, "")

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, created)
	assert.Empty(t, orders.orders)
}

func TestOrderResolver_PlateScopedToBranch(t *testing.T) {
	resolver, orders := newOrderResolverFixture()
	startedOrder(t, orders, 2, 5, "KFF 666F")

	customer := &entity.Customer{ID: 9, FullName: "Branch One", Phone: "0722"}
	got, created, err := resolver.Resolve(context.Background(), 1, 0, "KFF 666F", customer, nil, "")

	require.NoError(t, err)
	assert.True(t, created, "other branch's order is invisible, a new one is created")
	assert.Equal(t, int64(1), got.BranchID)
}

func TestAttachParties(t *testing.T) {
	resolver, orders := newOrderResolverFixture()
	order := startedOrder(t, orders, 1, 5, "KGG 777G")

	customer := &entity.Customer{ID: 11}
	vehicle := &entity.Vehicle{ID: 4}
	require.NoError(t, resolver.AttachParties(context.Background(), order, customer, vehicle))

	assert.Equal(t, int64(11), order.CustomerID)
	require.NotNil(t, order.VehicleID)
	assert.Equal(t, int64(4), *order.VehicleID)
	assert.Equal(t, 1, orders.updates)

	// Same parties again: nothing changed, no update issued.
	require.NoError(t, resolver.AttachParties(context.Background(), order, customer, vehicle))
	assert.Equal(t, 1, orders.updates)
}

func TestFinalize_UpdatesDescriptionAndDuration(t *testing.T) {
	resolver, orders := newOrderResolverFixture()
	order := startedOrder(t, orders, 1, 5, "KHH 888H")
	order.Description = "Customer reports grinding noise"

	require.NoError(t, resolver.Finalize(context.Background(), order, []string{"Brake service", "Wheel balancing"}, 90))

	assert.Equal(t, "Customer reports grinding noise\nServices: Brake service, Wheel balancing", order.Description)
	assert.Equal(t, 90, order.EstimatedDuration)
	assert.Equal(t, 1, orders.updates)
}

func TestFinalize_NilOrderIsNoop(t *testing.T) {
	resolver, orders := newOrderResolverFixture()
	require.NoError(t, resolver.Finalize(context.Background(), nil, []string{"Brake service"}, 60))
	assert.Zero(t, orders.updates)
}
