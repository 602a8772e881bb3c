package service

import (
	"context"
	"testing"
	"time"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededOrderService(t *testing.T) (IOrderService, *fakeUow) {
	t.Helper()
	uow := newFakeUow()

	alice := &entity.Customer{Id: uuid.New(), CustomerRef: "customer123", Email: "alice@shop.test", FirstName: "Alice", LastName: "Lee", Status: "active", CreatedAt: time.Now()}
	uow.customers.customers = []*entity.Customer{alice}

	eta := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	uow.orders.orders = []*entity.Order{
		{
			Id: uuid.New(), OrderNumber: "1001", CustomerId: alice.Id, Customer: alice,
			Status: "shipped", PaymentStatus: "paid", TotalAmount: 42.5, CreatedAt: time.Now(),
			Items:    []*entity.OrderItem{{Quantity: 2, TotalPrice: 20, Product: &entity.Product{Name: "Mug", Sku: "MUG-1"}}},
			Shipment: &entity.Shipment{Carrier: "UPS", TrackingNumber: "1Z", Status: "in_transit", EstimatedDelivery: &eta},
		},
		{Id: uuid.New(), OrderNumber: "1002", CustomerId: alice.Id, Customer: alice, Status: "pending", CreatedAt: time.Now()},
	}

	return NewOrderService(&fakeUowFactory{uow: uow}, logger.NewNopLogger()), uow
}

func TestGetOrderDetails(t *testing.T) {
	svc, _ := seededOrderService(t)

	res, err := svc.GetOrderDetails(context.Background(), "1001")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "shipped", res.Order.Status)
	assert.Equal(t, "Alice Lee", res.Order.Customer.Name)
	require.Len(t, res.Order.Items, 1)
	assert.Equal(t, "Mug", res.Order.Items[0].Name)
	require.NotNil(t, res.Order.Shipment)
	assert.Equal(t, "1Z", res.Order.Shipment.TrackingNumber)
}

func TestGetOrderDetailsNotFoundIsNotAnError(t *testing.T) {
	svc, _ := seededOrderService(t)

	res, err := svc.GetOrderDetails(context.Background(), "9999")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Order #9999 not found", res.Error)
}

func TestGetOrderDetailsRepositoryFailure(t *testing.T) {
	svc, uow := seededOrderService(t)
	uow.orders.err = errBoom

	_, err := svc.GetOrderDetails(context.Background(), "1001")
	assert.ErrorIs(t, err, errBoom)
}

func TestGetCustomerOrdersResolvesIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		wantSpec   specification.Specification
	}{
		{"customer ref", "customer123", specification.ByCustomerRef{CustomerRef: "customer123"}},
		{"email", "Alice@Shop.test", specification.ByCustomerEmail{Email: "Alice@Shop.test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, uow := seededOrderService(t)

			res, err := svc.GetCustomerOrders(context.Background(), tt.identifier, 10)
			require.NoError(t, err)
			assert.True(t, res.Success)
			assert.Equal(t, "alice@shop.test", res.CustomerEmail)
			assert.Equal(t, 2, res.TotalOrders)
			assert.Equal(t, []specification.Specification{tt.wantSpec}, uow.customers.lastSpecs)
		})
	}
}

func TestGetCustomerOrdersUnknownCustomer(t *testing.T) {
	svc, _ := seededOrderService(t)

	res, err := svc.GetCustomerOrders(context.Background(), "customer456", 10)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "No orders found for customer customer456", res.Error)
}

func TestGetCustomerOrdersRespectsLimit(t *testing.T) {
	svc, _ := seededOrderService(t)

	res, err := svc.GetCustomerOrders(context.Background(), "customer123", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalOrders)
}

func TestGetCustomerByIdentifier(t *testing.T) {
	svc, _ := seededOrderService(t)

	res, err := svc.GetCustomerByIdentifier(context.Background(), "customer123")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "Alice", res.Customer.FirstName)

	res, err = svc.GetCustomerByIdentifier(context.Background(), "nobody@shop.test")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Customer nobody@shop.test not found", res.Error)
}

func TestGetSupportTicketsNeedsAFilter(t *testing.T) {
	svc, uow := seededOrderService(t)

	res, err := svc.GetSupportTickets(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotNil(t, res.Tickets)

	_, err = svc.GetSupportTickets(context.Background(), "alice@shop.test", "1001")
	require.NoError(t, err)
	// order number wins when both are given
	assert.Equal(t, []specification.Specification{specification.TicketsByOrderNumber{OrderNumber: "1001"}}, uow.tickets.lastSpecs)
}

func TestSearchOrders(t *testing.T) {
	svc, _ := seededOrderService(t)

	res, err := svc.SearchOrders(context.Background(), "100", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalResults)
	assert.Equal(t, "100", res.Query)
}
