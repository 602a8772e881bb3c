package contract

import (
	"context"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Customer, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Customer, error)
}

type OrderRepository interface {
	// FindOne preloads customer, items with products and shipment
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Order, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderId uuid.UUID, status string) error
}

type SupportTicketRepository interface {
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SupportTicket, error)
}

type PaymentEventRepository interface {
	// Create ignores an event whose EventId was already stored and reports false
	Create(ctx context.Context, event *entity.PaymentEvent) (bool, error)
	FindRecent(ctx context.Context, limit int) ([]*entity.PaymentEvent, error)
}
