package unitofwork

import (
	"context"

	"customer-service-be/internal/repository/contract"
)

// RepositoryFactory hands out one short lived unit per request or webhook event
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

// UnitOfWork scopes repositories to a single connection.
// Between Begin and Commit/Rollback every repository shares the transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	CustomerRepository() contract.CustomerRepository
	OrderRepository() contract.OrderRepository
	SupportTicketRepository() contract.SupportTicketRepository
	PaymentEventRepository() contract.PaymentEventRepository
}
