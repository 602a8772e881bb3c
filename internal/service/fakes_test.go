package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/repository/contract"
	"customer-service-be/internal/repository/specification"
	"customer-service-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeUow struct {
	customers     *fakeCustomerRepo
	orders        *fakeOrderRepo
	tickets       *fakeTicketRepo
	payments      *fakePaymentEventRepo
	conversations contract.ConversationRepository

	begun, committed int
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		customers: &fakeCustomerRepo{},
		orders:    &fakeOrderRepo{paymentStatus: map[uuid.UUID]string{}},
		tickets:   &fakeTicketRepo{},
		payments:  &fakePaymentEventRepo{byEventID: map[string]*entity.PaymentEvent{}},
	}
}

func (u *fakeUow) Begin(ctx context.Context) error { u.begun++; return nil }
func (u *fakeUow) Commit() error                   { u.committed++; return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) ConversationRepository() contract.ConversationRepository   { return u.conversations }
func (u *fakeUow) CustomerRepository() contract.CustomerRepository           { return u.customers }
func (u *fakeUow) OrderRepository() contract.OrderRepository                 { return u.orders }
func (u *fakeUow) SupportTicketRepository() contract.SupportTicketRepository { return u.tickets }
func (u *fakeUow) PaymentEventRepository() contract.PaymentEventRepository   { return u.payments }

type fakeCustomerRepo struct {
	customers []*entity.Customer
	lastSpecs []specification.Specification
	err       error
}

func (r *fakeCustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	r.customers = append(r.customers, c)
	return nil
}

func (r *fakeCustomerRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Customer, error) {
	r.lastSpecs = specs
	if r.err != nil {
		return nil, r.err
	}
	for _, c := range r.customers {
		if customerMatches(c, specs) {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.customers {
		if customerMatches(c, specs) {
			out = append(out, c)
		}
	}
	return out, nil
}

func customerMatches(c *entity.Customer, specs []specification.Specification) bool {
	for _, s := range specs {
		switch s := s.(type) {
		case specification.ByCustomerRef:
			if !strings.EqualFold(c.CustomerRef, s.CustomerRef) {
				return false
			}
		case specification.ByCustomerEmail:
			if !strings.EqualFold(c.Email, s.Email) {
				return false
			}
		}
	}
	return true
}

type fakeOrderRepo struct {
	orders        []*entity.Order
	paymentStatus map[uuid.UUID]string
	err           error
}

func (r *fakeOrderRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Order, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeOrderRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Order, error) {
	if r.err != nil {
		return nil, r.err
	}
	limit := -1
	var out []*entity.Order
	for _, o := range r.orders {
		keep := true
		for _, s := range specs {
			switch s := s.(type) {
			case specification.ByOrderNumber:
				keep = keep && o.OrderNumber == s.OrderNumber
			case specification.ByCustomerID:
				keep = keep && o.CustomerId == s.CustomerID
			case specification.OrderSearchQuery:
				q := strings.ToLower(s.Query)
				keep = keep && (strings.Contains(strings.ToLower(o.OrderNumber), q) ||
					(o.Customer != nil && strings.Contains(strings.ToLower(o.Customer.Email), q)))
			case specification.Pagination:
				limit = s.Limit
			}
		}
		if keep {
			out = append(out, o)
		}
	}
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdatePaymentStatus(ctx context.Context, orderId uuid.UUID, status string) error {
	r.paymentStatus[orderId] = status
	return nil
}

type fakeTicketRepo struct {
	tickets   []*entity.SupportTicket
	lastSpecs []specification.Specification
}

func (r *fakeTicketRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SupportTicket, error) {
	r.lastSpecs = specs
	return r.tickets, nil
}

type fakePaymentEventRepo struct {
	mu        sync.Mutex
	byEventID map[string]*entity.PaymentEvent
	order     []*entity.PaymentEvent
	err       error
}

func (r *fakePaymentEventRepo) Create(ctx context.Context, e *entity.PaymentEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	if _, ok := r.byEventID[e.EventId]; ok {
		return false, nil
	}
	r.byEventID[e.EventId] = e
	r.order = append(r.order, e)
	return true, nil
}

func (r *fakePaymentEventRepo) FindRecent(ctx context.Context, limit int) ([]*entity.PaymentEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PaymentEvent
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.order[i])
	}
	return out, nil
}

var errBoom = errors.New("boom")
