package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/mapper"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/repository/specification"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/pkg/store"
)

const defaultOrderSearchLimit = 10

var customerRefPattern = regexp.MustCompile(`^customer\d+$`)

// IOrderService is the order and customer lookup surface used by the Action
// stage and the dashboard endpoints
type IOrderService interface {
	store.OrderService
	GetSupportTickets(ctx context.Context, customerEmail, orderNumber string) (*store.TicketLookupResult, error)
	SearchOrders(ctx context.Context, query string, limit int) (*store.OrderSearchResult, error)
}

type orderService struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.OrderMapper
	logger     logger.ILogger
}

func NewOrderService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IOrderService {
	return &orderService{
		uowFactory: uowFactory,
		mapper:     mapper.NewOrderMapper(),
		logger:     log,
	}
}

func (s *orderService) GetOrderDetails(ctx context.Context, orderNumber string) (*store.OrderLookupResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	order, err := uow.OrderRepository().FindOne(ctx, specification.ByOrderNumber{OrderNumber: orderNumber})
	if err != nil {
		s.logger.Error("OrderService", "Order lookup failed", map[string]interface{}{
			"order_number": orderNumber,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("lookup order %s: %w", orderNumber, err)
	}
	if order == nil {
		return &store.OrderLookupResult{
			Success:     false,
			OrderNumber: orderNumber,
			Error:       fmt.Sprintf("Order #%s not found", orderNumber),
		}, nil
	}

	return &store.OrderLookupResult{
		Success:     true,
		OrderNumber: orderNumber,
		Order:       s.mapper.ToDetails(order),
	}, nil
}

// GetCustomerOrders accepts an email or a customer handle such as "customer123"
func (s *orderService) GetCustomerOrders(ctx context.Context, identifier string, limit int) (*store.OrderHistoryResult, error) {
	if limit <= 0 {
		limit = defaultOrderSearchLimit
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	customer, err := s.findCustomer(ctx, uow, identifier)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return &store.OrderHistoryResult{
			Success:       false,
			CustomerEmail: identifier,
			Error:         fmt.Sprintf("No orders found for customer %s", identifier),
		}, nil
	}

	orders, err := uow.OrderRepository().FindAll(ctx,
		specification.ByCustomerID{CustomerID: customer.Id},
		specification.OrderBy{Field: "orders.created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", identifier, err)
	}
	if len(orders) == 0 {
		return &store.OrderHistoryResult{
			Success:       false,
			CustomerEmail: customer.Email,
			Error:         fmt.Sprintf("No orders found for customer %s", customer.Email),
		}, nil
	}

	summaries := make([]store.OrderSummary, len(orders))
	for i, o := range orders {
		summaries[i] = s.mapper.ToSummary(o)
	}
	return &store.OrderHistoryResult{
		Success:       true,
		CustomerEmail: customer.Email,
		Orders:        summaries,
		TotalOrders:   len(summaries),
	}, nil
}

func (s *orderService) GetCustomerByIdentifier(ctx context.Context, identifier string) (*store.CustomerLookupResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	customer, err := s.findCustomer(ctx, uow, identifier)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return &store.CustomerLookupResult{
			Success:    false,
			Identifier: identifier,
			Error:      fmt.Sprintf("Customer %s not found", identifier),
		}, nil
	}
	return &store.CustomerLookupResult{
		Success:    true,
		Identifier: identifier,
		Customer:   s.mapper.ToCustomer(customer),
	}, nil
}

func (s *orderService) GetSupportTickets(ctx context.Context, customerEmail, orderNumber string) (*store.TicketLookupResult, error) {
	var spec specification.Specification
	switch {
	case orderNumber != "":
		spec = specification.TicketsByOrderNumber{OrderNumber: orderNumber}
	case customerEmail != "":
		spec = specification.TicketsByCustomerEmail{Email: customerEmail}
	default:
		return &store.TicketLookupResult{
			Success: false,
			Tickets: []store.SupportTicket{},
			Error:   "Either customer_email or order_number must be provided",
		}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	tickets, err := uow.SupportTicketRepository().FindAll(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("list support tickets: %w", err)
	}

	out := make([]store.SupportTicket, len(tickets))
	for i, t := range tickets {
		out[i] = s.mapper.ToTicket(t)
	}
	return &store.TicketLookupResult{
		Success:      true,
		Tickets:      out,
		TotalTickets: len(out),
	}, nil
}

func (s *orderService) SearchOrders(ctx context.Context, query string, limit int) (*store.OrderSearchResult, error) {
	if limit <= 0 {
		limit = defaultOrderSearchLimit
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	orders, err := uow.OrderRepository().FindAll(ctx,
		specification.OrderSearchQuery{Query: query},
		specification.OrderBy{Field: "orders.created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, fmt.Errorf("search orders %q: %w", query, err)
	}

	hits := make([]store.OrderSearchHit, len(orders))
	for i, o := range orders {
		hits[i] = s.mapper.ToSearchHit(o)
	}
	return &store.OrderSearchResult{
		Success:      true,
		Query:        query,
		Results:      hits,
		TotalResults: len(hits),
	}, nil
}

func (s *orderService) findCustomer(ctx context.Context, uow unitofwork.UnitOfWork, identifier string) (*entity.Customer, error) {
	identifier = strings.TrimSpace(identifier)

	var spec specification.Specification
	if customerRefPattern.MatchString(strings.ToLower(identifier)) {
		spec = specification.ByCustomerRef{CustomerRef: identifier}
	} else {
		spec = specification.ByCustomerEmail{Email: identifier}
	}

	customer, err := uow.CustomerRepository().FindOne(ctx, spec)
	if err != nil {
		s.logger.Error("OrderService", "Customer lookup failed", map[string]interface{}{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("lookup customer %s: %w", identifier, err)
	}
	return customer, nil
}
