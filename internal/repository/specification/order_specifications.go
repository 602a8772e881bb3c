package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByOrderNumber struct {
	OrderNumber string
}

func (s ByOrderNumber) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("orders.order_number = ?", s.OrderNumber)
}

type ByCustomerID struct {
	CustomerID uuid.UUID
}

func (s ByCustomerID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("customer_id = ?", s.CustomerID)
}

// ByCustomerEmail matches customers by email, case-insensitive
type ByCustomerEmail struct {
	Email string
}

func (s ByCustomerEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(email) = LOWER(?)", s.Email)
}

type ByCustomerRef struct {
	CustomerRef string
}

func (s ByCustomerRef) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(customer_ref) = LOWER(?)", s.CustomerRef)
}

// OrderSearchQuery matches order number, customer names or email (ILIKE)
type OrderSearchQuery struct {
	Query string
}

func (s OrderSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	return db.Joins("JOIN customers ON customers.id = orders.customer_id").
		Where("orders.order_number ILIKE ? OR customers.first_name ILIKE ? OR customers.last_name ILIKE ? OR customers.email ILIKE ? OR CONCAT(customers.first_name, ' ', customers.last_name) ILIKE ?",
			pattern, pattern, pattern, pattern, pattern)
}

// TicketsByCustomerEmail requires no prior join on customers
type TicketsByCustomerEmail struct {
	Email string
}

func (s TicketsByCustomerEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN customers ON customers.id = support_tickets.customer_id").
		Where("LOWER(customers.email) = LOWER(?)", s.Email)
}

type TicketsByOrderNumber struct {
	OrderNumber string
}

func (s TicketsByOrderNumber) Apply(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN orders ON orders.id = support_tickets.order_id").
		Where("orders.order_number = ?", s.OrderNumber)
}

type ByEventID struct {
	EventID string
}

func (s ByEventID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("event_id = ?", s.EventID)
}
