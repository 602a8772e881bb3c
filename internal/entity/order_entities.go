package entity

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	Id          uuid.UUID
	CustomerRef string // public handle such as "customer123"
	Email       string
	FirstName   string
	LastName    string
	Phone       string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

type Product struct {
	Id          uuid.UUID
	Sku         string
	Name        string
	Description string
	Price       float64
}

type OrderItem struct {
	Id         uuid.UUID
	OrderId    uuid.UUID
	ProductId  uuid.UUID
	Product    *Product
	Quantity   int
	UnitPrice  float64
	TotalPrice float64
}

type Shipment struct {
	Id                uuid.UUID
	OrderId           uuid.UUID
	TrackingNumber    string
	Carrier           string
	Status            string
	ShippedAt         *time.Time
	EstimatedDelivery *time.Time
	DeliveredAt       *time.Time
}

type Order struct {
	Id              uuid.UUID
	OrderNumber     string
	CustomerId      uuid.UUID
	Customer        *Customer
	Status          string
	PaymentStatus   string
	Subtotal        float64
	TaxAmount       float64
	ShippingAmount  float64
	TotalAmount     float64
	ShippingAddress map[string]interface{}
	BillingAddress  map[string]interface{}
	Notes           string
	Items           []*OrderItem
	Shipment        *Shipment
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

type SupportTicket struct {
	Id           uuid.UUID
	TicketNumber string
	CustomerId   uuid.UUID
	Customer     *Customer
	OrderId      *uuid.UUID
	OrderNumber  *string
	Subject      string
	Description  string
	Status       string
	Priority     string
	Category     string
	ResolvedAt   *time.Time
	CreatedAt    time.Time
}
