package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Customer struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerRef string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email       string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName   string         `gorm:"type:varchar(100)"`
	LastName    string         `gorm:"type:varchar(100)"`
	Phone       string         `gorm:"type:varchar(50)"`
	Status      string         `gorm:"type:varchar(20);default:'active'"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Customer) TableName() string {
	return "customers"
}

type Product struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Sku         string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Price       float64   `gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Product) TableName() string {
	return "products"
}

type Order struct {
	Id              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNumber     string            `gorm:"type:varchar(50);uniqueIndex;not null"`
	CustomerId      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status          string            `gorm:"type:varchar(30);default:'pending'"` // pending, processing, shipped, delivered, cancelled
	PaymentStatus   string            `gorm:"type:varchar(30);default:'pending'"`
	Subtotal        float64           `gorm:"type:decimal(10,2)"`
	TaxAmount       float64           `gorm:"type:decimal(10,2)"`
	ShippingAmount  float64           `gorm:"type:decimal(10,2)"`
	TotalAmount     float64           `gorm:"type:decimal(10,2);not null"`
	ShippingAddress datatypes.JSONMap `gorm:"type:jsonb"`
	BillingAddress  datatypes.JSONMap `gorm:"type:jsonb"`
	Notes           string            `gorm:"type:text"`
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CreatedAt       time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`

	// Relations
	Customer Customer    `gorm:"foreignKey:CustomerId"`
	Items    []OrderItem `gorm:"foreignKey:OrderId"`
	Shipment *Shipment   `gorm:"foreignKey:OrderId"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderId    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductId  uuid.UUID `gorm:"type:uuid;not null"`
	Quantity   int       `gorm:"not null;default:1"`
	UnitPrice  float64   `gorm:"type:decimal(10,2);not null"`
	TotalPrice float64   `gorm:"type:decimal(10,2);not null"`

	Product Product `gorm:"foreignKey:ProductId"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type Shipment struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderId           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	TrackingNumber    string    `gorm:"type:varchar(100)"`
	Carrier           string    `gorm:"type:varchar(50)"`
	Status            string    `gorm:"type:varchar(30)"`
	ShippedAt         *time.Time
	EstimatedDelivery *time.Time
	DeliveredAt       *time.Time
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (Shipment) TableName() string {
	return "shipments"
}

type SupportTicket struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketNumber string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	CustomerId   uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderId      *uuid.UUID `gorm:"type:uuid;index"`
	Subject      string     `gorm:"type:varchar(255);not null"`
	Description  string     `gorm:"type:text"`
	Status       string     `gorm:"type:varchar(30);default:'open'"`
	Priority     string     `gorm:"type:varchar(20);default:'medium'"`
	Category     string     `gorm:"type:varchar(50)"`
	ResolvedAt   *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`

	Customer Customer `gorm:"foreignKey:CustomerId"`
	Order    *Order   `gorm:"foreignKey:OrderId"`
}

func (SupportTicket) TableName() string {
	return "support_tickets"
}
