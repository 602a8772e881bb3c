package store

import "context"

// OrderItem is a product line on an order
type OrderItem struct {
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// Shipment carries carrier tracking for an order
type Shipment struct {
	TrackingNumber    string  `json:"tracking_number"`
	Carrier           string  `json:"carrier"`
	Status            string  `json:"status"`
	ShippedAt         *string `json:"shipped_at"`
	EstimatedDelivery *string `json:"estimated_delivery"`
	DeliveredAt       *string `json:"delivered_at"`
}

// OrderCustomer is the customer summary embedded in order details
type OrderCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderDetails is the full view of a single order
type OrderDetails struct {
	OrderNumber     string                 `json:"order_number"`
	Status          string                 `json:"status"`
	PaymentStatus   string                 `json:"payment_status"`
	TotalAmount     float64                `json:"total_amount"`
	Subtotal        float64                `json:"subtotal"`
	TaxAmount       float64                `json:"tax_amount"`
	ShippingAmount  float64                `json:"shipping_amount"`
	CreatedAt       string                 `json:"created_at"`
	ShippedAt       *string                `json:"shipped_at"`
	DeliveredAt     *string                `json:"delivered_at"`
	Customer        OrderCustomer          `json:"customer"`
	ShippingAddress map[string]interface{} `json:"shipping_address"`
	Items           []OrderItem            `json:"items"`
	Shipment        *Shipment              `json:"shipment,omitempty"`
}

// OrderSummary is one row of a customer's order history
type OrderSummary struct {
	OrderNumber   string  `json:"order_number"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	TotalAmount   float64 `json:"total_amount"`
	CreatedAt     string  `json:"created_at"`
	ShippedAt     *string `json:"shipped_at"`
	DeliveredAt   *string `json:"delivered_at"`
}

// Customer is the customer profile exposed to the reply stage
type Customer struct {
	ID          string `json:"id"`
	CustomerRef string `json:"customer_ref"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// SupportTicket is a customer support ticket
type SupportTicket struct {
	TicketNumber  string  `json:"ticket_number"`
	Subject       string  `json:"subject"`
	Description   string  `json:"description"`
	Status        string  `json:"status"`
	Priority      string  `json:"priority"`
	Category      string  `json:"category"`
	CreatedAt     string  `json:"created_at"`
	ResolvedAt    *string `json:"resolved_at"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	OrderNumber   *string `json:"order_number"`
}

// OrderSearchHit is a single order search result
type OrderSearchHit struct {
	OrderNumber   string  `json:"order_number"`
	Status        string  `json:"status"`
	TotalAmount   float64 `json:"total_amount"`
	CreatedAt     string  `json:"created_at"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
}

// The lookup results below are success-shaped: a missing order or customer is reported
// with Success=false and Error set, never as a Go error.

type OrderLookupResult struct {
	Success     bool          `json:"success"`
	OrderNumber string        `json:"order_number"`
	Order       *OrderDetails `json:"order,omitempty"`
	Error       string        `json:"error,omitempty"`
}

type OrderHistoryResult struct {
	Success       bool           `json:"success"`
	CustomerEmail string         `json:"customer_email"`
	Orders        []OrderSummary `json:"orders,omitempty"`
	TotalOrders   int            `json:"total_orders"`
	Error         string         `json:"error,omitempty"`
}

type CustomerLookupResult struct {
	Success    bool      `json:"success"`
	Identifier string    `json:"identifier"`
	Customer   *Customer `json:"customer,omitempty"`
	Error      string    `json:"error,omitempty"`
}

type TicketLookupResult struct {
	Success      bool            `json:"success"`
	Tickets      []SupportTicket `json:"tickets"`
	TotalTickets int             `json:"total_tickets"`
	Error        string          `json:"error,omitempty"`
}

type OrderSearchResult struct {
	Success      bool             `json:"success"`
	Query        string           `json:"query"`
	Results      []OrderSearchHit `json:"results"`
	TotalResults int              `json:"total_results"`
	Error        string           `json:"error,omitempty"`
}

// OrderService resolves orders and customers for the Action stage.
// Not-found is reported through the result, an error means the lookup itself failed.
type OrderService interface {
	GetOrderDetails(ctx context.Context, orderNumber string) (*OrderLookupResult, error)
	GetCustomerOrders(ctx context.Context, identifier string, limit int) (*OrderHistoryResult, error)
	GetCustomerByIdentifier(ctx context.Context, identifier string) (*CustomerLookupResult, error)
}
