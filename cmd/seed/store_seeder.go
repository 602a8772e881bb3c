package main

import (
	"log"
	"time"

	"customer-service-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedProducts upserts the demo catalog by SKU
func SeedProducts(db *gorm.DB) map[string]model.Product {
	catalog := []model.Product{
		{Sku: "MUG-001", Name: "Ceramic Mug", Description: "350ml stoneware mug", Price: 12.50},
		{Sku: "TEE-002", Name: "Logo T-Shirt", Description: "Organic cotton, unisex", Price: 24.00},
		{Sku: "BAG-003", Name: "Canvas Tote", Description: "Heavy canvas shopping bag", Price: 18.00},
		{Sku: "HDP-004", Name: "Wireless Headphones", Description: "Over-ear, 30h battery", Price: 129.99},
	}

	out := make(map[string]model.Product, len(catalog))
	for _, p := range catalog {
		var existing model.Product
		if err := db.Where(model.Product{Sku: p.Sku}).Attrs(p).FirstOrCreate(&existing).Error; err != nil {
			log.Printf("Error creating product '%s': %v", p.Sku, err)
			continue
		}
		out[p.Sku] = existing
	}
	return out
}

// SeedCustomers matches the identifiers the chat client uses by default
func SeedCustomers(db *gorm.DB) map[string]model.Customer {
	people := []model.Customer{
		{CustomerRef: "customer123", Email: "alice@example.com", FirstName: "Alice", LastName: "Nguyen", Phone: "+1-555-0100", Status: "active"},
		{CustomerRef: "customer456", Email: "bob@example.com", FirstName: "Bob", LastName: "Santoso", Phone: "+1-555-0101", Status: "active"},
		{CustomerRef: "customer789", Email: "carol@example.com", FirstName: "Carol", LastName: "Idris", Status: "suspended"},
	}

	out := make(map[string]model.Customer, len(people))
	for _, c := range people {
		var existing model.Customer
		if err := db.Where(model.Customer{CustomerRef: c.CustomerRef}).Attrs(c).FirstOrCreate(&existing).Error; err != nil {
			log.Printf("Error creating customer '%s': %v", c.CustomerRef, err)
			continue
		}
		out[c.CustomerRef] = existing
	}
	return out
}

type seedLine struct {
	sku string
	qty int
}

type seedOrder struct {
	number   string
	customer string
	status   string
	payment  string
	age      time.Duration
	lines    []seedLine
	carrier  string
	tracking string
}

func SeedOrders(db *gorm.DB, customers map[string]model.Customer, products map[string]model.Product) {
	orders := []seedOrder{
		{number: "10001", customer: "customer123", status: "delivered", payment: "paid", age: 30 * 24 * time.Hour,
			lines: []seedLine{{"MUG-001", 2}, {"BAG-003", 1}}, carrier: "UPS", tracking: "1Z999AA10123456784"},
		{number: "10002", customer: "customer123", status: "shipped", payment: "paid", age: 3 * 24 * time.Hour,
			lines: []seedLine{{"HDP-004", 1}}, carrier: "FedEx", tracking: "612999AA10"},
		{number: "10003", customer: "customer123", status: "pending", payment: "pending", age: 2 * time.Hour,
			lines: []seedLine{{"TEE-002", 3}}},
		{number: "20001", customer: "customer456", status: "processing", payment: "paid", age: 24 * time.Hour,
			lines: []seedLine{{"TEE-002", 1}, {"MUG-001", 1}}},
	}

	for _, o := range orders {
		var count int64
		db.Model(&model.Order{}).Where("order_number = ?", o.number).Count(&count)
		if count > 0 {
			log.Printf("Order '%s' already exists, skipping...", o.number)
			continue
		}

		customer, ok := customers[o.customer]
		if !ok {
			continue
		}
		if err := db.Transaction(func(tx *gorm.DB) error {
			return createOrder(tx, o, customer, products)
		}); err != nil {
			log.Printf("Error creating order '%s': %v", o.number, err)
		} else {
			log.Printf("Created order #%s for %s", o.number, customer.Email)
		}
	}
}

func createOrder(tx *gorm.DB, o seedOrder, customer model.Customer, products map[string]model.Product) error {
	placed := time.Now().Add(-o.age)
	order := model.Order{
		Id:            uuid.New(),
		OrderNumber:   o.number,
		CustomerId:    customer.Id,
		Status:        o.status,
		PaymentStatus: o.payment,
		ShippingAddress: datatypes.JSONMap{
			"line1":   "1 Harbour Street",
			"city":    "Springfield",
			"country": "US",
		},
		CreatedAt: placed,
	}

	var items []model.OrderItem
	for _, line := range o.lines {
		p := products[line.sku]
		total := p.Price * float64(line.qty)
		order.Subtotal += total
		items = append(items, model.OrderItem{
			OrderId:    order.Id,
			ProductId:  p.Id,
			Quantity:   line.qty,
			UnitPrice:  p.Price,
			TotalPrice: total,
		})
	}
	order.TaxAmount = order.Subtotal * 0.08
	order.ShippingAmount = 5
	order.TotalAmount = order.Subtotal + order.TaxAmount + order.ShippingAmount

	if o.carrier != "" {
		shipped := placed.Add(24 * time.Hour)
		order.ShippedAt = &shipped
		if o.status == "delivered" {
			delivered := shipped.Add(72 * time.Hour)
			order.DeliveredAt = &delivered
		}
	}

	if err := tx.Create(&order).Error; err != nil {
		return err
	}
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
	}
	if o.carrier == "" {
		return nil
	}

	eta := order.ShippedAt.Add(5 * 24 * time.Hour)
	shipment := model.Shipment{
		OrderId:           order.Id,
		TrackingNumber:    o.tracking,
		Carrier:           o.carrier,
		Status:            "in_transit",
		ShippedAt:         order.ShippedAt,
		EstimatedDelivery: &eta,
		DeliveredAt:       order.DeliveredAt,
	}
	if order.DeliveredAt != nil {
		shipment.Status = "delivered"
	}
	return tx.Create(&shipment).Error
}

func SeedTickets(db *gorm.DB, customers map[string]model.Customer) {
	tickets := []model.SupportTicket{
		{TicketNumber: "TCK-0001", Subject: "Mug arrived chipped", Description: "One of the two mugs has a chip on the rim.", Status: "open", Priority: "medium", Category: "damaged_item"},
		{TicketNumber: "TCK-0002", Subject: "Change delivery address", Description: "Moving next week, please update the address.", Status: "resolved", Priority: "low", Category: "shipping"},
	}

	owner, ok := customers["customer123"]
	if !ok {
		return
	}
	for _, t := range tickets {
		t.CustomerId = owner.Id
		var existing model.SupportTicket
		if err := db.Where(model.SupportTicket{TicketNumber: t.TicketNumber}).Attrs(t).FirstOrCreate(&existing).Error; err != nil {
			log.Printf("Error creating ticket '%s': %v", t.TicketNumber, err)
		}
	}
}
