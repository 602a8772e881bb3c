package mapper

import (
	"time"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/model"
	"customer-service-be/pkg/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderMapper struct{}

func NewOrderMapper() *OrderMapper {
	return &OrderMapper{}
}

// Customer

func (m *OrderMapper) CustomerToEntity(c *model.Customer) *entity.Customer {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Customer{
		Id:          c.Id,
		CustomerRef: c.CustomerRef,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Phone:       c.Phone,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   c.DeletedAt.Valid,
	}
}

func (m *OrderMapper) CustomerToModel(c *entity.Customer) *model.Customer {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	return &model.Customer{
		Id:          c.Id,
		CustomerRef: c.CustomerRef,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Phone:       c.Phone,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		DeletedAt:   deletedAt,
	}
}

// Order

func (m *OrderMapper) OrderToEntity(o *model.Order) *entity.Order {
	if o == nil {
		return nil
	}

	var updatedAt *time.Time
	if !o.UpdatedAt.IsZero() {
		t := o.UpdatedAt
		updatedAt = &t
	}

	order := &entity.Order{
		Id:              o.Id,
		OrderNumber:     o.OrderNumber,
		CustomerId:      o.CustomerId,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		Subtotal:        o.Subtotal,
		TaxAmount:       o.TaxAmount,
		ShippingAmount:  o.ShippingAmount,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: map[string]interface{}(o.ShippingAddress),
		BillingAddress:  map[string]interface{}(o.BillingAddress),
		Notes:           o.Notes,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       updatedAt,
	}

	// Relations are only mapped when preloaded
	if o.Customer.Id != uuid.Nil {
		order.Customer = m.CustomerToEntity(&o.Customer)
	}
	for i := range o.Items {
		item := o.Items[i]
		mapped := &entity.OrderItem{
			Id:         item.Id,
			OrderId:    item.OrderId,
			ProductId:  item.ProductId,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
		if item.Product.Id != uuid.Nil {
			mapped.Product = &entity.Product{
				Id:          item.Product.Id,
				Sku:         item.Product.Sku,
				Name:        item.Product.Name,
				Description: item.Product.Description,
				Price:       item.Product.Price,
			}
		}
		order.Items = append(order.Items, mapped)
	}
	if o.Shipment != nil {
		order.Shipment = &entity.Shipment{
			Id:                o.Shipment.Id,
			OrderId:           o.Shipment.OrderId,
			TrackingNumber:    o.Shipment.TrackingNumber,
			Carrier:           o.Shipment.Carrier,
			Status:            o.Shipment.Status,
			ShippedAt:         o.Shipment.ShippedAt,
			EstimatedDelivery: o.Shipment.EstimatedDelivery,
			DeliveredAt:       o.Shipment.DeliveredAt,
		}
	}
	return order
}

func (m *OrderMapper) TicketToEntity(t *model.SupportTicket) *entity.SupportTicket {
	if t == nil {
		return nil
	}
	ticket := &entity.SupportTicket{
		Id:           t.Id,
		TicketNumber: t.TicketNumber,
		CustomerId:   t.CustomerId,
		OrderId:      t.OrderId,
		Subject:      t.Subject,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		Category:     t.Category,
		ResolvedAt:   t.ResolvedAt,
		CreatedAt:    t.CreatedAt,
	}
	if t.Customer.Id != uuid.Nil {
		ticket.Customer = m.CustomerToEntity(&t.Customer)
	}
	if t.Order != nil {
		number := t.Order.OrderNumber
		ticket.OrderNumber = &number
	}
	return ticket
}

// Workflow views

func (m *OrderMapper) ToDetails(o *entity.Order) *store.OrderDetails {
	details := &store.OrderDetails{
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		TotalAmount:     o.TotalAmount,
		Subtotal:        o.Subtotal,
		TaxAmount:       o.TaxAmount,
		ShippingAmount:  o.ShippingAmount,
		CreatedAt:       isoTime(o.CreatedAt),
		ShippedAt:       isoTimePtr(o.ShippedAt),
		DeliveredAt:     isoTimePtr(o.DeliveredAt),
		ShippingAddress: o.ShippingAddress,
		Items:           make([]store.OrderItem, 0, len(o.Items)),
	}
	if o.Customer != nil {
		details.Customer = store.OrderCustomer{
			Name:  o.Customer.FullName(),
			Email: o.Customer.Email,
			Phone: o.Customer.Phone,
		}
	}
	for _, item := range o.Items {
		line := store.OrderItem{
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.SKU = item.Product.Sku
			line.Description = item.Product.Description
		}
		details.Items = append(details.Items, line)
	}
	if s := o.Shipment; s != nil {
		details.Shipment = &store.Shipment{
			TrackingNumber:    s.TrackingNumber,
			Carrier:           s.Carrier,
			Status:            s.Status,
			ShippedAt:         isoTimePtr(s.ShippedAt),
			EstimatedDelivery: isoTimePtr(s.EstimatedDelivery),
			DeliveredAt:       isoTimePtr(s.DeliveredAt),
		}
	}
	return details
}

func (m *OrderMapper) ToSummary(o *entity.Order) store.OrderSummary {
	return store.OrderSummary{
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		CreatedAt:     isoTime(o.CreatedAt),
		ShippedAt:     isoTimePtr(o.ShippedAt),
		DeliveredAt:   isoTimePtr(o.DeliveredAt),
	}
}

func (m *OrderMapper) ToSearchHit(o *entity.Order) store.OrderSearchHit {
	hit := store.OrderSearchHit{
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		CreatedAt:   isoTime(o.CreatedAt),
	}
	if o.Customer != nil {
		hit.CustomerName = o.Customer.FullName()
		hit.CustomerEmail = o.Customer.Email
	}
	return hit
}

func (m *OrderMapper) ToCustomer(c *entity.Customer) *store.Customer {
	return &store.Customer{
		ID:          c.Id.String(),
		CustomerRef: c.CustomerRef,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Phone:       c.Phone,
		Status:      c.Status,
		CreatedAt:   isoTime(c.CreatedAt),
	}
}

func (m *OrderMapper) ToTicket(t *entity.SupportTicket) store.SupportTicket {
	ticket := store.SupportTicket{
		TicketNumber: t.TicketNumber,
		Subject:      t.Subject,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		Category:     t.Category,
		CreatedAt:    isoTime(t.CreatedAt),
		ResolvedAt:   isoTimePtr(t.ResolvedAt),
		OrderNumber:  t.OrderNumber,
	}
	if t.Customer != nil {
		ticket.CustomerName = t.Customer.FullName()
		ticket.CustomerEmail = t.Customer.Email
	}
	return ticket
}

func isoTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func isoTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := isoTime(*t)
	return &s
}
