package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"customer-service-be/internal/dto"
	"customer-service-be/internal/entity"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/repository/specification"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/internal/websocket"
	"customer-service-be/pkg/events"
	"customer-service-be/pkg/payment"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// provider custom field carrying the invoice (order) number
const invoiceField = "custom_field2"

// NotificationDelivery pushes real-time updates to connected customers
type NotificationDelivery interface {
	Send(userID string, notification websocket.Notification)
}

type IPaymentConsumerService interface {
	Consume(ctx context.Context) error
}

type paymentConsumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	events     events.Publisher
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewPaymentConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher events.Publisher,
	delivery NotificationDelivery,
	log logger.ILogger,
) IPaymentConsumerService {
	return &paymentConsumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		events:     eventPublisher,
		delivery:   delivery,
		logger:     log,
	}
}

func (cs *paymentConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *paymentConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PaymentWebhookMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("PaymentConsumer", "Failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // never retry a malformed message
		return
	}

	inserted, err := cs.persist(ctx, &payload)
	if err != nil {
		cs.logger.Error("PaymentConsumer", "Failed to persist payment event", map[string]interface{}{
			"event_id": payload.EventId,
			"error":    err.Error(),
		})
		msg.Nack()
		return
	}
	if !inserted {
		cs.logger.Info("PaymentConsumer", "Duplicate payment event ignored", map[string]interface{}{
			"event_id": payload.EventId,
		})
		msg.Ack()
		return
	}

	if err := cs.events.Publish(ctx, events.PaymentWebhook(payload.EventId, payload.Type, payload.PaymentId, payload.UserId, payload.TransactionStatus)); err != nil {
		cs.logger.Warn("PaymentConsumer", "Failed to publish payment event", map[string]interface{}{
			"event_id": payload.EventId,
			"error":    err.Error(),
		})
	}

	if payload.UserId != "" && cs.delivery != nil {
		cs.delivery.Send(payload.UserId, paymentNotification(&payload))
	}

	cs.logger.Info("PaymentConsumer", "Payment event processed", map[string]interface{}{
		"event_id":   payload.EventId,
		"event_type": payload.Type,
	})
	msg.Ack()
}

// persist stores the event and moves the linked order's payment status in one transaction
func (cs *paymentConsumerService) persist(ctx context.Context, payload *dto.PaymentWebhookMessage) (bool, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	inserted, err := uow.PaymentEventRepository().Create(ctx, &entity.PaymentEvent{
		Id:          uuid.New(),
		EventId:     payload.EventId,
		EventType:   payload.Type,
		PaymentId:   payload.PaymentId,
		UserId:      payload.UserId,
		Status:      payload.TransactionStatus,
		GrossAmount: payload.GrossAmount,
		Payload:     payload.Data,
		CreatedAt:   payload.ReceivedAt,
	})
	if err != nil || !inserted {
		return false, err
	}

	if invoice, _ := payload.Data[invoiceField].(string); invoice != "" {
		order, err := uow.OrderRepository().FindOne(ctx, specification.ByOrderNumber{OrderNumber: invoice})
		if err != nil {
			return false, fmt.Errorf("find order %s: %w", invoice, err)
		}
		if order == nil {
			cs.logger.Warn("PaymentConsumer", "Payment references unknown order", map[string]interface{}{
				"order_number": invoice,
				"event_id":     payload.EventId,
			})
		} else if err := uow.OrderRepository().UpdatePaymentStatus(ctx, order.Id, OrderPaymentStatus(payload.Type)); err != nil {
			return false, fmt.Errorf("update order %s: %w", invoice, err)
		}
	}

	if err := uow.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// OrderPaymentStatus maps a gateway event type onto orders.payment_status
func OrderPaymentStatus(eventType string) string {
	switch eventType {
	case payment.EventPaymentSucceeded:
		return "paid"
	case payment.EventPaymentFailed:
		return "failed"
	default:
		return "pending"
	}
}

func paymentNotification(p *dto.PaymentWebhookMessage) websocket.Notification {
	n := websocket.Notification{
		Data: map[string]interface{}{
			"payment_id":   p.PaymentId,
			"status":       p.TransactionStatus,
			"gross_amount": p.GrossAmount,
		},
		CreatedAt: time.Now().UTC(),
	}
	switch p.Type {
	case payment.EventPaymentSucceeded:
		n.Type, n.Title = "payment.succeeded", "Payment received"
		n.Message = fmt.Sprintf("We received your payment of %s.", p.GrossAmount)
	case payment.EventPaymentFailed:
		n.Type, n.Title = "payment.failed", "Payment failed"
		n.Message = "Your payment could not be completed. No charge was made."
	case payment.EventPaymentPending:
		n.Type, n.Title = "payment.pending", "Payment pending"
		n.Message = "Your payment is waiting for confirmation."
	default:
		n.Type, n.Title = "payment.updated", "Payment updated"
		n.Message = fmt.Sprintf("Your payment status is now %s.", p.TransactionStatus)
	}
	return n
}
