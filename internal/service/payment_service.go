package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"customer-service-be/internal/dto"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/pkg/metrics"
	"customer-service-be/pkg/payment"

	"github.com/gofiber/fiber/v2"
)

const defaultPaymentEventLimit = 20

type IPaymentService interface {
	// HandleWebhook verifies a provider notification and queues it for processing
	HandleWebhook(ctx context.Context, rawPayload []byte, signature string) (*dto.PaymentWebhookMessage, error)
	GetRecentEvents(ctx context.Context, limit int) ([]dto.PaymentEventResponse, error)
}

type paymentService struct {
	gateway    payment.Gateway
	publisher  IPublisherService
	uowFactory unitofwork.RepositoryFactory
	metrics    *metrics.Workflow
	logger     logger.ILogger
}

func NewPaymentService(
	gateway payment.Gateway,
	publisher IPublisherService,
	uowFactory unitofwork.RepositoryFactory,
	workflowMetrics *metrics.Workflow,
	log logger.ILogger,
) IPaymentService {
	return &paymentService{
		gateway:    gateway,
		publisher:  publisher,
		uowFactory: uowFactory,
		metrics:    workflowMetrics,
		logger:     log,
	}
}

func (s *paymentService) HandleWebhook(ctx context.Context, rawPayload []byte, signature string) (*dto.PaymentWebhookMessage, error) {
	if !s.gateway.Configured() {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "payment provider not configured")
	}

	event, err := s.gateway.VerifyWebhookSignature(rawPayload, signature)
	if err != nil {
		s.logger.Warn("PaymentService", "Webhook rejected", map[string]interface{}{
			"error": err.Error(),
		})
		switch {
		case errors.Is(err, payment.ErrSignatureInvalid):
			return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid signature")
		case errors.Is(err, payment.ErrInvalidPayload):
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		default:
			return nil, err
		}
	}

	msg := &dto.PaymentWebhookMessage{
		EventId:           event.ID,
		Type:              event.Type,
		PaymentId:         event.PaymentID,
		TransactionStatus: event.TransactionStatus,
		GrossAmount:       event.GrossAmount,
		UserId:            event.UserID,
		Data:              event.Data,
		ReceivedAt:        time.Now().UTC(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode webhook message: %w", err)
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		return nil, fmt.Errorf("queue webhook %s: %w", event.ID, err)
	}

	if s.metrics != nil {
		s.metrics.ObserveWebhook(event.Type)
	}
	s.logger.Info("PaymentService", "Webhook accepted", map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
		"payment_id": event.PaymentID,
	})

	return msg, nil
}

func (s *paymentService) GetRecentEvents(ctx context.Context, limit int) ([]dto.PaymentEventResponse, error) {
	if limit <= 0 {
		limit = defaultPaymentEventLimit
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	events, err := uow.PaymentEventRepository().FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	res := make([]dto.PaymentEventResponse, 0, len(events))
	for _, e := range events {
		res = append(res, dto.PaymentEventResponse{
			Id:          e.Id,
			EventId:     e.EventId,
			Type:        e.EventType,
			PaymentId:   e.PaymentId,
			UserId:      e.UserId,
			Status:      e.Status,
			GrossAmount: e.GrossAmount,
			CreatedAt:   e.CreatedAt,
		})
	}
	return res, nil
}
