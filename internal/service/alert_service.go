package service

import (
	"context"
	"fmt"

	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/pkg/mailer"
	"customer-service-be/pkg/events"
	pktNats "customer-service-be/pkg/nats"
	"customer-service-be/pkg/sentiment"
)

const (
	alertDurableName = "cs-alert-worker"
	// dominant negative score above which a completed turn is flagged for follow-up
	negativeFollowUpThreshold = 0.8
)

// EventSubscriber is satisfied by the NATS JetStream subscriber
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

// AlertService reacts to workflow events published on the bus
type AlertService struct {
	subscriber EventSubscriber
	mailer     mailer.IAlertMailer
	alertEmail string
	logger     logger.ILogger
}

func NewAlertService(sub EventSubscriber, m mailer.IAlertMailer, alertEmail string, log logger.ILogger) *AlertService {
	return &AlertService{
		subscriber: sub,
		mailer:     m,
		alertEmail: alertEmail,
		logger:     log,
	}
}

// Start subscribes to every workflow event with a durable consumer
func (s *AlertService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, "events.>", alertDurableName, s.HandleEvent); err != nil {
		return fmt.Errorf("subscribe to events: %w", err)
	}
	s.logger.Info("AlertService", "Listening to events.>", nil)
	return nil
}

// HandleEvent returns an error only when the event should be redelivered
func (s *AlertService) HandleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	switch event.EventType() {
	case events.TypeUnauthorizedAccess:
		return s.handleUnauthorizedAccess(event)

	case events.TypeTurnCompleted:
		scores := toScores(payload["sentiment"])
		if sentiment.Dominant(scores) == "negative" && scores["negative"] >= negativeFollowUpThreshold {
			s.logger.Warn("AlertService", "Strongly negative conversation", map[string]interface{}{
				"user_id":    payload["user_id"],
				"session_id": payload["session_id"],
				"record_id":  payload["record_id"],
				"negative":   scores["negative"],
			})
		}

	case events.TypePaymentWebhook:
		s.logger.Info("AlertService", "Payment event", map[string]interface{}{
			"event_id":   payload["event_id"],
			"event_type": payload["event_type"],
			"status":     payload["status"],
		})

	default:
		s.logger.Debug("AlertService", "Ignoring event", map[string]interface{}{"type": event.EventType()})
	}
	return nil
}

func (s *AlertService) handleUnauthorizedAccess(event events.Event) error {
	payload := event.Payload()
	alert := mailer.SecurityAlert{
		RequestedIdentifier: stringField(payload, "requested_identifier"),
		RequestedBy:         stringField(payload, "requested_by"),
		Reason:              stringField(payload, "reason"),
		SessionID:           stringField(payload, "session_id"),
		OccurredAt:          event.Timestamp(),
	}

	s.logger.Warn("AlertService", "Unauthorized access attempt", map[string]interface{}{
		"requested_identifier": alert.RequestedIdentifier,
		"requested_by":         alert.RequestedBy,
		"reason":               alert.Reason,
	})

	if s.mailer == nil || s.alertEmail == "" {
		return nil
	}
	if err := s.mailer.SendSecurityAlert(s.alertEmail, alert); err != nil {
		s.logger.Error("AlertService", "Failed to send security alert", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func stringField(payload map[string]interface{}, key string) string {
	v, _ := payload[key].(string)
	return v
}

// toScores accepts the sentiment map either typed or decoded from JSON
func toScores(v interface{}) map[string]float64 {
	switch m := v.(type) {
	case map[string]float64:
		return m
	case map[string]interface{}:
		out := make(map[string]float64, len(m))
		for k, raw := range m {
			if f, ok := raw.(float64); ok {
				out[k] = f
			}
		}
		return out
	}
	return nil
}
