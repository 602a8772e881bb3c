package events

import "time"

// Event types, published under "events.<type>"
const (
	TypeUnauthorizedAccess = "access.unauthorized"
	TypeTurnCompleted      = "conversation.turn_completed"
	TypePaymentWebhook     = "payment.webhook"
)

// occurred_at travels in the payload so subscribers can restore it
const occurredAtKey = "occurred_at"

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	now := time.Now().UTC()
	data[occurredAtKey] = now.Format(time.RFC3339Nano)
	return BaseEvent{Type: eventType, Data: data, OccurredAt: now}
}

func UnauthorizedAccess(requestedIdentifier, requestedBy, reason, sessionID string) BaseEvent {
	return newEvent(TypeUnauthorizedAccess, map[string]interface{}{
		"requested_identifier": requestedIdentifier,
		"requested_by":         requestedBy,
		"reason":               reason,
		"session_id":           sessionID,
	})
}

func TurnCompleted(userID, sessionID, recordID string, sentiment map[string]float64, actions []string) BaseEvent {
	return newEvent(TypeTurnCompleted, map[string]interface{}{
		"user_id":       userID,
		"session_id":    sessionID,
		"record_id":     recordID,
		"sentiment":     sentiment,
		"actions_taken": actions,
	})
}

func PaymentWebhook(eventID, eventType, paymentID, userID, status string) BaseEvent {
	return newEvent(TypePaymentWebhook, map[string]interface{}{
		"event_id":   eventID,
		"event_type": eventType,
		"payment_id": paymentID,
		"user_id":    userID,
		"status":     status,
	})
}

// FromWire rebuilds an event received on subject "events.<type>"
func FromWire(subject string, payload map[string]interface{}) BaseEvent {
	eventType := subject
	if len(subject) > len("events.") && subject[:len("events.")] == "events." {
		eventType = subject[len("events."):]
	}

	occurredAt := time.Now().UTC()
	if raw, ok := payload[occurredAtKey].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			occurredAt = t
		}
	}
	return BaseEvent{Type: eventType, Data: payload, OccurredAt: occurredAt}
}
