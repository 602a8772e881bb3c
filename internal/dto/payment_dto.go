package dto

import (
	"time"

	"github.com/google/uuid"
)

type PaymentEventResponse struct {
	Id          uuid.UUID `json:"id"`
	EventId     string    `json:"event_id"`
	Type        string    `json:"type"`
	PaymentId   string    `json:"payment_id"`
	UserId      string    `json:"user_id,omitempty"`
	Status      string    `json:"status"`
	GrossAmount string    `json:"gross_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaymentWebhookMessage is queued between the webhook endpoint and the event consumer
type PaymentWebhookMessage struct {
	EventId           string                 `json:"event_id"`
	Type              string                 `json:"type"`
	PaymentId         string                 `json:"payment_id"`
	TransactionStatus string                 `json:"transaction_status"`
	GrossAmount       string                 `json:"gross_amount"`
	UserId            string                 `json:"user_id,omitempty"`
	Data              map[string]interface{} `json:"data"`
	ReceivedAt        time.Time              `json:"received_at"`
}
