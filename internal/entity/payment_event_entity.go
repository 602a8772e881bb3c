package entity

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEvent is a verified payment webhook notification kept for the dashboard
type PaymentEvent struct {
	Id          uuid.UUID
	EventId     string
	EventType   string
	PaymentId   string
	UserId      string
	Status      string
	GrossAmount string
	Payload     map[string]interface{}
	CreatedAt   time.Time
}
