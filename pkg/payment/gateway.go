package payment

import (
	"context"
	"errors"
)

var (
	ErrSignatureInvalid = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
)

// Intent is a created payment awaiting completion by the customer
type Intent struct {
	ID           string            `json:"id"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	ClientSecret string            `json:"client_secret"`
	RedirectURL  string            `json:"redirect_url,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Event types emitted for verified webhook notifications
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventPaymentPending   = "payment_intent.pending"
)

// WebhookEvent is a verified provider notification
type WebhookEvent struct {
	ID                string                 `json:"id"`
	Type              string                 `json:"type"`
	PaymentID         string                 `json:"payment_id"`
	TransactionStatus string                 `json:"transaction_status"`
	GrossAmount       string                 `json:"gross_amount"`
	UserID            string                 `json:"user_id,omitempty"`
	Data              map[string]interface{} `json:"data"`
}

// Gateway is the payment provider contract used by the workflow and the webhook endpoint
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (*Intent, error)
	VerifyWebhookSignature(rawPayload []byte, signatureHeader string) (*WebhookEvent, error)
	Configured() bool
}
