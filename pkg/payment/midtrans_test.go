package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServerKey = "SB-Mid-server-test"

func notification(t *testing.T, status, signature string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"transaction_id":     "txn-1",
		"transaction_status": status,
		"order_id":           "order-1",
		"status_code":        "200",
		"gross_amount":       "1000.00",
		"signature_key":      signature,
		"custom_field1":      "alice@example.com",
	})
	require.NoError(t, err)
	return body
}

func TestVerifyWebhookSignature(t *testing.T) {
	g := NewMidtransGateway(testServerKey, false, "")
	valid := Signature("order-1", "200", "1000.00", testServerKey)

	t.Run("body signature", func(t *testing.T) {
		evt, err := g.VerifyWebhookSignature(notification(t, "settlement", valid), "")
		require.NoError(t, err)
		assert.Equal(t, EventPaymentSucceeded, evt.Type)
		assert.Equal(t, "order-1", evt.PaymentID)
		assert.Equal(t, "txn-1", evt.ID)
		assert.Equal(t, "alice@example.com", evt.UserID)
	})

	t.Run("header overrides body", func(t *testing.T) {
		_, err := g.VerifyWebhookSignature(notification(t, "settlement", "bogus"), valid)
		assert.NoError(t, err)
	})

	t.Run("tampered signature", func(t *testing.T) {
		_, err := g.VerifyWebhookSignature(notification(t, "settlement", valid[:len(valid)-1]+"0"), "")
		assert.True(t, errors.Is(err, ErrSignatureInvalid))
	})

	t.Run("missing signature", func(t *testing.T) {
		_, err := g.VerifyWebhookSignature(notification(t, "settlement", ""), "")
		assert.True(t, errors.Is(err, ErrSignatureInvalid))
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := g.VerifyWebhookSignature([]byte("{not json"), valid)
		assert.True(t, errors.Is(err, ErrInvalidPayload))
	})
}

func TestEventType(t *testing.T) {
	tests := map[string]string{
		"capture":    EventPaymentSucceeded,
		"settlement": EventPaymentSucceeded,
		"deny":       EventPaymentFailed,
		"expire":     EventPaymentFailed,
		"pending":    EventPaymentPending,
		"refund":     "payment_intent.refund",
	}
	for status, want := range tests {
		if got := EventType(status); got != want {
			t.Errorf("EventType(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	g := NewMidtransGateway(testServerKey, false, "http://localhost:5173/done")

	var captured *snap.Request
	g.createTxnFn = func(req *snap.Request) (*snap.Response, *midtrans.Error) {
		captured = req
		return &snap.Response{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/x"}, nil
	}

	intent, err := g.CreatePaymentIntent(context.Background(), 1000, "usd", map[string]string{
		MetaUserID:        "alice@example.com",
		MetaInvoiceNumber: "77",
		MetaSessionID:     "session_alice@example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, intent.ID)
	assert.Equal(t, "snap-token", intent.ClientSecret)
	assert.Equal(t, int64(1000), intent.Amount)
	assert.Equal(t, "usd", intent.Currency)

	require.NotNil(t, captured)
	assert.Equal(t, intent.ID, captured.TransactionDetails.OrderID)
	assert.Equal(t, "77", captured.CustomField2)
	assert.Equal(t, "alice@example.com", captured.CustomField1)

	g.createTxnFn = func(req *snap.Request) (*snap.Response, *midtrans.Error) {
		return nil, &midtrans.Error{Message: "unauthorized"}
	}
	_, err = g.CreatePaymentIntent(context.Background(), 1000, "usd", nil)
	assert.Error(t, err)
}

func TestUnconfiguredGateway(t *testing.T) {
	g := NewMidtransGateway("", false, "")
	assert.False(t, g.Configured())

	_, err := g.CreatePaymentIntent(context.Background(), 1000, "usd", nil)
	assert.Error(t, err)
}
