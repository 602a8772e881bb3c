package payment

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// Metadata keys carried through the provider's custom fields
const (
	MetaUserID        = "user_id"
	MetaInvoiceNumber = "invoice_number"
	MetaSessionID     = "session_id"
)

type MidtransGateway struct {
	serverKey   string
	env         midtrans.EnvironmentType
	finishURL   string
	createTxnFn func(req *snap.Request) (*snap.Response, *midtrans.Error)
}

var _ Gateway = &MidtransGateway{}

func NewMidtransGateway(serverKey string, production bool, finishURL string) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	var sClient snap.Client
	sClient.New(serverKey, env)

	return &MidtransGateway{
		serverKey:   serverKey,
		env:         env,
		finishURL:   finishURL,
		createTxnFn: sClient.CreateTransaction,
	}
}

func (g *MidtransGateway) Configured() bool {
	return g.serverKey != ""
}

// CreatePaymentIntent opens a Snap transaction. The Snap token is returned as the client secret.
func (g *MidtransGateway) CreatePaymentIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (*Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !g.Configured() {
		return nil, fmt.Errorf("midtrans server key not configured")
	}

	orderID := uuid.New().String()
	invoice := metadata[MetaInvoiceNumber]

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amountMinorUnits,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    "invoice-" + invoice,
				Price: amountMinorUnits,
				Qty:   1,
				Name:  fmt.Sprintf("Invoice #%s", invoice),
			},
		},
		CustomField1:    metadata[MetaUserID],
		CustomField2:    invoice,
		CustomField3:    metadata[MetaSessionID],
		EnabledPayments: snap.AllSnapPaymentType,
	}
	if g.finishURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: g.finishURL}
	}

	snapResp, midErr := g.createTxnFn(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	return &Intent{
		ID:           orderID,
		Amount:       amountMinorUnits,
		Currency:     currency,
		Status:       "requires_payment_method",
		ClientSecret: snapResp.Token,
		RedirectURL:  snapResp.RedirectURL,
		Metadata:     metadata,
	}, nil
}

type midtransNotification struct {
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	OrderID           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	SignatureKey      string `json:"signature_key"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	CustomField1      string `json:"custom_field1"`
}

// VerifyWebhookSignature checks SHA512(order_id + status_code + gross_amount + server_key).
// The signature comes from the header when present, otherwise from the body's signature_key.
func (g *MidtransGateway) VerifyWebhookSignature(rawPayload []byte, signatureHeader string) (*WebhookEvent, error) {
	if !g.Configured() {
		return nil, fmt.Errorf("midtrans server key not configured")
	}

	var n midtransNotification
	if err := json.Unmarshal(rawPayload, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if n.OrderID == "" {
		return nil, fmt.Errorf("%w: missing order_id", ErrInvalidPayload)
	}

	signature := signatureHeader
	if signature == "" {
		signature = n.SignatureKey
	}
	if signature == "" {
		return nil, ErrSignatureInvalid
	}

	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, g.serverKey)
	if subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) != 1 {
		return nil, ErrSignatureInvalid
	}

	var data map[string]interface{}
	if err := json.Unmarshal(rawPayload, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	eventID := n.TransactionID
	if eventID == "" {
		eventID = n.OrderID + ":" + n.TransactionStatus
	}

	return &WebhookEvent{
		ID:                eventID,
		Type:              EventType(n.TransactionStatus),
		PaymentID:         n.OrderID,
		TransactionStatus: n.TransactionStatus,
		GrossAmount:       n.GrossAmount,
		UserID:            n.CustomField1,
		Data:              data,
	}, nil
}

// Signature computes the Midtrans notification signature key
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// EventType maps a Midtrans transaction status onto a gateway event type
func EventType(transactionStatus string) string {
	switch transactionStatus {
	case "capture", "settlement":
		return EventPaymentSucceeded
	case "deny", "cancel", "expire", "failure":
		return EventPaymentFailed
	case "pending":
		return EventPaymentPending
	default:
		return "payment_intent." + transactionStatus
	}
}
