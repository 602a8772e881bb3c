package prompt

import (
	"strings"
	"testing"

	"customer-service-be/pkg/store"
	"customer-service-be/pkg/workflow/access"
	"customer-service-be/pkg/workflow/state"

	"github.com/stretchr/testify/assert"
)

func TestBuildIncludesMessageSentimentAndActions(t *testing.T) {
	st := state.New("alice", "where is order #12?", "")
	st.Sentiment = map[string]float64{"positive": 0.1, "negative": 0.7}
	st.AddAction("stored_interaction")
	st.AddAction("order_lookup: 12")

	out := NewBuilder(st).Build()

	assert.Contains(t, out, "where is order #12?")
	assert.Contains(t, out, "- order_lookup: 12")
	// labels sorted for stable prompts
	assert.Less(t, strings.Index(out, "negative: 0.700"), strings.Index(out, "positive: 0.100"))
}

func TestBuildRendersNotFound(t *testing.T) {
	st := state.New("alice", "order #99", "")
	st.OrderData = &store.OrderLookupResult{Success: false, OrderNumber: "99", Error: "Order #99 not found"}
	st.CustomerData = &store.CustomerLookupResult{Success: false, Error: "Customer alice@x.com not found"}

	out := NewBuilder(st).Build()
	assert.Contains(t, out, "NOT FOUND: Order #99 not found")
	assert.Contains(t, out, "NOT FOUND: Customer alice@x.com not found")
}

func TestBuildRendersOrder(t *testing.T) {
	eta := "2026-02-01"
	st := state.New("alice", "order #12", "")
	st.OrderData = &store.OrderLookupResult{Success: true, OrderNumber: "12", Order: &store.OrderDetails{
		OrderNumber: "12",
		Status:      "shipped",
		TotalAmount: 42.5,
		Items:       []store.OrderItem{{Name: "Mug", Quantity: 2, TotalPrice: 20}},
		Shipment:    &store.Shipment{Carrier: "UPS", TrackingNumber: "1Z", Status: "in_transit", EstimatedDelivery: &eta},
	}}

	out := NewBuilder(st).Build()
	assert.Contains(t, out, "Order #12")
	assert.Contains(t, out, "Status: shipped")
	assert.Contains(t, out, "tracking 1Z")
	assert.Contains(t, out, "Estimated delivery: 2026-02-01")
	assert.Contains(t, out, "- 2 x Mug")
}

func TestBuildRendersDenialWithoutData(t *testing.T) {
	st := state.New("customer123", "show order history for customer456", "")
	st.UnauthorizedAccessAttempt = &access.UnauthorizedAccessAttempt{
		RequestedIdentifier: "customer456",
		RequestedBy:         "customer123",
		Reason:              access.ReasonUnauthorizedRead,
	}

	out := NewBuilder(st).Build()
	assert.Contains(t, out, "<access_denied>")
	assert.Contains(t, out, "customer456")
	assert.NotContains(t, out, "<order_history>")
}

func TestBuildWithoutActions(t *testing.T) {
	out := NewBuilder(state.New("alice", "hello", "")).Build()
	assert.Contains(t, out, "<actions_taken>\nnone\n")
}
