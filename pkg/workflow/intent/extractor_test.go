package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(intents []Intent) []Kind {
	out := make([]Kind, 0, len(intents))
	for _, in := range intents {
		out = append(out, in.Kind)
	}
	return out
}

func TestExtractOrderStatus(t *testing.T) {
	intents := Extract("What's the status of order #4521?")

	got, ok := Find(intents, KindOrderStatus)
	require.True(t, ok)
	assert.Equal(t, "4521", got.Token)

	_, ok = Find(intents, KindOrderHistory)
	assert.False(t, ok)
}

func TestExtractRefundAndCancellation(t *testing.T) {
	intents := Extract("I need a refund and want to cancel my subscription")

	refund, ok := Find(intents, KindRefund)
	require.True(t, ok)
	assert.Equal(t, TagRefundRequested, refund.Tag)
	assert.Empty(t, refund.Token)

	cancel, ok := Find(intents, KindCancellation)
	require.True(t, ok)
	assert.Equal(t, TagCancellationRequested, cancel.Tag)
}

func TestCancellationNeedsBothWords(t *testing.T) {
	_, ok := Find(Extract("please cancel it"), KindCancellation)
	assert.False(t, ok)
	_, ok = Find(Extract("my subscription renews soon"), KindCancellation)
	assert.False(t, ok)
}

func TestExtractPayment(t *testing.T) {
	tests := []struct {
		message   string
		wantToken string
	}{
		{"please charge invoice #77", "77"},
		{"please charge my invoice", ""},
		{"I want to pay bill 12 and 13", "12"},
	}
	for _, tt := range tests {
		got, ok := Find(Extract(tt.message), KindPayment)
		require.True(t, ok, tt.message)
		assert.Equal(t, tt.wantToken, got.Token, tt.message)
	}
}

func TestHistoryIdentifier(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"show order history for customer456", "customer456"},
		{"show orders of customer 789", "customer789"},
		{"list past orders for bob@example.com please", "bob@example.com"},
		{"order history user id: abc-123", "abc-123"},
		{"show my order history", ""},
		// customer<digits> outranks an email
		{"history for customer1 or for a@b.co", "customer1"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got, ok := Find(Extract(tt.message), KindOrderHistory)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Token)
		})
	}
}

func TestCategoriesAreIndependent(t *testing.T) {
	intents := Extract("Show my past orders and my account profile")
	assert.Equal(t, []Kind{KindOrderStatus, KindOrderHistory, KindCustomerInfo}, kinds(intents))
}

func TestUnrecognisedMessage(t *testing.T) {
	assert.Empty(t, Extract("hello there"))
}

func TestExtractIsDeterministic(t *testing.T) {
	msg := "Charge invoice #5 and check order #9 for customer12"
	assert.Equal(t, Extract(msg), Extract(msg))
}

func TestCustomRuleTable(t *testing.T) {
	e := NewExtractor(Rule{Kind: "greeting", Match: containsAny("hello"), Tag: "greeted"})
	intents := e.Extract("HELLO")
	require.Len(t, intents, 1)
	assert.Equal(t, "greeted", intents[0].Tag)
}

func TestLooksLikeEmail(t *testing.T) {
	assert.True(t, LooksLikeEmail("alice@example.com"))
	assert.False(t, LooksLikeEmail("customer123"))
	assert.False(t, LooksLikeEmail("alice@localhost"))
}

func TestCustomerDigits(t *testing.T) {
	assert.Equal(t, "456", CustomerDigits("customer456"))
	assert.Equal(t, "456", CustomerDigits("Customer456"))
	assert.Equal(t, "", CustomerDigits("bob@example.com"))
	assert.Equal(t, "", CustomerDigits(""))
}
