package intent

import (
	"regexp"
	"strings"
)

// Kind identifies an intent category
type Kind string

const (
	KindOrderStatus  Kind = "order_status"
	KindOrderHistory Kind = "order_history"
	KindPayment      Kind = "payment"
	KindCustomerInfo Kind = "customer_info"
	KindCancellation Kind = "subscription_cancellation"
	KindRefund       Kind = "refund"
)

// Static tags for intents that need no lookup
const (
	TagCancellationRequested = "subscription_cancellation_requested"
	TagRefundRequested       = "refund_requested"
)

var (
	numberPattern = regexp.MustCompile(`#?(\d+)`)
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	// tried in order, first match wins
	customerTokenPattern  = regexp.MustCompile(`customer(\d+)`)
	customerSpacedPattern = regexp.MustCompile(`customer\s+(\d+)`)
	emailForPattern       = regexp.MustCompile(`for\s+([a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,})`)
	userIDPattern         = regexp.MustCompile(`user id:\s*([^\s,;?!]+)`)
)

// Rule is one row of the intent table
type Rule struct {
	Kind  Kind
	Match func(message string) bool
	// Extract returns the identifier carried by the message, "" when none. Nil for token-less intents.
	Extract func(message string) string
	// Tag is recorded as-is when the intent needs no external call
	Tag string
}

// Intent is a recognised category with its extracted token
type Intent struct {
	Kind  Kind   `json:"kind"`
	Token string `json:"token,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Extractor applies a rule table to lower-cased message text
type Extractor struct {
	rules []Rule
}

func NewExtractor(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// DefaultRules is the keyword table. Categories are independent: a message can
// trigger several, and "orders" matches both order status and order history.
func DefaultRules() []Rule {
	return []Rule{
		{
			Kind:    KindOrderStatus,
			Match:   containsAny("order", "status", "tracking", "shipment", "delivery", "shipped"),
			Extract: firstNumber,
		},
		{
			Kind:    KindOrderHistory,
			Match:   containsAny("history", "orders", "past orders", "previous orders", "order list"),
			Extract: HistoryIdentifier,
		},
		{
			Kind:    KindPayment,
			Match:   containsAny("pay", "payment", "invoice", "bill", "charge", "transaction"),
			Extract: firstNumber,
		},
		{
			Kind:  KindCustomerInfo,
			Match: containsAny("customer", "account", "profile", "information"),
		},
		{
			Kind: KindCancellation,
			Match: func(m string) bool {
				return strings.Contains(m, "cancel") && strings.Contains(m, "subscription")
			},
			Tag: TagCancellationRequested,
		},
		{
			Kind:  KindRefund,
			Match: containsAny("refund"),
			Tag:   TagRefundRequested,
		},
	}
}

// Extract returns every matching intent in table order
func (e *Extractor) Extract(message string) []Intent {
	normalized := strings.ToLower(message)

	var intents []Intent
	for _, r := range e.rules {
		if !r.Match(normalized) {
			continue
		}
		in := Intent{Kind: r.Kind, Tag: r.Tag}
		if r.Extract != nil {
			in.Token = r.Extract(normalized)
		}
		intents = append(intents, in)
	}
	return intents
}

// Extract runs the default rule table
func Extract(message string) []Intent {
	return NewExtractor().Extract(message)
}

// Find returns the intent of the given kind, if recognised
func Find(intents []Intent, kind Kind) (Intent, bool) {
	for _, in := range intents {
		if in.Kind == kind {
			return in, true
		}
	}
	return Intent{}, false
}

// HistoryIdentifier extracts the customer targeted by an order history request.
// customer<digits> and customer <digits> are both normalised to customer<digits>.
func HistoryIdentifier(message string) string {
	if m := customerTokenPattern.FindStringSubmatch(message); m != nil {
		return "customer" + m[1]
	}
	if m := customerSpacedPattern.FindStringSubmatch(message); m != nil {
		return "customer" + m[1]
	}
	if m := emailForPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	if m := userIDPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return ""
}

// CustomerDigits returns the digit run of a customer<digits> identifier, "" otherwise
func CustomerDigits(identifier string) string {
	if m := customerTokenPattern.FindStringSubmatch(strings.ToLower(identifier)); m != nil {
		return m[1]
	}
	return ""
}

// LooksLikeEmail is the check gating customer-info lookups on the caller id
func LooksLikeEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

func firstNumber(message string) string {
	if m := numberPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return ""
}

func containsAny(keywords ...string) func(string) bool {
	return func(message string) bool {
		for _, k := range keywords {
			if strings.Contains(message, k) {
				return true
			}
		}
		return false
	}
}
