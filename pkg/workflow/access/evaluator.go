package access

import (
	"regexp"
	"strings"
)

// Decision kinds for cross-customer order history requests
const (
	DecisionAllow = "ALLOW" // privileged agent, any customer
	DecisionSelf  = "SELF"  // provably the caller's own data
	DecisionDeny  = "DENY"
)

// Reasons recorded on a decision
const (
	ReasonAuthorizedAgent  = "authorized_agent"
	ReasonExactMatch       = "self_exact_match"
	ReasonCustomerIDMatch  = "self_customer_id_match"
	ReasonEmailMatch       = "self_email_match"
	ReasonUnauthorizedRead = "Attempted to access another customer's order history without authorization"
)

// privilegedRoles are matched as substrings of the lower-cased caller identity.
// Containment is intentionally loose: "badminton@x.com" counts as an admin.
var privilegedRoles = []string{
	"customer_service_agent",
	"support_agent",
	"admin",
	"cs_agent",
	"agent",
}

var customerTokenPattern = regexp.MustCompile(`^customer(\d+)$`)

// UnauthorizedAccessAttempt is recorded whenever a request is denied
type UnauthorizedAccessAttempt struct {
	RequestedIdentifier string `json:"requested_identifier"`
	RequestedBy         string `json:"requested_by"`
	Reason              string `json:"reason"`
}

// Decision is the outcome of Evaluate
type Decision struct {
	Kind    string                     `json:"kind"`
	Reason  string                     `json:"reason"`
	Attempt *UnauthorizedAccessAttempt `json:"attempt,omitempty"`
}

// Allowed reports whether the lookup may be served
func (d Decision) Allowed() bool {
	return d.Kind == DecisionAllow || d.Kind == DecisionSelf
}

// IsPrivileged reports whether the caller identity matches a privileged role substring
func IsPrivileged(requestingUser string) bool {
	user := strings.ToLower(requestingUser)
	for _, role := range privilegedRoles {
		if strings.Contains(user, role) {
			return true
		}
	}
	return false
}

// Evaluate decides whether requestingUser may read the order history of requestedIdentifier.
// Rules apply in order: privileged agent, then own-data checks, otherwise deny.
func Evaluate(requestedIdentifier, requestingUser string) Decision {
	user := strings.ToLower(requestingUser)

	if IsPrivileged(user) {
		return Decision{Kind: DecisionAllow, Reason: ReasonAuthorizedAgent}
	}

	if requestedIdentifier == user {
		return Decision{Kind: DecisionSelf, Reason: ReasonExactMatch}
	}

	if m := customerTokenPattern.FindStringSubmatch(requestedIdentifier); m != nil {
		if strings.Contains(user, m[1]) {
			return Decision{Kind: DecisionSelf, Reason: ReasonCustomerIDMatch}
		}
	}

	if isEmail(requestedIdentifier) && isEmail(user) &&
		strings.EqualFold(strings.TrimSpace(requestedIdentifier), strings.TrimSpace(user)) {
		return Decision{Kind: DecisionSelf, Reason: ReasonEmailMatch}
	}

	return Decision{
		Kind:   DecisionDeny,
		Reason: ReasonUnauthorizedRead,
		Attempt: &UnauthorizedAccessAttempt{
			RequestedIdentifier: requestedIdentifier,
			RequestedBy:         user,
			Reason:              ReasonUnauthorizedRead,
		},
	}
}

func isEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}
