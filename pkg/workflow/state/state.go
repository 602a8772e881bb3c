package state

import (
	"encoding/json"
	"fmt"
	"strings"

	"customer-service-be/pkg/payment"
	"customer-service-be/pkg/store"
	"customer-service-be/pkg/workflow/access"
)

// Transition is the decision taken after the Policy stage
type Transition int

const (
	NeedsFinalization Transition = iota // run Policy again
	Done                                // continue to Memory
)

func (t Transition) String() string {
	if t == Done {
		return "done"
	}
	return "needs_finalization"
}

// Stage names, also used as module names in logs and as "<stage>_error" tag prefixes
const (
	StageIngest    = "ingest"
	StageSentiment = "sentiment"
	StageAction    = "action"
	StagePolicy    = "policy"
	StageMemory    = "memory"
)

// InteractionState is the unit of work threaded through one pipeline run.
// Stages receive a clone and return a new value; nothing is shared between runs.
type InteractionState struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	ThreadID  string `json:"thread_id"`
	Message   string `json:"message"`

	// RecordID is the turn persisted by Ingest, empty when storing failed
	RecordID string `json:"record_id,omitempty"`

	Sentiment map[string]float64 `json:"sentiment"`

	ConversationHistory  []store.Turn       `json:"conversation_history"`  // oldest first
	UserConversations    []store.Turn       `json:"user_conversations"`    // newest first
	SimilarConversations []store.ScoredTurn `json:"similar_conversations"` // highest score first

	ActionsTaken []string `json:"actions_taken"`

	OrderData                 *store.OrderLookupResult           `json:"order_data,omitempty"`
	OrderLookupError          string                             `json:"order_lookup_error,omitempty"`
	CustomerOrderHistory      *store.OrderHistoryResult          `json:"customer_order_history,omitempty"`
	OrderHistoryError         string                             `json:"order_history_error,omitempty"`
	CustomerData              *store.CustomerLookupResult        `json:"customer_data,omitempty"`
	PaymentIntent             *payment.Intent                    `json:"payment_intent,omitempty"`
	UnauthorizedAccessAttempt *access.UnauthorizedAccessAttempt `json:"unauthorized_access_attempt,omitempty"`

	Response string `json:"response"`
	IsFinal  bool   `json:"is_final"`
}

// New creates the initial state for an inbound message
func New(userID, message, sessionID string) *InteractionState {
	if sessionID == "" {
		sessionID = DefaultSessionID(userID)
	}
	return &InteractionState{
		UserID:       userID,
		SessionID:    sessionID,
		Message:      message,
		Sentiment:    map[string]float64{},
		ActionsTaken: []string{},
	}
}

// DefaultSessionID derives the session used when the caller sends none
func DefaultSessionID(userID string) string {
	return "session_" + userID
}

// ThreadID is the checkpoint key: the caller's session when given, otherwise per user
func ThreadID(userID, requestedSessionID string) string {
	if requestedSessionID != "" {
		return requestedSessionID
	}
	return "thread_" + userID
}

// AddAction appends a tag to the audit log
func (s *InteractionState) AddAction(tag string) {
	s.ActionsTaken = append(s.ActionsTaken, tag)
}

// AddActionf appends a formatted tag to the audit log
func (s *InteractionState) AddActionf(format string, args ...interface{}) {
	s.AddAction(fmt.Sprintf(format, args...))
}

// AddError records a "<category>_error: <detail>" tag
func (s *InteractionState) AddError(category string, err error) {
	s.AddActionf("%s_error: %v", category, err)
}

// HasAction reports whether any tag starts with prefix
func (s *InteractionState) HasAction(prefix string) bool {
	for _, a := range s.ActionsTaken {
		if strings.HasPrefix(a, prefix) {
			return true
		}
	}
	return false
}

// Next decides the transition out of Policy
func (s *InteractionState) Next() Transition {
	if s.IsFinal {
		return Done
	}
	return NeedsFinalization
}

// Clone returns an owned copy. Lookup results are shared: they are never mutated once set.
func (s *InteractionState) Clone() *InteractionState {
	c := *s

	c.Sentiment = make(map[string]float64, len(s.Sentiment))
	for k, v := range s.Sentiment {
		c.Sentiment[k] = v
	}

	c.ActionsTaken = append([]string{}, s.ActionsTaken...)
	c.ConversationHistory = cloneTurns(s.ConversationHistory)
	c.UserConversations = cloneTurns(s.UserConversations)
	if s.SimilarConversations != nil {
		c.SimilarConversations = append([]store.ScoredTurn{}, s.SimilarConversations...)
	}

	if s.PaymentIntent != nil {
		pi := *s.PaymentIntent
		c.PaymentIntent = &pi
	}
	if s.UnauthorizedAccessAttempt != nil {
		ua := *s.UnauthorizedAccessAttempt
		c.UnauthorizedAccessAttempt = &ua
	}

	return &c
}

func cloneTurns(turns []store.Turn) []store.Turn {
	if turns == nil {
		return nil
	}
	return append([]store.Turn{}, turns...)
}

// Marshal encodes the state for a checkpoint
func (s *InteractionState) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal decodes a checkpointed state
func Unmarshal(data []byte) (*InteractionState, error) {
	var s InteractionState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Sentiment == nil {
		s.Sentiment = map[string]float64{}
	}
	return &s, nil
}
