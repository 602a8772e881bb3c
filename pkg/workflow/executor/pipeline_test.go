package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"customer-service-be/internal/pkg/logger"
	"customer-service-be/pkg/events"
	"customer-service-be/pkg/sentiment"
	"customer-service-be/pkg/store"
	"customer-service-be/pkg/workflow/access"
	"customer-service-be/pkg/workflow/intent"
	"customer-service-be/pkg/workflow/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countPrefix(tags []string, prefix string) int {
	n := 0
	for _, t := range tags {
		if strings.HasPrefix(t, prefix) {
			n++
		}
	}
	return n
}

func TestRunHappyPath(t *testing.T) {
	h := newHarness()

	st, err := h.pipeline().Run(context.Background(), "alice", "hello there", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"stored_interaction", "sentiment_analyzed", "response_generated", "memory_updated"}, st.ActionsTaken)
	assert.True(t, st.IsFinal)
	assert.Equal(t, "Happy to help.", st.Response)
	assert.Equal(t, "session_alice", st.SessionID)
	assert.Equal(t, "thread_alice", st.ThreadID)
	assert.InDelta(t, 0.6, st.Sentiment["positive"], 1e-9)

	turns := h.conversations.all()
	require.Len(t, turns, 1)
	assert.Equal(t, "Happy to help.", turns[0].Response)
	assert.Equal(t, st.RecordID, turns[0].ID)

	assert.Equal(t, []string{events.TypeTurnCompleted}, h.publisher.types())
}

func TestActionsNeverShrinkAcrossStages(t *testing.T) {
	h := newHarness()
	_, err := h.pipeline().Run(context.Background(), "alice", "please charge invoice #77", "")
	require.NoError(t, err)

	var stages []string
	prev := -1
	for _, cp := range h.checkpoints.history {
		s, err := state.Unmarshal(cp.State)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(s.ActionsTaken), prev, cp.Stage)
		prev = len(s.ActionsTaken)
		stages = append(stages, cp.Stage)
	}
	assert.Greater(t, prev, 0)
	assert.Equal(t, []string{state.StageIngest, state.StageSentiment, state.StageAction, state.StagePolicy, store.StageEnd}, stages)
}

func TestPaymentEndToEnd(t *testing.T) {
	h := newHarness()

	st, err := h.pipeline().Run(context.Background(), "alice", "please charge invoice #77", "s-1")
	require.NoError(t, err)

	assert.Equal(t, 1, countPrefix(st.ActionsTaken, "payment_intent_created: "))
	require.NotNil(t, st.PaymentIntent)
	assert.NotEmpty(t, st.PaymentIntent.ID)
	assert.Contains(t, st.Response, "Payment ID: "+st.PaymentIntent.ID)

	require.Len(t, h.payments.calls, 1)
	call := h.payments.calls[0]
	assert.Equal(t, int64(1000), call.amount)
	assert.Equal(t, "usd", call.currency)
	assert.Equal(t, "77", call.metadata["invoice_number"])
	assert.Equal(t, "alice", call.metadata["user_id"])
	assert.Equal(t, "s-1", call.metadata["session_id"])
}

func TestPaymentWithoutInvoiceNumber(t *testing.T) {
	h := newHarness()

	st, err := h.pipeline().Run(context.Background(), "alice", "please charge my invoice", "")
	require.NoError(t, err)

	assert.Contains(t, st.ActionsTaken, TagInvoiceMissing)
	assert.Nil(t, st.PaymentIntent)
	assert.Empty(t, h.payments.calls)
	assert.NotContains(t, st.Response, "Payment ID")
}

func TestPaymentGatewayFailure(t *testing.T) {
	h := newHarness()
	h.payments.err = errors.New("gateway timeout")

	st, err := h.pipeline().Run(context.Background(), "alice", "pay invoice 5", "")
	require.NoError(t, err)

	assert.Contains(t, st.ActionsTaken, "payment_error: gateway timeout")
	assert.Nil(t, st.PaymentIntent)
	assert.Equal(t, "Happy to help.", st.Response)
}

func TestUnauthorizedOrderHistory(t *testing.T) {
	h := newHarness()

	st, err := h.pipeline().Run(context.Background(), "customer123", "show order history for customer456", "")
	require.NoError(t, err)

	assert.Contains(t, st.ActionsTaken, "unauthorized_access_attempt: customer456")
	require.NotNil(t, st.UnauthorizedAccessAttempt)
	assert.Equal(t, "customer456", st.UnauthorizedAccessAttempt.RequestedIdentifier)
	assert.Equal(t, "customer123", st.UnauthorizedAccessAttempt.RequestedBy)
	assert.Nil(t, st.CustomerOrderHistory)
	assert.Empty(t, h.orders.historyCalls)

	assert.Contains(t, st.Response, "can't share the order history of customer456")
	assert.Contains(t, h.publisher.types(), events.TypeUnauthorizedAccess)

	// the reply generator is told about the denial, never given the data
	prompt := h.llm.last()
	assert.Contains(t, prompt[len(prompt)-1].Content, "<access_denied>")
}

func TestDeniedHistoryWithholdsOrderFromIdentifier(t *testing.T) {
	h := newHarness()

	st, err := h.pipeline().Run(context.Background(), "customer123", "show order history for customer456", "")
	require.NoError(t, err)

	// "order" also fires the order status rule, whose number comes from customer456
	assert.Empty(t, h.orders.orderCalls)
	assert.Nil(t, st.OrderData)
	assert.Contains(t, st.ActionsTaken, "order_lookup_withheld: 456")
	assert.Zero(t, countPrefix(st.ActionsTaken, "order_lookup: "))

	prompt := h.llm.last()
	last := prompt[len(prompt)-1].Content
	assert.NotContains(t, last, "<order_lookup>")
	assert.Contains(t, last, "<access_denied>")
}

func TestOwnHistoryKeepsOrderLookup(t *testing.T) {
	h := newHarness()

	st, err := h.pipeline().Run(context.Background(), "customer123", "order history for customer123", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"123"}, h.orders.orderCalls)
	assert.Zero(t, countPrefix(st.ActionsTaken, TagOrderLookupWithheld))
}

func TestDenialNoticeOnReplyFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
	}{
		{"reply error", func(h *harness) { h.llm.err = errors.New("model offline") }},
		{"reply panic", func(h *harness) { h.llm.panic = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			tt.setup(h)

			st, err := h.pipeline().Run(context.Background(), "customer123", "show order history for customer456", "")
			require.NoError(t, err)

			assert.True(t, st.IsFinal)
			assert.True(t, strings.HasPrefix(st.Response, ApologyResponse))
			assert.Contains(t, st.Response, "can't share the order history of customer456")
			assert.Equal(t, 1, countPrefix(st.ActionsTaken, "policy_error"))
			require.NotNil(t, st.UnauthorizedAccessAttempt)
		})
	}
}

func TestOrderHistoryAccessRules(t *testing.T) {
	tests := []struct {
		name         string
		user         string
		message      string
		wantLookup   string
		wantTag      string
		wantNoLookup bool
	}{
		{"agent any customer", "cs_agent_1", "show order history for customer456", "customer456", "order_history_lookup: customer456", false},
		{"self by token", "customer123", "order history for customer123", "customer123", "order_history_lookup: customer123", false},
		{"self by email", "a@x.com", "past orders for a@x.com", "a@x.com", "order_history_lookup: a@x.com", false},
		{"own history implicit", "customer123", "show my order history", "customer123", "order_history_lookup: customer123", false},
		{"agent without target", "support_agent_9", "show my order history", "", TagAgentHistoryNoTarget, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			st, err := h.pipeline().Run(context.Background(), tt.user, tt.message, "")
			require.NoError(t, err)

			assert.Contains(t, st.ActionsTaken, tt.wantTag)
			assert.Nil(t, st.UnauthorizedAccessAttempt)
			if tt.wantNoLookup {
				assert.Empty(t, h.orders.historyCalls)
				return
			}
			require.Len(t, h.orders.historyCalls, 1)
			assert.Equal(t, tt.wantLookup, h.orders.historyCalls[0].identifier)
			assert.Equal(t, 10, h.orders.historyCalls[0].limit)
			require.NotNil(t, st.CustomerOrderHistory)
		})
	}
}

func TestOrderStatusLookup(t *testing.T) {
	h := newHarness()

	st, err := h.pipeline().Run(context.Background(), "alice", "What's the status of order #4521?", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"4521"}, h.orders.orderCalls)
	assert.Contains(t, st.ActionsTaken, "order_lookup: 4521")
	require.NotNil(t, st.OrderData)
	assert.True(t, st.OrderData.Success)
}

func TestOrderNotFoundIsRenderedNotOmitted(t *testing.T) {
	h := newHarness()

	st, err := h.pipeline().Run(context.Background(), "alice", "where is order #404", "")
	require.NoError(t, err)

	assert.Contains(t, st.ActionsTaken, "order_lookup: 404")
	assert.Empty(t, st.OrderLookupError)
	prompt := h.llm.last()
	assert.Contains(t, prompt[len(prompt)-1].Content, "NOT FOUND: Order #404 not found")
}

func TestOrderServiceFault(t *testing.T) {
	h := newHarness()
	h.orders.err = errors.New("connection reset")

	st, err := h.pipeline().Run(context.Background(), "alice@x.com", "order #12 and my account", "")
	require.NoError(t, err)

	assert.Contains(t, st.ActionsTaken, "order_lookup_error: connection reset")
	assert.Contains(t, st.ActionsTaken, "customer_lookup_error: connection reset")
	assert.Equal(t, "connection reset", st.OrderLookupError)
	assert.Nil(t, st.OrderData)
	assert.True(t, st.IsFinal)
}

func TestCustomerInfoNeedsEmailIdentity(t *testing.T) {
	h := newHarness()

	st, err := h.pipeline().Run(context.Background(), "alice", "show my account information", "")
	require.NoError(t, err)
	assert.Contains(t, st.ActionsTaken, TagCustomerInfoNoIdentity)
	assert.Empty(t, h.orders.customerCalls)

	st, err = h.pipeline().Run(context.Background(), "alice@x.com", "show my account information", "")
	require.NoError(t, err)
	assert.Contains(t, st.ActionsTaken, "customer_lookup: alice@x.com")
	require.NotNil(t, st.CustomerData)
}

func TestRefundAndCancellation(t *testing.T) {
	h := newHarness()

	st, err := h.pipeline().Run(context.Background(), "alice", "I need a refund and want to cancel my subscription", "")
	require.NoError(t, err)

	assert.Contains(t, st.ActionsTaken, intent.TagRefundRequested)
	assert.Contains(t, st.ActionsTaken, intent.TagCancellationRequested)
	assert.Empty(t, h.payments.calls)
}

func TestUnrecognisedMessageFallsThrough(t *testing.T) {
	h := newHarness()

	st, err := h.pipeline().Run(context.Background(), "alice", "hello", "")
	require.NoError(t, err)
	assert.Equal(t, 0, countPrefix(st.ActionsTaken, "order"))
	assert.Equal(t, "Happy to help.", st.Response)
}

func TestCollaboratorFaultsDegrade(t *testing.T) {
	h := newHarness()
	h.embedder.err = errors.New("embedder down")
	h.conversations.storeErr = errors.New("db down")
	h.conversations.failFirst = true
	h.conversations.fetchErr = errors.New("db down")
	h.scorer.err = errors.New("model loading")
	h.llm.err = errors.New("rate limited")

	st, err := h.pipeline().Run(context.Background(), "alice", "hello", "")
	require.NoError(t, err)

	assert.Contains(t, st.ActionsTaken, "ingest_error: db down")
	assert.Contains(t, st.ActionsTaken, "sentiment_error: model loading")
	assert.Contains(t, st.ActionsTaken, "policy_error: rate limited")
	assert.Contains(t, st.ActionsTaken, "memory_updated")
	assert.True(t, sentiment.IsFailed(st.Sentiment))
	assert.Equal(t, ApologyResponse, st.Response)
	assert.True(t, st.IsFinal)
	assert.Empty(t, st.ConversationHistory)

	// memory stores the full exchange when ingest could not
	turns := h.conversations.all()
	require.Len(t, turns, 1)
	assert.Equal(t, ApologyResponse, turns[0].Response)
}

func TestMemoryRestoreLogsEmbeddingFailure(t *testing.T) {
	h := newHarness()
	h.embedder.err = errors.New("embedder down")
	h.conversations.storeErr = errors.New("db down")
	h.conversations.failFirst = true

	st, err := h.pipeline().Run(context.Background(), "alice", "hello", "")
	require.NoError(t, err)

	assert.Contains(t, st.ActionsTaken, "memory_updated")
	assert.True(t, h.log.warned("Ingest", "Embedding failed, storing zero vector"))
	assert.True(t, h.log.warned("Memory", "Embedding failed, storing zero vector"))
}

func TestMemoryFault(t *testing.T) {
	h := newHarness()
	h.conversations.updateErr = errors.New("write conflict")

	st, err := h.pipeline().Run(context.Background(), "alice", "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "memory_error: write conflict", st.ActionsTaken[len(st.ActionsTaken)-1])
	assert.Equal(t, "Happy to help.", st.Response)
}

func TestStagePanicsAreContained(t *testing.T) {
	h := newHarness()
	h.scorer.panic = true

	st, err := h.pipeline().Run(context.Background(), "alice", "hello", "")
	require.NoError(t, err)
	assert.Contains(t, st.ActionsTaken, "sentiment_error: panic: scorer exploded")
	assert.True(t, sentiment.IsFailed(st.Sentiment))
	assert.Equal(t, "Happy to help.", st.Response)
}

func TestPolicyPanicStillFinalizes(t *testing.T) {
	h := newHarness()
	h.llm.panic = true

	st, err := h.pipeline().Run(context.Background(), "alice", "please charge invoice #9", "")
	require.NoError(t, err)
	assert.Contains(t, st.ActionsTaken, "policy_error: panic: model crashed")
	assert.True(t, st.IsFinal)
	assert.True(t, strings.HasPrefix(st.Response, ApologyResponse))
	assert.Contains(t, st.Response, "Payment ID: pi_test_1")
	assert.Equal(t, "memory_updated", st.ActionsTaken[len(st.ActionsTaken)-1])
}

func TestCheckpointFailureAbortsRun(t *testing.T) {
	h := newHarness()
	h.checkpoints.putErr = errors.New("redis unavailable")

	st, err := h.pipeline().Run(context.Background(), "alice", "hello", "")
	assert.Error(t, err)
	assert.Nil(t, st)

	h = newHarness()
	h.checkpoints.getErr = errors.New("redis unavailable")
	_, err = h.pipeline().Run(context.Background(), "alice", "hello", "")
	assert.Error(t, err)
}

func TestCheckpointTurnsResumePerThread(t *testing.T) {
	h := newHarness()
	p := h.pipeline()

	for i := 0; i < 3; i++ {
		_, err := p.Run(context.Background(), "alice", "hello", "s-1")
		require.NoError(t, err)
	}
	_, err := p.Run(context.Background(), "alice", "hello", "")
	require.NoError(t, err)

	cp, err := h.checkpoints.Get(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, 3, cp.Turn)
	assert.Equal(t, store.StageEnd, cp.Stage)

	cp, err = h.checkpoints.Get(context.Background(), "thread_alice")
	require.NoError(t, err)
	assert.Equal(t, 1, cp.Turn)
}

func TestSessionHistoryFeedsNextTurn(t *testing.T) {
	h := newHarness()
	p := h.pipeline()

	_, err := p.Run(context.Background(), "alice", "my name is Alice", "s-1")
	require.NoError(t, err)
	st, err := p.Run(context.Background(), "alice", "what is my name?", "s-1")
	require.NoError(t, err)

	require.Len(t, st.ConversationHistory, 1)
	assert.Equal(t, "my name is Alice", st.ConversationHistory[0].Message)

	msgs := h.llm.last()
	require.GreaterOrEqual(t, len(msgs), 4)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "my name is Alice", msgs[1].Content)
	assert.Equal(t, "assistant", msgs[2].Role)
	// the current message appears once, in the final prompt only
	for _, m := range msgs[:len(msgs)-1] {
		assert.NotEqual(t, "what is my name?", m.Content)
	}
}

func TestReplayProducesDistinctRecordsSameDecisions(t *testing.T) {
	h := newHarness()
	p := h.pipeline()
	msg := "show order history for customer456"

	first, err := p.Run(context.Background(), "customer123", msg, "")
	require.NoError(t, err)
	second, err := p.Run(context.Background(), "customer123", msg, "")
	require.NoError(t, err)

	assert.NotEqual(t, first.RecordID, second.RecordID)
	assert.Len(t, h.conversations.all(), 2)

	assert.Equal(t, intent.Extract(msg), intent.Extract(msg))
	assert.Equal(t, access.Evaluate("customer456", "customer123"), access.Evaluate("customer456", "customer123"))
	assert.Equal(t, first.UnauthorizedAccessAttempt, second.UnauthorizedAccessAttempt)
}

type stubbornPolicy struct{ calls int }

func (s *stubbornPolicy) Name() string { return state.StagePolicy }

func (s *stubbornPolicy) Run(ctx context.Context, st *state.InteractionState) *state.InteractionState {
	s.calls++
	st.AddAction("policy_pass")
	return st
}

func TestPolicyLoopIsBounded(t *testing.T) {
	h := newHarness()
	policy := &stubbornPolicy{}
	nop := logger.NewNopLogger()

	p := NewPipeline(
		NewSentimentStage(h.scorer, nop),
		NewSentimentStage(h.scorer, nop),
		NewSentimentStage(h.scorer, nop),
		policy,
		NewMemoryStage(h.conversations, h.embedder, nil, nop),
		h.checkpoints, nil, nop,
	)

	st, err := p.Run(context.Background(), "alice", "hello", "")
	require.NoError(t, err)
	assert.Equal(t, defaultMaxPolicyPasses, policy.calls)
	assert.Equal(t, "memory_updated", st.ActionsTaken[len(st.ActionsTaken)-1])
}

func TestPolicySecondPassKeepsResponse(t *testing.T) {
	h := newHarness()
	stage := NewPolicyStage(h.llm, logger.NewNopLogger())

	st := state.New("alice", "hello", "")
	st.Response = "already answered"
	out := stage.Run(context.Background(), st)

	assert.Equal(t, "already answered", out.Response)
	assert.True(t, out.IsFinal)
	assert.Empty(t, h.llm.requests)
}
