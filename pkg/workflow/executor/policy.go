package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"customer-service-be/internal/pkg/logger"
	"customer-service-be/pkg/llm"
	wfcontext "customer-service-be/pkg/workflow/context"
	"customer-service-be/pkg/workflow/prompt"
	"customer-service-be/pkg/workflow/state"
)

const (
	ApologyResponse = "I apologize, but I encountered an error while processing your request. Please try again or contact support."

	paymentNotice = "\n\nI've initiated a payment process for you. Payment ID: %s"
	denialNotice  = "\n\nFor privacy reasons I can't share the order history of %s. Order information is only available to the account owner or an authorized support agent."
)

// PolicyStage composes the reply from the assembled context and the Action results
type PolicyStage struct {
	llm    llm.LLMProvider
	logger logger.ILogger
}

func NewPolicyStage(provider llm.LLMProvider, log logger.ILogger) *PolicyStage {
	return &PolicyStage{llm: provider, logger: log}
}

func (s *PolicyStage) Name() string { return state.StagePolicy }

func (s *PolicyStage) Run(ctx context.Context, st *state.InteractionState) *state.InteractionState {
	// a repeated pass only finalizes, the response is never rewritten
	if st.Response != "" {
		st.IsFinal = true
		return st
	}

	history := wfcontext.BuildMessages(wfcontext.Views{
		Session: st.ConversationHistory,
		User:    st.UserConversations,
		Similar: st.SimilarConversations,
	})
	messages := llm.WithSystem(prompt.System(), append(history, llm.Message{
		Role:    "user",
		Content: prompt.NewBuilder(st).Build(),
	}))

	reply, err := s.llm.Chat(ctx, messages, llm.WithMaxTokens(500), llm.WithTemperature(0.7))
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errors.New("reply generator returned an empty response")
	}
	if err != nil {
		s.logger.Error("Policy", "Reply generation failed", map[string]interface{}{
			"user_id": st.UserID,
			"error":   err.Error(),
		})
		st.Response = ApologyResponse + notices(st)
		st.IsFinal = true
		st.AddError(state.StagePolicy, err)
		return st
	}

	st.Response = reply + notices(st)
	st.IsFinal = true
	st.AddAction("response_generated")

	s.logger.Info("Policy", "Response generated", map[string]interface{}{
		"user_id":  st.UserID,
		"messages": len(messages),
	})
	return st
}

func (s *PolicyStage) Fallback(st *state.InteractionState) {
	if st.Response == "" {
		st.Response = ApologyResponse + notices(st)
	}
	st.IsFinal = true
}

// notices are appended verbatim so they do not depend on the model's wording
func notices(st *state.InteractionState) string {
	var b strings.Builder
	if st.PaymentIntent != nil && st.HasAction("payment_intent_created") {
		fmt.Fprintf(&b, paymentNotice, st.PaymentIntent.ID)
	}
	if st.UnauthorizedAccessAttempt != nil {
		fmt.Fprintf(&b, denialNotice, st.UnauthorizedAccessAttempt.RequestedIdentifier)
	}
	return b.String()
}
