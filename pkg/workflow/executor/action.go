package executor

import (
	"context"
	"fmt"

	"customer-service-be/internal/pkg/logger"
	"customer-service-be/pkg/events"
	"customer-service-be/pkg/metrics"
	"customer-service-be/pkg/payment"
	"customer-service-be/pkg/store"
	"customer-service-be/pkg/workflow/access"
	"customer-service-be/pkg/workflow/intent"
	"customer-service-be/pkg/workflow/state"
)

// Action tags recorded by the Action stage
const (
	TagOrderNumberMissing     = "order_status_requested_but_no_order_number_found"
	TagInvoiceMissing         = "payment_requested_but_no_invoice_found"
	TagAgentHistoryNoTarget   = "agent_order_history_query_no_customer_identified"
	TagCustomerInfoNoIdentity = "customer_info_requested_without_identity"
	TagOrderLookupWithheld    = "order_lookup_withheld"
)

// ActionConfig holds the transactional defaults
type ActionConfig struct {
	PaymentAmount     int64 // minor units
	PaymentCurrency   string
	OrderHistoryLimit int
}

func DefaultActionConfig() ActionConfig {
	return ActionConfig{PaymentAmount: 1000, PaymentCurrency: "usd", OrderHistoryLimit: 10}
}

// ActionStage resolves intents into lookups and transactions
type ActionStage struct {
	extractor *intent.Extractor
	orders    store.OrderService
	payments  payment.Gateway
	publisher events.Publisher
	metrics   *metrics.Workflow
	config    ActionConfig
	logger    logger.ILogger
}

func NewActionStage(
	extractor *intent.Extractor,
	orders store.OrderService,
	payments payment.Gateway,
	publisher events.Publisher,
	m *metrics.Workflow,
	config ActionConfig,
	log logger.ILogger,
) *ActionStage {
	if extractor == nil {
		extractor = intent.NewExtractor()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	def := DefaultActionConfig()
	if config.PaymentAmount <= 0 {
		config.PaymentAmount = def.PaymentAmount
	}
	if config.PaymentCurrency == "" {
		config.PaymentCurrency = def.PaymentCurrency
	}
	if config.OrderHistoryLimit <= 0 {
		config.OrderHistoryLimit = def.OrderHistoryLimit
	}
	return &ActionStage{
		extractor: extractor,
		orders:    orders,
		payments:  payments,
		publisher: publisher,
		metrics:   m,
		config:    config,
		logger:    log,
	}
}

func (s *ActionStage) Name() string { return state.StageAction }

func (s *ActionStage) Run(ctx context.Context, st *state.InteractionState) *state.InteractionState {
	intents := s.extractor.Extract(st.Message)
	withheld := withheldOrderNumbers(intents, st.UserID)

	for _, in := range intents {
		switch in.Kind {
		case intent.KindOrderStatus:
			if withheld[in.Token] {
				st.AddActionf("%s: %s", TagOrderLookupWithheld, in.Token)
				s.logger.Warn("Action", "Order lookup withheld for denied identifier", map[string]interface{}{
					"order_number": in.Token,
					"user_id":      st.UserID,
				})
				continue
			}
			s.lookupOrder(ctx, st, in.Token)
		case intent.KindOrderHistory:
			s.lookupOrderHistory(ctx, st, in.Token)
		case intent.KindPayment:
			s.createPayment(ctx, st, in.Token)
		case intent.KindCustomerInfo:
			s.lookupCustomer(ctx, st)
		default:
			if in.Tag != "" {
				st.AddAction(in.Tag)
			}
		}
	}

	s.logger.Info("Action", "Actions resolved", map[string]interface{}{
		"user_id": st.UserID,
		"intents": len(intents),
	})
	return st
}

// withheldOrderNumbers returns the order numbers that are only the digit run of a
// customer identifier the caller may not read, e.g. 456 out of "history for customer456"
func withheldOrderNumbers(intents []intent.Intent, userID string) map[string]bool {
	history, ok := intent.Find(intents, intent.KindOrderHistory)
	if !ok || history.Token == "" {
		return nil
	}
	if access.Evaluate(history.Token, userID).Allowed() {
		return nil
	}
	digits := intent.CustomerDigits(history.Token)
	if digits == "" {
		return nil
	}
	return map[string]bool{digits: true}
}

func (s *ActionStage) lookupOrder(ctx context.Context, st *state.InteractionState, orderNumber string) {
	if orderNumber == "" {
		st.AddAction(TagOrderNumberMissing)
		return
	}

	res, err := s.orders.GetOrderDetails(ctx, orderNumber)
	if err != nil {
		s.logger.Error("Action", "Order lookup failed", map[string]interface{}{
			"order_number": orderNumber,
			"error":        err.Error(),
		})
		st.OrderLookupError = err.Error()
		st.AddError("order_lookup", err)
		return
	}

	st.OrderData = res
	st.AddActionf("order_lookup: %s", orderNumber)
}

func (s *ActionStage) lookupOrderHistory(ctx context.Context, st *state.InteractionState, identifier string) {
	if identifier == "" {
		if access.IsPrivileged(st.UserID) {
			st.AddAction(TagAgentHistoryNoTarget)
			return
		}
		// no target named: the caller's own history
		identifier = st.UserID
	} else {
		decision := access.Evaluate(identifier, st.UserID)
		s.metrics.ObserveAccess(decision.Kind)

		if !decision.Allowed() {
			st.UnauthorizedAccessAttempt = decision.Attempt
			st.AddActionf("unauthorized_access_attempt: %s", identifier)
			s.logger.Warn("Action", "Unauthorized order history request", map[string]interface{}{
				"requested_identifier": identifier,
				"requested_by":         decision.Attempt.RequestedBy,
			})

			evt := events.UnauthorizedAccess(identifier, decision.Attempt.RequestedBy, decision.Attempt.Reason, st.SessionID)
			if err := s.publisher.Publish(ctx, evt); err != nil {
				s.logger.Warn("Action", "Failed to publish access event", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return
		}
	}

	res, err := s.orders.GetCustomerOrders(ctx, identifier, s.config.OrderHistoryLimit)
	if err != nil {
		s.logger.Error("Action", "Order history lookup failed", map[string]interface{}{
			"identifier": identifier,
			"error":      err.Error(),
		})
		st.OrderHistoryError = err.Error()
		st.AddError("order_history", err)
		return
	}

	st.CustomerOrderHistory = res
	st.AddActionf("order_history_lookup: %s", identifier)
}

func (s *ActionStage) createPayment(ctx context.Context, st *state.InteractionState, invoiceNumber string) {
	if invoiceNumber == "" {
		st.AddAction(TagInvoiceMissing)
		return
	}

	pi, err := s.payments.CreatePaymentIntent(ctx, s.config.PaymentAmount, s.config.PaymentCurrency, map[string]string{
		payment.MetaUserID:        st.UserID,
		payment.MetaInvoiceNumber: invoiceNumber,
		payment.MetaSessionID:     st.SessionID,
	})
	if err == nil && (pi == nil || pi.ID == "") {
		err = fmt.Errorf("payment gateway returned no intent id")
	}
	if err != nil {
		s.logger.Error("Action", "Payment intent creation failed", map[string]interface{}{
			"invoice_number": invoiceNumber,
			"error":          err.Error(),
		})
		st.AddError("payment", err)
		return
	}

	st.PaymentIntent = pi
	st.AddActionf("payment_intent_created: %s", pi.ID)
	s.logger.Info("Action", "Payment intent created", map[string]interface{}{
		"payment_id":     pi.ID,
		"invoice_number": invoiceNumber,
	})
}

func (s *ActionStage) lookupCustomer(ctx context.Context, st *state.InteractionState) {
	if !intent.LooksLikeEmail(st.UserID) {
		st.AddAction(TagCustomerInfoNoIdentity)
		return
	}

	res, err := s.orders.GetCustomerByIdentifier(ctx, st.UserID)
	if err != nil {
		s.logger.Error("Action", "Customer lookup failed", map[string]interface{}{
			"identifier": st.UserID,
			"error":      err.Error(),
		})
		st.AddError("customer_lookup", err)
		return
	}

	st.CustomerData = res
	st.AddActionf("customer_lookup: %s", st.UserID)
}
