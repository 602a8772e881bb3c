package executor

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"customer-service-be/internal/pkg/logger"
	"customer-service-be/pkg/events"
	"customer-service-be/pkg/llm"
	"customer-service-be/pkg/payment"
	"customer-service-be/pkg/store"
)

type memConversations struct {
	mu        sync.Mutex
	turns     []store.Turn
	storeErr  error
	updateErr error
	fetchErr  error
	failFirst bool // only the first Store call fails
}

func (m *memConversations) Store(ctx context.Context, turn store.Turn, embedding []float32) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		err := m.storeErr
		if m.failFirst {
			m.storeErr = nil
		}
		return "", err
	}
	turn.ID = fmt.Sprintf("rec-%d", len(m.turns)+1)
	m.turns = append(m.turns, turn)
	return turn.ID, nil
}

func (m *memConversations) UpdateResponse(ctx context.Context, id, response string, sentiment map[string]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	for i := range m.turns {
		if m.turns[i].ID == id {
			m.turns[i].Response = response
			m.turns[i].Sentiment = sentiment
			return nil
		}
	}
	return fmt.Errorf("record %s not found", id)
}

func (m *memConversations) FetchBySession(ctx context.Context, sessionID string, limit int) ([]store.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []store.Turn
	for _, t := range m.turns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *memConversations) FetchByUser(ctx context.Context, userID string, limit int) ([]store.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []store.Turn
	for i := len(m.turns) - 1; i >= 0 && len(out) < limit; i-- {
		if m.turns[i].UserID == userID {
			out = append(out, m.turns[i])
		}
	}
	return out, nil
}

func (m *memConversations) FetchSimilar(ctx context.Context, embedding []float32, limit int, userID string) ([]store.ScoredTurn, error) {
	return nil, nil
}

func (m *memConversations) all() []store.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.Turn{}, m.turns...)
}

type memCheckpoints struct {
	mu      sync.Mutex
	latest  map[string]*store.Checkpoint
	history []store.Checkpoint
	putErr  error
	getErr  error
}

func newMemCheckpoints() *memCheckpoints {
	return &memCheckpoints{latest: map[string]*store.Checkpoint{}}
}

func (m *memCheckpoints) Get(ctx context.Context, threadID string) (*store.Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	cp, ok := m.latest[threadID]
	if !ok {
		return nil, store.ErrCheckpointNotFound
	}
	return cp, nil
}

func (m *memCheckpoints) Put(ctx context.Context, cp *store.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.latest[cp.ThreadID] = cp
	m.history = append(m.history, *cp)
	return nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return make([]float32, 4), f.err
	}
	return []float32{0.5, 0.5, 0.5, 0.5}, nil
}

func (f *fakeEmbedder) Dimension() int { return 4 }

type fakeScorer struct {
	err   error
	panic bool
}

func (f *fakeScorer) Score(ctx context.Context, text string) (map[string]float64, error) {
	if f.panic {
		panic("scorer exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return map[string]float64{"negative": 0.1, "neutral": 0.3, "positive": 0.6}, nil
}

type historyCall struct {
	identifier string
	limit      int
}

type fakeOrders struct {
	mu            sync.Mutex
	orderCalls    []string
	historyCalls  []historyCall
	customerCalls []string
	err           error
}

func (f *fakeOrders) GetOrderDetails(ctx context.Context, orderNumber string) (*store.OrderLookupResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderCalls = append(f.orderCalls, orderNumber)
	if f.err != nil {
		return nil, f.err
	}
	if orderNumber == "404" {
		return &store.OrderLookupResult{Success: false, OrderNumber: orderNumber, Error: "Order #404 not found"}, nil
	}
	return &store.OrderLookupResult{Success: true, OrderNumber: orderNumber, Order: &store.OrderDetails{
		OrderNumber: orderNumber,
		Status:      "shipped",
	}}, nil
}

func (f *fakeOrders) GetCustomerOrders(ctx context.Context, identifier string, limit int) (*store.OrderHistoryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls = append(f.historyCalls, historyCall{identifier, limit})
	if f.err != nil {
		return nil, f.err
	}
	return &store.OrderHistoryResult{Success: true, CustomerEmail: identifier, TotalOrders: 1,
		Orders: []store.OrderSummary{{OrderNumber: "1001", Status: "delivered"}}}, nil
}

func (f *fakeOrders) GetCustomerByIdentifier(ctx context.Context, identifier string) (*store.CustomerLookupResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customerCalls = append(f.customerCalls, identifier)
	if f.err != nil {
		return nil, f.err
	}
	return &store.CustomerLookupResult{Success: true, Identifier: identifier, Customer: &store.Customer{Email: identifier}}, nil
}

type paymentCall struct {
	amount   int64
	currency string
	metadata map[string]string
}

type fakePayments struct {
	calls []paymentCall
	err   error
}

func (f *fakePayments) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	f.calls = append(f.calls, paymentCall{amount, currency, metadata})
	if f.err != nil {
		return nil, f.err
	}
	return &payment.Intent{
		ID:           fmt.Sprintf("pi_test_%d", len(f.calls)),
		Amount:       amount,
		Currency:     currency,
		Status:       "requires_payment_method",
		ClientSecret: "secret",
		Metadata:     metadata,
	}, nil
}

func (f *fakePayments) VerifyWebhookSignature(raw []byte, sig string) (*payment.WebhookEvent, error) {
	return nil, payment.ErrSignatureInvalid
}

func (f *fakePayments) Configured() bool { return true }

type fakeLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	panic    bool
	requests [][]llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, history)
	if f.panic {
		panic("model crashed")
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func (f *fakeLLM) last() []llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	sort.Strings(out)
	return out
}

type logLine struct {
	module  string
	message string
}

// recordingLogger keeps warnings, everything else goes nowhere
type recordingLogger struct {
	*logger.ZapLogger
	mu    sync.Mutex
	warns []logLine
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{ZapLogger: logger.NewNopLogger()}
}

func (l *recordingLogger) Warn(module, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, logLine{module: module, message: message})
}

func (l *recordingLogger) warned(module, message string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.warns {
		if w.module == module && w.message == message {
			return true
		}
	}
	return false
}

type harness struct {
	conversations *memConversations
	checkpoints   *memCheckpoints
	embedder      *fakeEmbedder
	scorer        *fakeScorer
	orders        *fakeOrders
	payments      *fakePayments
	llm           *fakeLLM
	publisher     *recordingPublisher
	log           *recordingLogger
}

func newHarness() *harness {
	return &harness{
		conversations: &memConversations{},
		checkpoints:   newMemCheckpoints(),
		embedder:      &fakeEmbedder{},
		scorer:        &fakeScorer{},
		orders:        &fakeOrders{},
		payments:      &fakePayments{},
		llm:           &fakeLLM{reply: "Happy to help."},
		publisher:     &recordingPublisher{},
		log:           newRecordingLogger(),
	}
}

func (h *harness) pipeline() *Pipeline {
	return Build(Dependencies{
		Conversations: h.conversations,
		Checkpoints:   h.checkpoints,
		Embedder:      h.embedder,
		Scorer:        h.scorer,
		Orders:        h.orders,
		Payments:      h.payments,
		LLM:           h.llm,
		Publisher:     h.publisher,
		Logger:        h.log,
	}, Config{Action: DefaultActionConfig()})
}
