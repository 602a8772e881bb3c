package executor

import (
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/pkg/embedding"
	"customer-service-be/pkg/events"
	"customer-service-be/pkg/llm"
	"customer-service-be/pkg/metrics"
	"customer-service-be/pkg/payment"
	"customer-service-be/pkg/sentiment"
	"customer-service-be/pkg/store"
	wfcontext "customer-service-be/pkg/workflow/context"
	"customer-service-be/pkg/workflow/intent"
)

// Dependencies are the collaborators a pipeline is built from
type Dependencies struct {
	Conversations store.ConversationStore
	Checkpoints   store.Checkpointer
	Embedder      embedding.Embedder
	Scorer        sentiment.Scorer
	Orders        store.OrderService
	Payments      payment.Gateway
	LLM           llm.LLMProvider
	Publisher     events.Publisher  // optional
	Metrics       *metrics.Workflow // optional
	Logger        logger.ILogger
}

type Config struct {
	Limits wfcontext.Limits
	Action ActionConfig
}

// Build wires the five stages with the default intent table
func Build(deps Dependencies, cfg Config) *Pipeline {
	assembler := wfcontext.NewAssembler(deps.Conversations, cfg.Limits, deps.Logger)

	return NewPipeline(
		NewIngestStage(deps.Conversations, deps.Embedder, assembler, deps.Logger),
		NewSentimentStage(deps.Scorer, deps.Logger),
		NewActionStage(intent.NewExtractor(), deps.Orders, deps.Payments, deps.Publisher, deps.Metrics, cfg.Action, deps.Logger),
		NewPolicyStage(deps.LLM, deps.Logger),
		NewMemoryStage(deps.Conversations, deps.Embedder, deps.Publisher, deps.Logger),
		deps.Checkpoints,
		deps.Metrics,
		deps.Logger,
	)
}
