package bootstrap

import (
	"context"
	"fmt"

	"customer-service-be/internal/config"
	"customer-service-be/internal/controller"
	"customer-service-be/internal/handler"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/repository/implementation"
	"customer-service-be/internal/repository/memory"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/internal/service"
	"customer-service-be/internal/websocket"
	"customer-service-be/pkg/embedding"
	"customer-service-be/pkg/embedding/jina"
	"customer-service-be/pkg/events"
	"customer-service-be/pkg/llm/factory"
	"customer-service-be/pkg/metrics"
	"customer-service-be/pkg/payment"
	"customer-service-be/pkg/sentiment"
	"customer-service-be/pkg/store"
	"customer-service-be/pkg/workflow/executor"
	wfcontext "customer-service-be/pkg/workflow/context"

	pktNats "customer-service-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	OrderController   controller.IOrderController
	PaymentController controller.IPaymentController
	AdminController   controller.IAdminController
	HealthController  controller.IHealthController

	// Background Services (Exposed for main.go to run)
	PaymentConsumer service.IPaymentConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	Pipeline *executor.Pipeline
	Logger   logger.ILogger

	closers []func()
}

// Close releases broker and cache connections
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Logger: sysLogger}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	workflowMetrics, err := metrics.NewWorkflow(registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var eventPublisher events.Publisher = events.NopPublisher{}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "NATS unavailable, domain events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	rdb := NewRedisClient(cfg.App.RedisURL, sysLogger)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 3. AI Providers
	embeddingService, err := NewEmbeddingService(cfg)
	if err != nil {
		return nil, err
	}
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.LLMBaseURL, LLMAPIKey(cfg))
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	sysLogger.Info("Bootstrap", "AI providers ready", map[string]interface{}{
		"embedding": cfg.Ai.EmbeddingProvider,
		"llm":       cfg.Ai.LLMProvider,
		"model":     cfg.Ai.LLMModel,
	})
	scorer := sentiment.NewHuggingFaceScorer(cfg.Keys.HuggingFace, cfg.Ai.SentimentBaseURL, cfg.Ai.SentimentModel)
	gateway := payment.NewMidtransGateway(cfg.Payment.MidtransServerKey, cfg.Payment.Production, cfg.Payment.FinishURL)

	// 4. Pipeline
	conversations := implementation.NewConversationRepository(db)
	orderService := service.NewOrderService(uowFactory, sysLogger)

	pipeline := executor.Build(executor.Dependencies{
		Conversations: conversations,
		Checkpoints:   NewCheckpointStore(cfg, rdb, sysLogger),
		Embedder:      embeddingService,
		Scorer:        scorer,
		Orders:        orderService,
		Payments:      gateway,
		LLM:           llmProvider,
		Publisher:     eventPublisher,
		Metrics:       workflowMetrics,
		Logger:        sysLogger,
	}, PipelineConfig(cfg))
	c.Pipeline = pipeline

	// 5. Notifications
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	c.WebSocketHub = wsHub

	// 6. Services
	publisherService := service.NewPublisherService(cfg.App.PaymentTopic, pubSub)
	c.PaymentConsumer = service.NewPaymentConsumerService(pubSub, cfg.App.PaymentTopic, uowFactory, eventPublisher, wsHub, sysLogger)

	chatService := service.NewChatService(pipeline, sysLogger)
	conversationService := service.NewConversationService(conversations, embeddingService, sysLogger)
	paymentService := service.NewPaymentService(gateway, publisherService, uowFactory, workflowMetrics, sysLogger)
	adminService := service.NewAdminService(sysLogger)

	var natsHealth service.ConnectionChecker
	if natsPub != nil {
		natsHealth = natsPub
	}
	healthService := service.NewHealthService(db, rdb, natsHealth, gateway, cfg.Ai.EmbeddingProvider)

	// 7. Controllers
	secret := cfg.App.JWTSecret
	c.ChatController = controller.NewChatController(chatService, conversationService, secret)
	c.OrderController = controller.NewOrderController(orderService, secret)
	c.PaymentController = controller.NewPaymentController(paymentService, secret)
	c.AdminController = controller.NewAdminController(adminService, secret)
	c.HealthController = controller.NewHealthController(healthService, registry, cfg.App.Version)
	c.NotificationHandler = handler.NewNotificationHandler(wsHub, secret, wsLogger)

	return c, nil
}

// NewRedisClient returns nil when Redis is not configured
func NewRedisClient(url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("Bootstrap", "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn("Bootstrap", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}
	return rdb
}

func NewEmbeddingService(cfg *config.Config) (*embedding.Service, error) {
	var provider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "jina":
		provider = jina.NewJinaProvider(cfg.Keys.Jina)
	case "gemini":
		provider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, cfg.Ai.EmbeddingDimension)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
	svc, err := embedding.NewService(provider, cfg.Ai.EmbeddingDimension, cfg.Ai.EmbeddingCacheSize)
	if err != nil {
		return nil, fmt.Errorf("init embedding service: %w", err)
	}
	return svc, nil
}

// NewCheckpointStore picks Redis when asked for and reachable, otherwise the process-local cache
func NewCheckpointStore(cfg *config.Config, rdb *redis.Client, log logger.ILogger) store.Checkpointer {
	if cfg.Workflow.CheckpointStore == "redis" {
		if rdb != nil {
			return implementation.NewRedisCheckpointRepository(rdb, cfg.Workflow.CheckpointTTL)
		}
		log.Warn("Bootstrap", "CHECKPOINT_STORE=redis but Redis is not configured, using memory", nil)
	}
	return memory.NewCheckpointRepository(cfg.Workflow.CheckpointTTL)
}

func PipelineConfig(cfg *config.Config) executor.Config {
	return executor.Config{
		Limits: wfcontext.Limits{
			Session: cfg.Workflow.SessionHistoryLimit,
			User:    cfg.Workflow.UserHistoryLimit,
			Similar: cfg.Workflow.SimilarLimit,
		},
		Action: executor.ActionConfig{
			PaymentAmount:     cfg.Workflow.PaymentAmount,
			PaymentCurrency:   cfg.Workflow.PaymentCurrency,
			OrderHistoryLimit: cfg.Workflow.OrderHistoryLimit,
		},
	}
}

func LLMAPIKey(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "huggingface" {
		return cfg.Keys.HuggingFace
	}
	return cfg.Keys.OpenAI
}
