package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"customer-service-be/internal/bootstrap"
	"customer-service-be/internal/config"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/repository/memory"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/internal/service"
	"customer-service-be/pkg/database"
	"customer-service-be/pkg/events"
	"customer-service-be/pkg/llm/factory"
	"customer-service-be/pkg/payment"
	"customer-service-be/pkg/sentiment"
	"customer-service-be/pkg/store"
	"customer-service-be/pkg/workflow/executor"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func main() {
	var (
		userID    string
		sessionID string
		useDB     bool
	)

	root := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the customer service pipeline from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				sessionID = "cli-" + uuid.NewString()[:8]
			}
			return run(cmd.Context(), userID, sessionID, useDB)
		},
	}
	root.Flags().StringVarP(&userID, "user", "u", "customer123", "caller identity")
	root.Flags().StringVarP(&sessionID, "session", "s", "", "session id, generated when empty")
	root.Flags().BoolVar(&useDB, "db", false, "resolve orders from DB_CONNECTION_STRING")

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, userID, sessionID string, useDB bool) error {
	cfg := config.Load()
	// file only, the terminal belongs to the conversation
	log := logger.NewIsolatedLogger(cfg.App.LogFilePath)
	defer func() { _ = log.Sync() }()

	pipeline, err := buildPipeline(cfg, log, useDB)
	if err != nil {
		return err
	}

	fmt.Println(cyan("Customer service chat"), gray(fmt.Sprintf("(user %s, session %s)", userID, sessionID)))
	fmt.Println(gray("Type 'exit' to quit."))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(green("you> "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			return nil
		}

		st, err := pipeline.Run(ctx, userID, message, sessionID)
		if err != nil {
			fmt.Println(red("error: " + err.Error()))
			continue
		}

		fmt.Println(cyan("agent> ") + st.Response)
		if line := formatSentiment(st.Sentiment); line != "" {
			fmt.Println(gray("  sentiment: " + line))
		}
		for _, a := range st.ActionsTaken {
			fmt.Println(yellow("  action: " + a))
		}
	}
}

func buildPipeline(cfg *config.Config, log logger.ILogger, useDB bool) (*executor.Pipeline, error) {
	conversations, err := memory.NewConversationRepository()
	if err != nil {
		return nil, fmt.Errorf("init conversation store: %w", err)
	}
	embeddingService, err := bootstrap.NewEmbeddingService(cfg)
	if err != nil {
		return nil, err
	}
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.LLMBaseURL, bootstrap.LLMAPIKey(cfg))
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}

	var orders store.OrderService = unavailableOrders{}
	if useDB {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		orders = service.NewOrderService(unitofwork.NewRepositoryFactory(db), log)
	}

	return executor.Build(executor.Dependencies{
		Conversations: conversations,
		Checkpoints:   memory.NewCheckpointRepository(cfg.Workflow.CheckpointTTL),
		Embedder:      embeddingService,
		Scorer:        sentiment.NewHuggingFaceScorer(cfg.Keys.HuggingFace, cfg.Ai.SentimentBaseURL, cfg.Ai.SentimentModel),
		Orders:        orders,
		Payments:      payment.NewMidtransGateway(cfg.Payment.MidtransServerKey, cfg.Payment.Production, cfg.Payment.FinishURL),
		LLM:           llmProvider,
		Publisher:     events.NopPublisher{},
		Logger:        log,
	}, bootstrap.PipelineConfig(cfg)), nil
}

func formatSentiment(scores map[string]float64) string {
	labels := make([]string, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%s=%.2f", label, scores[label]))
	}
	return strings.Join(parts, " ")
}

var errNoOrderStore = errors.New("order store not connected, rerun with --db")

// unavailableOrders makes every lookup fail so the reply says the data could not be fetched
type unavailableOrders struct{}

func (unavailableOrders) GetOrderDetails(ctx context.Context, orderNumber string) (*store.OrderLookupResult, error) {
	return nil, errNoOrderStore
}

func (unavailableOrders) GetCustomerOrders(ctx context.Context, identifier string, limit int) (*store.OrderHistoryResult, error) {
	return nil, errNoOrderStore
}

func (unavailableOrders) GetCustomerByIdentifier(ctx context.Context, identifier string) (*store.CustomerLookupResult, error) {
	return nil, errNoOrderStore
}
