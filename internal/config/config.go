package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Payment  PaymentConfig
	Workflow WorkflowConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
	AlertEmail         string // recipient of unauthorized access alerts
	PaymentTopic       string // in-process webhook queue topic
	Version            string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
	HuggingFace  string
	OpenAI       string
}

type AIConfig struct {
	EmbeddingProvider  string // "gemini", "jina" or "ollama"
	EmbeddingDimension int
	EmbeddingCacheSize int
	OllamaBaseURL      string
	OllamaModel        string
	LLMProvider        string // "ollama", "openai", "huggingface"
	LLMModel           string
	LLMBaseURL         string
	SentimentBaseURL   string
	SentimentModel     string
}

type PaymentConfig struct {
	MidtransServerKey string
	Production        bool
	FinishURL         string
}

type WorkflowConfig struct {
	SessionHistoryLimit int
	UserHistoryLimit    int
	SimilarLimit        int
	OrderHistoryLimit   int
	PaymentAmount       int64 // minor units
	PaymentCurrency     string
	CheckpointStore     string // "memory" or "redis"
	CheckpointTTL       time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.json"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			AlertEmail:         getEnv("SECURITY_ALERT_EMAIL", ""),
			PaymentTopic:       getEnv("PAYMENT_WEBHOOK_TOPIC", "payment_webhooks"),
			Version:            getEnv("APP_VERSION", "1.0.0"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Customer Service"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			EmbeddingCacheSize: getEnvAsInt("EMBEDDING_CACHE_SIZE", 2048),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:        getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:        getEnv("LLM_PROVIDER", "openai"),
			LLMModel:           getEnv("LLM_MODEL", "gpt-4"),
			LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
			SentimentBaseURL:   getEnv("SENTIMENT_BASE_URL", ""),
			SentimentModel:     getEnv("SENTIMENT_MODEL", "cardiffnlp/twitter-roberta-base-sentiment-latest"),
		},
		Payment: PaymentConfig{
			MidtransServerKey: getEnv("MIDTRANS_SERVER_KEY", ""),
			Production:        getEnvAsBool("MIDTRANS_IS_PRODUCTION", false),
			FinishURL:         getEnv("PAYMENT_FINISH_URL", "http://localhost:3000/payment/done"),
		},
		Workflow: WorkflowConfig{
			SessionHistoryLimit: getEnvAsInt("SESSION_HISTORY_LIMIT", 10),
			UserHistoryLimit:    getEnvAsInt("USER_HISTORY_LIMIT", 5),
			SimilarLimit:        getEnvAsInt("SIMILAR_CONVERSATIONS_LIMIT", 3),
			OrderHistoryLimit:   getEnvAsInt("ORDER_HISTORY_LIMIT", 10),
			PaymentAmount:       int64(getEnvAsInt("PAYMENT_AMOUNT", 1000)),
			PaymentCurrency:     getEnv("PAYMENT_CURRENCY", "usd"),
			CheckpointStore:     getEnv("CHECKPOINT_STORE", "memory"),
			CheckpointTTL:       getEnvAsDuration("CHECKPOINT_TTL", 24*time.Hour),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
