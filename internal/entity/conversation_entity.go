package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id        uuid.UUID
	UserId    string
	SessionId string
	Message   string
	Response  string
	Sentiment map[string]float64
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// SentimentSummary aggregates stored sentiment over a period
type SentimentSummary struct {
	Period             string
	Days               int
	TotalConversations int64
	AvgSentiment       map[string]float64
	Trend              string // "improving", "declining" or "stable"
}
