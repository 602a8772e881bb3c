package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatRequest struct {
	User      string `json:"user" validate:"required,max=255"`
	Message   string `json:"message" validate:"required,max=4000"`
	SessionId string `json:"session_id,omitempty" validate:"max=255"`
}

type ChatResponse struct {
	Response     string             `json:"response"`
	Sentiment    map[string]float64 `json:"sentiment"`
	ActionsTaken []string           `json:"actions_taken"`
	SessionId    string             `json:"session_id"`
}

type ConversationResponse struct {
	Id        uuid.UUID          `json:"id"`
	UserId    string             `json:"user_id"`
	SessionId string             `json:"session_id"`
	Message   string             `json:"message"`
	Response  string             `json:"response"`
	Sentiment map[string]float64 `json:"sentiment"`
	Timestamp time.Time          `json:"timestamp"`
}

type SearchRequest struct {
	Query  string `json:"query" validate:"required,max=1000"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=50"`
	UserId string `json:"user_id,omitempty"`
}

type SearchResult struct {
	ConversationResponse
	Score float64 `json:"score"`
}

type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	TotalCount int            `json:"total_count"`
}

type SentimentAnalyticsResponse struct {
	Period             string             `json:"period"`
	AvgSentiment       map[string]float64 `json:"avg_sentiment"`
	TotalConversations int64              `json:"total_conversations"`
	Trend              string             `json:"trend"`
}
