package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"customer-service-be/internal/dto"
	"customer-service-be/internal/entity"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/repository/contract"
	"customer-service-be/pkg/embedding"
	"customer-service-be/pkg/sentiment"

	"github.com/google/uuid"
)

const (
	defaultSearchLimit       = 5
	defaultConversationLimit = 50
	defaultAnalyticsDays     = 7
	// minimum change of mean (positive - negative) between the two halves of a period
	trendThreshold = 0.05
)

var ErrConversationNotFound = errors.New("conversation not found")

type IConversationService interface {
	GetConversation(ctx context.Context, id uuid.UUID) (*dto.ConversationResponse, error)
	Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error)
	GetUserConversations(ctx context.Context, userId string, limit int) ([]dto.ConversationResponse, error)
	GetSentimentAnalytics(ctx context.Context, days int) (*dto.SentimentAnalyticsResponse, error)
}

type conversationService struct {
	conversations contract.ConversationRepository
	embedder      embedding.Embedder
	logger        logger.ILogger
	now           func() time.Time
}

func NewConversationService(conversations contract.ConversationRepository, embedder embedding.Embedder, log logger.ILogger) IConversationService {
	return &conversationService{
		conversations: conversations,
		embedder:      embedder,
		logger:        log,
		now:           time.Now,
	}
}

func (s *conversationService) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	vector, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed search query: %w", err)
	}

	scored, err := s.conversations.SearchSimilarWithScore(ctx, vector, limit, req.UserId, 0)
	if err != nil {
		s.logger.Error("ConversationService", "Semantic search failed", map[string]interface{}{
			"query": req.Query,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("search conversations: %w", err)
	}

	results := make([]dto.SearchResult, len(scored))
	for i, sc := range scored {
		results[i] = dto.SearchResult{
			ConversationResponse: toConversationResponse(sc.Conversation),
			Score:                sc.Similarity,
		}
	}
	return &dto.SearchResponse{Results: results, TotalCount: len(results)}, nil
}

func (s *conversationService) GetConversation(ctx context.Context, id uuid.UUID) (*dto.ConversationResponse, error) {
	c, err := s.conversations.FindById(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find conversation %s: %w", id, err)
	}
	if c == nil {
		return nil, ErrConversationNotFound
	}
	res := toConversationResponse(c)
	return &res, nil
}

func (s *conversationService) GetUserConversations(ctx context.Context, userId string, limit int) ([]dto.ConversationResponse, error) {
	if limit <= 0 {
		limit = defaultConversationLimit
	}
	conversations, err := s.conversations.FindByUserId(ctx, userId, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations for %s: %w", userId, err)
	}

	out := make([]dto.ConversationResponse, len(conversations))
	for i, c := range conversations {
		out[i] = toConversationResponse(c)
	}
	return out, nil
}

func (s *conversationService) GetSentimentAnalytics(ctx context.Context, days int) (*dto.SentimentAnalyticsResponse, error) {
	if days <= 0 {
		days = defaultAnalyticsDays
	}
	end := s.now().UTC()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	conversations, err := s.conversations.FindSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("load conversations since %s: %w", start.Format(time.RFC3339), err)
	}

	summary := SummarizeSentiment(conversations, start, end)
	summary.Days = days

	return &dto.SentimentAnalyticsResponse{
		Period:             fmt.Sprintf("%d days", days),
		AvgSentiment:       summary.AvgSentiment,
		TotalConversations: summary.TotalConversations,
		Trend:              summary.Trend,
	}, nil
}

// SummarizeSentiment averages stored scores per label and compares the two
// halves of [start, end]. Conversations whose scoring failed count toward the
// total but not toward the averages.
func SummarizeSentiment(conversations []*entity.Conversation, start, end time.Time) *entity.SentimentSummary {
	summary := &entity.SentimentSummary{
		TotalConversations: int64(len(conversations)),
		AvgSentiment:       map[string]float64{},
		Trend:              "stable",
	}

	sums := map[string]float64{}
	scored := 0
	mid := start.Add(end.Sub(start) / 2)
	var firstSum, secondSum float64
	var firstN, secondN int

	for _, c := range conversations {
		if len(c.Sentiment) == 0 || sentiment.IsFailed(c.Sentiment) {
			continue
		}
		scored++
		for label, v := range c.Sentiment {
			sums[label] += v
		}
		polarity := c.Sentiment["positive"] - c.Sentiment["negative"]
		if c.CreatedAt.Before(mid) {
			firstSum += polarity
			firstN++
		} else {
			secondSum += polarity
			secondN++
		}
	}

	if scored > 0 {
		for label, sum := range sums {
			summary.AvgSentiment[label] = math.Round(sum/float64(scored)*1000) / 1000
		}
	}

	if firstN > 0 && secondN > 0 {
		delta := secondSum/float64(secondN) - firstSum/float64(firstN)
		switch {
		case delta > trendThreshold:
			summary.Trend = "improving"
		case delta < -trendThreshold:
			summary.Trend = "declining"
		}
	}
	return summary
}

func toConversationResponse(c *entity.Conversation) dto.ConversationResponse {
	return dto.ConversationResponse{
		Id:        c.Id,
		UserId:    c.UserId,
		SessionId: c.SessionId,
		Message:   c.Message,
		Response:  c.Response,
		Sentiment: c.Sentiment,
		Timestamp: c.CreatedAt,
	}
}
