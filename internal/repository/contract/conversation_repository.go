package contract

import (
	"context"
	"time"

	"customer-service-be/internal/entity"
	"customer-service-be/pkg/store"

	"github.com/google/uuid"
)

// ScoredConversation wraps Conversation with its similarity score
type ScoredConversation struct {
	Conversation *entity.Conversation
	Similarity   float64 // 0.0 to 1.0 (1.0 = identical)
}

// ConversationRepository is the workflow conversation store plus the read
// paths used by the dashboard endpoints
type ConversationRepository interface {
	store.ConversationStore

	FindById(ctx context.Context, id uuid.UUID) (*entity.Conversation, error)
	// FindByUserId returns the newest conversations of a user first
	FindByUserId(ctx context.Context, userId string, limit int) ([]*entity.Conversation, error)
	FindSince(ctx context.Context, since time.Time) ([]*entity.Conversation, error)
	// SearchSimilarWithScore searches every user when userId is empty
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId string, threshold float64) ([]*ScoredConversation, error)
}
