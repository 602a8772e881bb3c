package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/mapper"
	"customer-service-be/internal/model"
	"customer-service-be/internal/repository/contract"
	"customer-service-be/internal/repository/specification"
	"customer-service-be/pkg/store"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ConversationRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	var models []*model.Conversation
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ConversationRepositoryImpl) Store(ctx context.Context, turn store.Turn, embedding []float32) (string, error) {
	if isZeroVector(embedding) {
		// zero vectors have no cosine distance, keep the row out of similarity search
		embedding = nil
	}
	m := r.mapper.ToModel(r.mapper.FromTurn(turn, embedding))
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return "", fmt.Errorf("store conversation: %w", err)
	}
	return m.Id.String(), nil
}

func (r *ConversationRepositoryImpl) UpdateResponse(ctx context.Context, id string, response string, sentiment map[string]float64) error {
	convID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid conversation id %q: %w", id, err)
	}

	result := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", convID).
		Updates(map[string]interface{}{
			"response":  response,
			"sentiment": mapper.EncodeSentiment(sentiment),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("conversation %s not found", id)
	}
	return nil
}

func (r *ConversationRepositoryImpl) FetchBySession(ctx context.Context, sessionID string, limit int) ([]store.Turn, error) {
	// newest N first, flipped to chronological order below
	conversations, err := r.findAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}
	turns := r.mapper.ToTurns(conversations)
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (r *ConversationRepositoryImpl) FetchByUser(ctx context.Context, userID string, limit int) ([]store.Turn, error) {
	conversations, err := r.FindByUserId(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return r.mapper.ToTurns(conversations), nil
}

func (r *ConversationRepositoryImpl) FetchSimilar(ctx context.Context, embedding []float32, limit int, userID string) ([]store.ScoredTurn, error) {
	if isZeroVector(embedding) {
		return nil, nil
	}
	scored, err := r.SearchSimilarWithScore(ctx, embedding, limit, userID, 0)
	if err != nil {
		return nil, err
	}
	turns := make([]store.ScoredTurn, len(scored))
	for i, s := range scored {
		turns[i] = store.ScoredTurn{Turn: r.mapper.ToTurn(s.Conversation), Score: s.Similarity}
	}
	return turns, nil
}

func (r *ConversationRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	var m model.Conversation
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) FindByUserId(ctx context.Context, userId string, limit int) ([]*entity.Conversation, error) {
	return r.findAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
}

func (r *ConversationRepositoryImpl) FindSince(ctx context.Context, since time.Time) ([]*entity.Conversation, error) {
	return r.findAll(ctx,
		specification.CreatedSince{Since: since},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
}

// SearchSimilarWithScore returns conversations with cosine similarity >= threshold
func (r *ConversationRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId string, threshold float64) ([]*contract.ScoredConversation, error) {
	if limit <= 0 {
		limit = 5
	}

	// pgvector <=> is cosine distance, similarity = 1 - distance
	type result struct {
		model.Conversation
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("conversations").
		Select("conversations.*, 1 - (embedding <=> ?) as similarity", queryVector)
	query = applySpecifications(query, specification.HasEmbedding{})
	if userId != "" {
		query = applySpecifications(query, specification.ByUserID{UserID: userId})
	}

	err := query.
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredConversation, len(results))
	for i := range results {
		scored[i] = &contract.ScoredConversation{
			Conversation: r.mapper.ToEntity(&results[i].Conversation),
			Similarity:   results[i].Similarity,
		}
	}
	return scored, nil
}

func isZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
