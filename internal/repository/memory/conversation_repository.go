package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/mapper"
	"customer-service-be/internal/repository/contract"
	"customer-service-be/pkg/store"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

const conversationCollection = "conversations"

type conversationRecord struct {
	conversation entity.Conversation
	seq          int // insertion order, breaks timestamp ties
}

// ConversationRepository keeps conversations in process with a chromem-go
// collection for similarity search. Used by the local chat client and tests.
type ConversationRepository struct {
	mu         sync.RWMutex
	records    map[uuid.UUID]*conversationRecord
	seq        int
	collection *chromem.Collection
	mapper     *mapper.ConversationMapper
}

func NewConversationRepository() (*ConversationRepository, error) {
	db := chromem.NewDB()
	// embeddings are always supplied by the caller
	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("conversation embeddings must be precomputed")
	}
	collection, err := db.GetOrCreateCollection(conversationCollection, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &ConversationRepository{
		records:    make(map[uuid.UUID]*conversationRecord),
		collection: collection,
		mapper:     mapper.NewConversationMapper(),
	}, nil
}

var _ contract.ConversationRepository = (*ConversationRepository)(nil)

func (r *ConversationRepository) Store(ctx context.Context, turn store.Turn, embedding []float32) (string, error) {
	c := r.mapper.FromTurn(turn, nil)
	c.Id = uuid.New()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Sentiment == nil {
		c.Sentiment = map[string]float64{}
	}

	if !isZeroVector(embedding) {
		c.Embedding = append([]float32(nil), embedding...)
		err := r.collection.AddDocument(ctx, chromem.Document{
			ID:        c.Id.String(),
			Content:   c.Message,
			Embedding: c.Embedding,
			Metadata:  map[string]string{"user_id": c.UserId, "session_id": c.SessionId},
		})
		if err != nil {
			return "", fmt.Errorf("index conversation: %w", err)
		}
	}

	r.mu.Lock()
	r.seq++
	r.records[c.Id] = &conversationRecord{conversation: *c, seq: r.seq}
	r.mu.Unlock()

	return c.Id.String(), nil
}

func (r *ConversationRepository) UpdateResponse(ctx context.Context, id string, response string, sentiment map[string]float64) error {
	convID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid conversation id %q: %w", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[convID]
	if !ok {
		return fmt.Errorf("conversation %s not found", id)
	}
	now := time.Now().UTC()
	rec.conversation.Response = response
	rec.conversation.Sentiment = copySentiment(sentiment)
	rec.conversation.UpdatedAt = &now
	return nil
}

func (r *ConversationRepository) FetchBySession(ctx context.Context, sessionID string, limit int) ([]store.Turn, error) {
	recent := r.newestFirst(func(c *entity.Conversation) bool { return c.SessionId == sessionID }, limit)
	turns := r.mapper.ToTurns(recent)
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (r *ConversationRepository) FetchByUser(ctx context.Context, userID string, limit int) ([]store.Turn, error) {
	return r.mapper.ToTurns(r.newestFirst(func(c *entity.Conversation) bool { return c.UserId == userID }, limit)), nil
}

func (r *ConversationRepository) FetchSimilar(ctx context.Context, embedding []float32, limit int, userID string) ([]store.ScoredTurn, error) {
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

func (r *ConversationRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	c := rec.conversation
	c.Sentiment = copySentiment(c.Sentiment)
	return &c, nil
}

func (r *ConversationRepository) FindByUserId(ctx context.Context, userId string, limit int) ([]*entity.Conversation, error) {
	return r.newestFirst(func(c *entity.Conversation) bool { return c.UserId == userId }, limit), nil
}

func (r *ConversationRepository) FindSince(ctx context.Context, since time.Time) ([]*entity.Conversation, error) {
	out := r.newestFirst(func(c *entity.Conversation) bool { return !c.CreatedAt.Before(since) }, 0)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *ConversationRepository) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId string, threshold float64) ([]*contract.ScoredConversation, error) {
	if limit <= 0 {
		limit = 5
	}
	// chromem rejects nResults above the collection size
	if count := r.collection.Count(); limit > count {
		limit = count
	}
	if limit == 0 {
		return nil, nil
	}

	var where map[string]string
	if userId != "" {
		where = map[string]string{"user_id": userId}
	}
	results, err := r.collection.QueryEmbedding(ctx, embedding, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	scored := make([]*contract.ScoredConversation, 0, len(results))
	for _, res := range results {
		if float64(res.Similarity) < threshold {
			continue
		}
		id, err := uuid.Parse(res.ID)
		if err != nil {
			continue
		}
		rec, ok := r.records[id]
		if !ok {
			continue
		}
		c := rec.conversation
		c.Sentiment = copySentiment(c.Sentiment)
		scored = append(scored, &contract.ScoredConversation{Conversation: &c, Similarity: float64(res.Similarity)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Similarity > scored[j].Similarity })
	return scored, nil
}

// newestFirst returns copies of matching conversations, limit <= 0 means all
func (r *ConversationRepository) newestFirst(match func(*entity.Conversation) bool, limit int) []*entity.Conversation {
	r.mu.RLock()
	matched := make([]conversationRecord, 0)
	for _, rec := range r.records {
		if match(&rec.conversation) {
			cp := *rec
			cp.conversation.Sentiment = copySentiment(rec.conversation.Sentiment)
			matched = append(matched, cp)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		ci, cj := matched[i].conversation.CreatedAt, matched[j].conversation.CreatedAt
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return matched[i].seq > matched[j].seq
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*entity.Conversation, len(matched))
	for i := range matched {
		out[i] = &matched[i].conversation
	}
	return out
}

func copySentiment(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func isZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
