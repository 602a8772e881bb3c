package mapper

import (
	"encoding/json"
	"time"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/model"
	"customer-service-be/pkg/store"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	var embedding []float32
	if c.Embedding != nil {
		embedding = c.Embedding.Slice()
	}

	return &entity.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		SessionId: c.SessionId,
		Message:   c.Message,
		Response:  c.Response,
		Sentiment: decodeSentiment(c.Sentiment),
		Embedding: embedding,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ConversationMapper) ToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	var embedding *pgvector.Vector
	if len(c.Embedding) > 0 {
		v := pgvector.NewVector(c.Embedding)
		embedding = &v
	}

	return &model.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		SessionId: c.SessionId,
		Message:   c.Message,
		Response:  c.Response,
		Sentiment: EncodeSentiment(c.Sentiment),
		Embedding: embedding,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ConversationMapper) ToEntities(conversations []*model.Conversation) []*entity.Conversation {
	entities := make([]*entity.Conversation, len(conversations))
	for i, c := range conversations {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

// Workflow conversions

func (m *ConversationMapper) ToTurn(c *entity.Conversation) store.Turn {
	return store.Turn{
		ID:        c.Id.String(),
		UserID:    c.UserId,
		SessionID: c.SessionId,
		Message:   c.Message,
		Response:  c.Response,
		Sentiment: c.Sentiment,
		Timestamp: c.CreatedAt,
	}
}

func (m *ConversationMapper) ToTurns(conversations []*entity.Conversation) []store.Turn {
	turns := make([]store.Turn, len(conversations))
	for i, c := range conversations {
		turns[i] = m.ToTurn(c)
	}
	return turns
}

func (m *ConversationMapper) FromTurn(t store.Turn, embedding []float32) *entity.Conversation {
	c := &entity.Conversation{
		UserId:    t.UserID,
		SessionId: t.SessionID,
		Message:   t.Message,
		Response:  t.Response,
		Sentiment: t.Sentiment,
		Embedding: embedding,
		CreatedAt: t.Timestamp,
	}
	if id, err := uuid.Parse(t.ID); err == nil {
		c.Id = id
	}
	return c
}

func EncodeSentiment(sentiment map[string]float64) datatypes.JSON {
	if sentiment == nil {
		sentiment = map[string]float64{}
	}
	data, _ := json.Marshal(sentiment)
	return datatypes.JSON(data)
}

func decodeSentiment(raw datatypes.JSON) map[string]float64 {
	out := map[string]float64{}
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}
