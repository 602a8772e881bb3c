package executor

import (
	"context"
	"time"

	"customer-service-be/internal/pkg/logger"
	"customer-service-be/pkg/embedding"
	"customer-service-be/pkg/events"
	"customer-service-be/pkg/sentiment"
	"customer-service-be/pkg/store"
	wfcontext "customer-service-be/pkg/workflow/context"
	"customer-service-be/pkg/workflow/state"
)

// Stage is one step of the pipeline. Run receives an owned copy of the state and
// returns the next state. Collaborator faults are turned into tags inside Run.
type Stage interface {
	Name() string
	Run(ctx context.Context, st *state.InteractionState) *state.InteractionState
}

// fallbacker fills safe defaults for the fields a stage owns when it panicked
type fallbacker interface {
	Fallback(st *state.InteractionState)
}

// IngestStage persists the incoming message and gathers conversation context
type IngestStage struct {
	conversations store.ConversationStore
	embedder      embedding.Embedder
	assembler     *wfcontext.Assembler
	logger        logger.ILogger
}

func NewIngestStage(conversations store.ConversationStore, embedder embedding.Embedder, assembler *wfcontext.Assembler, log logger.ILogger) *IngestStage {
	return &IngestStage{conversations: conversations, embedder: embedder, assembler: assembler, logger: log}
}

func (s *IngestStage) Name() string { return state.StageIngest }

func (s *IngestStage) Run(ctx context.Context, st *state.InteractionState) *state.InteractionState {
	vector, err := s.embedder.Embed(ctx, st.Message)
	embedded := err == nil
	if err != nil {
		// the zero vector is still stored so the turn is not lost
		s.logger.Warn("Ingest", "Embedding failed, storing zero vector", map[string]interface{}{
			"user_id": st.UserID,
			"error":   err.Error(),
		})
	}

	id, err := s.conversations.Store(ctx, store.Turn{
		UserID:    st.UserID,
		SessionID: st.SessionID,
		Message:   st.Message,
		Sentiment: st.Sentiment,
		Timestamp: time.Now().UTC(),
	}, vector)
	if err != nil {
		s.logger.Error("Ingest", "Failed to store interaction", map[string]interface{}{
			"user_id": st.UserID,
			"error":   err.Error(),
		})
		st.AddError(state.StageIngest, err)
	} else {
		st.RecordID = id
		st.AddAction("stored_interaction")
	}

	query := vector
	if !embedded {
		query = nil
	}
	views := s.assembler.Fetch(ctx, st.SessionID, st.UserID, query, st.RecordID)
	st.ConversationHistory = views.Session
	st.UserConversations = views.User
	st.SimilarConversations = views.Similar

	s.logger.Info("Ingest", "Interaction ingested", map[string]interface{}{
		"user_id":    st.UserID,
		"session_id": st.SessionID,
		"record_id":  st.RecordID,
	})
	return st
}

// SentimentStage scores the message
type SentimentStage struct {
	scorer sentiment.Scorer
	logger logger.ILogger
}

func NewSentimentStage(scorer sentiment.Scorer, log logger.ILogger) *SentimentStage {
	return &SentimentStage{scorer: scorer, logger: log}
}

func (s *SentimentStage) Name() string { return state.StageSentiment }

func (s *SentimentStage) Run(ctx context.Context, st *state.InteractionState) *state.InteractionState {
	scores, err := s.scorer.Score(ctx, st.Message)
	if err != nil {
		s.logger.Error("Sentiment", "Sentiment analysis failed", map[string]interface{}{
			"user_id": st.UserID,
			"error":   err.Error(),
		})
		st.Sentiment = sentiment.Failed()
		st.AddError(state.StageSentiment, err)
		return st
	}

	st.Sentiment = scores
	st.AddAction("sentiment_analyzed")
	s.logger.Info("Sentiment", "Sentiment analysis completed", map[string]interface{}{
		"user_id":  st.UserID,
		"dominant": sentiment.Dominant(scores),
	})
	return st
}

func (s *SentimentStage) Fallback(st *state.InteractionState) {
	st.Sentiment = sentiment.Failed()
}

// MemoryStage writes the final response back onto the stored turn
type MemoryStage struct {
	conversations store.ConversationStore
	embedder      embedding.Embedder
	publisher     events.Publisher
	logger        logger.ILogger
}

func NewMemoryStage(conversations store.ConversationStore, embedder embedding.Embedder, publisher events.Publisher, log logger.ILogger) *MemoryStage {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &MemoryStage{conversations: conversations, embedder: embedder, publisher: publisher, logger: log}
}

func (s *MemoryStage) Name() string { return state.StageMemory }

func (s *MemoryStage) Run(ctx context.Context, st *state.InteractionState) *state.InteractionState {
	var err error
	switch {
	case st.Response == "":
		// nothing to remember
	case st.RecordID != "":
		err = s.conversations.UpdateResponse(ctx, st.RecordID, st.Response, st.Sentiment)
	default:
		// Ingest could not store the turn, store the complete exchange now
		vector, embedErr := s.embedder.Embed(ctx, st.Message)
		if embedErr != nil {
			s.logger.Warn("Memory", "Embedding failed, storing zero vector", map[string]interface{}{
				"user_id": st.UserID,
				"error":   embedErr.Error(),
			})
		}
		st.RecordID, err = s.conversations.Store(ctx, store.Turn{
			UserID:    st.UserID,
			SessionID: st.SessionID,
			Message:   st.Message,
			Response:  st.Response,
			Sentiment: st.Sentiment,
			Timestamp: time.Now().UTC(),
		}, vector)
	}
	if err != nil {
		s.logger.Error("Memory", "Failed to update memory", map[string]interface{}{
			"user_id":   st.UserID,
			"record_id": st.RecordID,
			"error":     err.Error(),
		})
		st.AddError(state.StageMemory, err)
		return st
	}

	st.AddAction("memory_updated")

	evt := events.TurnCompleted(st.UserID, st.SessionID, st.RecordID, st.Sentiment, st.ActionsTaken)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("Memory", "Failed to publish turn event", map[string]interface{}{
			"record_id": st.RecordID,
			"error":     err.Error(),
		})
	}
	return st
}
