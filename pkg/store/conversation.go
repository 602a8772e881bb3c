package store

import "context"

// ConversationStore is the persistence boundary for conversation turns
type ConversationStore interface {
	// Store persists a new turn and returns its id. Identical turns are stored twice.
	Store(ctx context.Context, turn Turn, embedding []float32) (string, error)

	// UpdateResponse sets the final response and sentiment of a stored turn
	UpdateResponse(ctx context.Context, id string, response string, sentiment map[string]float64) error

	// FetchBySession returns the most recent turns of a session, oldest first
	FetchBySession(ctx context.Context, sessionID string, limit int) ([]Turn, error)

	// FetchByUser returns the most recent turns of a user across sessions, newest first
	FetchByUser(ctx context.Context, userID string, limit int) ([]Turn, error)

	// FetchSimilar returns the user's turns nearest to embedding, best match first
	FetchSimilar(ctx context.Context, embedding []float32, limit int, userID string) ([]ScoredTurn, error)
}
