package store

import (
	"context"
	"errors"
	"time"
)

// Turn is one persisted conversation exchange as seen by the workflow
type Turn struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	SessionID string             `json:"session_id"`
	Message   string             `json:"message"`
	Response  string             `json:"response"`
	Sentiment map[string]float64 `json:"sentiment"`
	Timestamp time.Time          `json:"timestamp"`
}

// SameExchange reports whether two turns carry identical message and response text.
// Record ids are not compared: the same exchange may be fetched through different views.
func (t Turn) SameExchange(other Turn) bool {
	return t.Message == other.Message && t.Response == other.Response
}

// ScoredTurn is a turn returned by similarity search
type ScoredTurn struct {
	Turn  Turn    `json:"turn"`
	Score float64 `json:"score"` // cosine similarity, 1.0 = identical
}

// Checkpoint is the snapshot of a pipeline run stored under its thread id
type Checkpoint struct {
	ThreadID  string    `json:"thread_id"`
	Stage     string    `json:"stage"` // last stage that completed, "END" once the run closed
	Turn      int       `json:"turn"`  // number of runs started on this thread
	State     []byte    `json:"state"` // JSON encoded interaction state
	UpdatedAt time.Time `json:"updated_at"`
}

const StageEnd = "END"

var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Checkpointer persists per-thread run state. Put must be atomic per thread id.
// The turn counter is read with Get and written with Put, so it is best-effort:
// two runs entering the same thread at once can record the same turn number.
type Checkpointer interface {
	Get(ctx context.Context, threadID string) (*Checkpoint, error)
	Put(ctx context.Context, checkpoint *Checkpoint) error
}
