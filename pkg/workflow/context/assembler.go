package context

import (
	"context"
	"fmt"
	"sort"

	"customer-service-be/internal/pkg/logger"
	"customer-service-be/pkg/llm"
	"customer-service-be/pkg/store"
)

const (
	// supplementary views are capped again when building the prompt
	maxUserTurnsInPrompt    = 2
	maxSimilarTurnsInPrompt = 2
	previewLength           = 100
)

// Limits caps each fetched view
type Limits struct {
	Session int
	User    int
	Similar int
}

func DefaultLimits() Limits {
	return Limits{Session: 10, User: 5, Similar: 3}
}

// Views are the three conversation views gathered for one message
type Views struct {
	Session []store.Turn       // oldest first
	User    []store.Turn       // newest first
	Similar []store.ScoredTurn // best match first
}

// Assembler fetches conversation views and turns them into reply context
type Assembler struct {
	store  store.ConversationStore
	limits Limits
	logger logger.ILogger
}

func NewAssembler(conversations store.ConversationStore, limits Limits, log logger.ILogger) *Assembler {
	def := DefaultLimits()
	if limits.Session <= 0 {
		limits.Session = def.Session
	}
	if limits.User <= 0 {
		limits.User = def.User
	}
	if limits.Similar <= 0 {
		limits.Similar = def.Similar
	}
	return &Assembler{store: conversations, limits: limits, logger: log}
}

// Fetch gathers the three views. Each fetch fails independently to an empty view.
// excludeID drops the turn stored for the current message so it is not fed back as history.
func (a *Assembler) Fetch(ctx context.Context, sessionID, userID string, embedding []float32, excludeID string) Views {
	var views Views
	extra := 0
	if excludeID != "" {
		extra = 1
	}

	session, err := a.store.FetchBySession(ctx, sessionID, a.limits.Session+extra)
	if err != nil {
		a.logger.Warn("ContextAssembler", "Session history fetch failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	} else {
		session = withoutTurn(session, excludeID)
		sort.SliceStable(session, func(i, j int) bool {
			return session[i].Timestamp.Before(session[j].Timestamp)
		})
		// keep the most recent ones
		if len(session) > a.limits.Session {
			session = session[len(session)-a.limits.Session:]
		}
		views.Session = session
	}

	user, err := a.store.FetchByUser(ctx, userID, a.limits.User+extra)
	if err != nil {
		a.logger.Warn("ContextAssembler", "User history fetch failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	} else {
		user = withoutTurn(user, excludeID)
		sort.SliceStable(user, func(i, j int) bool {
			return user[i].Timestamp.After(user[j].Timestamp)
		})
		if len(user) > a.limits.User {
			user = user[:a.limits.User]
		}
		views.User = user
	}

	if len(embedding) > 0 {
		similar, err := a.store.FetchSimilar(ctx, embedding, a.limits.Similar+extra, userID)
		if err != nil {
			a.logger.Warn("ContextAssembler", "Similarity search failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		} else {
			filtered := make([]store.ScoredTurn, 0, len(similar))
			for _, s := range similar {
				if excludeID != "" && s.Turn.ID == excludeID {
					continue
				}
				filtered = append(filtered, s)
			}
			sort.SliceStable(filtered, func(i, j int) bool {
				return filtered[i].Score > filtered[j].Score
			})
			if len(filtered) > a.limits.Similar {
				filtered = filtered[:a.limits.Similar]
			}
			views.Similar = filtered
		}
	}

	a.logger.Debug("ContextAssembler", "Views fetched", map[string]interface{}{
		"session_turns": len(views.Session),
		"user_turns":    len(views.User),
		"similar_turns": len(views.Similar),
	})

	return views
}

// BuildMessages renders the views as chat messages for the reply generator.
// Session turns come first and verbatim; user history and similar turns are
// appended as short summaries, skipping exchanges already present in the session.
func BuildMessages(views Views) []llm.Message {
	messages := make([]llm.Message, 0, len(views.Session)*2+maxUserTurnsInPrompt+maxSimilarTurnsInPrompt)

	for _, turn := range views.Session {
		if turn.Message != "" {
			messages = append(messages, llm.Message{Role: "user", Content: turn.Message})
		}
		if turn.Response != "" {
			messages = append(messages, llm.Message{Role: "assistant", Content: turn.Response})
		}
	}

	added := 0
	for _, turn := range views.User {
		if added == maxUserTurnsInPrompt {
			break
		}
		if inSession(turn, views.Session) {
			continue
		}
		messages = append(messages, llm.Message{
			Role:    "system",
			Content: fmt.Sprintf("Previous conversation: User asked %q, you replied %q", turn.Message, Truncate(turn.Response, previewLength)),
		})
		added++
	}

	for i, s := range views.Similar {
		if i == maxSimilarTurnsInPrompt {
			break
		}
		messages = append(messages, llm.Message{
			Role: "system",
			Content: fmt.Sprintf("Similar past conversation (similarity %.2f): User asked %q, you replied %q",
				s.Score, Truncate(s.Turn.Message, previewLength), Truncate(s.Turn.Response, previewLength)),
		})
	}

	return messages
}

// Truncate shortens s to n characters, marking the cut with "..."
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func inSession(turn store.Turn, session []store.Turn) bool {
	for _, s := range session {
		if s.SameExchange(turn) {
			return true
		}
	}
	return false
}

func withoutTurn(turns []store.Turn, id string) []store.Turn {
	if id == "" {
		return turns
	}
	out := make([]store.Turn, 0, len(turns))
	for _, t := range turns {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
