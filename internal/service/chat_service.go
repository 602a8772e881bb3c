package service

import (
	"context"
	"fmt"

	"customer-service-be/internal/dto"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/pkg/workflow/state"
)

// Runner executes one message through the stage pipeline
type Runner interface {
	Run(ctx context.Context, userID, message, sessionID string) (*state.InteractionState, error)
}

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	pipeline Runner
	logger   logger.ILogger
}

func NewChatService(pipeline Runner, log logger.ILogger) IChatService {
	return &chatService{
		pipeline: pipeline,
		logger:   log,
	}
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	s.logger.Info("ChatService", "Processing chat request", map[string]interface{}{
		"user_id":    req.User,
		"session_id": req.SessionId,
	})

	// a client hanging up must not cancel the Memory stage mid-write
	runCtx := context.WithoutCancel(ctx)

	st, err := s.pipeline.Run(runCtx, req.User, req.Message, req.SessionId)
	if err != nil {
		s.logger.Error("ChatService", "Pipeline run failed", map[string]interface{}{
			"user_id": req.User,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("process chat message: %w", err)
	}

	sentiment := st.Sentiment
	if sentiment == nil {
		sentiment = map[string]float64{}
	}
	actions := st.ActionsTaken
	if actions == nil {
		actions = []string{}
	}

	return &dto.ChatResponse{
		Response:     st.Response,
		Sentiment:    sentiment,
		ActionsTaken: actions,
		SessionId:    st.SessionID,
	}, nil
}
