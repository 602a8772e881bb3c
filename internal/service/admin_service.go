package service

import (
	"context"
	"strings"
	"time"

	"customer-service-be/internal/dto"
	"customer-service-be/internal/pkg/logger"
)

// zap's ISO8601 encoder layout
const logTimeLayout = "2006-01-02T15:04:05.000Z0700"

type IAdminService interface {
	GetSystemLogs(ctx context.Context, page, limit int, level string) ([]*dto.LogListResponse, error)
	GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error)
}

type adminService struct {
	logger logger.ILogger
}

func NewAdminService(log logger.ILogger) IAdminService {
	return &adminService{logger: log}
}

func (s *adminService) GetSystemLogs(ctx context.Context, page, limit int, level string) ([]*dto.LogListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	logs, err := s.logger.GetLogs(strings.ToUpper(level), limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.LogListResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, &dto.LogListResponse{
			Id:        l.Id,
			Level:     l.Level,
			Module:    l.Module,
			Message:   l.Message,
			CreatedAt: parseLogTime(l.Timestamp),
		})
	}
	return res, nil
}

func (s *adminService) GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error) {
	l, err := s.logger.GetLogById(logId)
	if err != nil {
		return nil, err
	}

	return &dto.LogDetailResponse{
		LogListResponse: dto.LogListResponse{
			Id:        logId,
			Level:     l.Level,
			Module:    l.Module,
			Message:   l.Message,
			CreatedAt: parseLogTime(l.Timestamp),
		},
		Details: l.Details,
	}, nil
}

func parseLogTime(raw string) time.Time {
	if ts, err := time.Parse(logTimeLayout, raw); err == nil {
		return ts
	}
	ts, _ := time.Parse(time.RFC3339, raw)
	return ts
}
