package service

import (
	"context"
	"time"

	"customer-service-be/internal/dto"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthCheckTimeout = 2 * time.Second

// ConnectionChecker reports whether a long-lived connection is up
type ConnectionChecker interface {
	Connected() bool
}

// ConfigChecker reports whether an external provider has credentials
type ConfigChecker interface {
	Configured() bool
}

type IHealthService interface {
	Check(ctx context.Context) *dto.HealthResponse
}

type healthService struct {
	db      *gorm.DB
	rdb     *redis.Client
	nats    ConnectionChecker
	payment ConfigChecker
	// name of the configured embedding provider
	embedding string
}

// NewHealthService accepts nil for any dependency the process runs without
func NewHealthService(db *gorm.DB, rdb *redis.Client, nats ConnectionChecker, payment ConfigChecker, embeddingProvider string) IHealthService {
	return &healthService{db: db, rdb: rdb, nats: nats, payment: payment, embedding: embeddingProvider}
}

// Check reports "degraded" when the database is down. Other services are informational.
func (s *healthService) Check(ctx context.Context) *dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	services := map[string]string{}
	status := "healthy"

	switch {
	case s.db == nil:
		services["database"] = "disabled"
	default:
		services["database"] = "up"
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			services["database"] = "down"
			status = "degraded"
		}
	}

	switch {
	case s.rdb == nil:
		services["redis"] = "disabled"
	case s.rdb.Ping(ctx).Err() != nil:
		services["redis"] = "down"
	default:
		services["redis"] = "up"
	}

	switch {
	case s.nats == nil:
		services["nats"] = "disabled"
	case s.nats.Connected():
		services["nats"] = "up"
	default:
		services["nats"] = "down"
	}

	if s.payment != nil && s.payment.Configured() {
		services["payment"] = "configured"
	} else {
		services["payment"] = "not_configured"
	}

	if s.embedding != "" {
		services["embedding"] = s.embedding
	} else {
		services["embedding"] = "disabled"
	}

	return &dto.HealthResponse{Status: status, Services: services}
}
