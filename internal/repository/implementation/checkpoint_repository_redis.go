package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"customer-service-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const checkpointKeyPrefix = "checkpoint:"

// RedisCheckpointRepository keeps one checkpoint per thread id. A single SET
// replaces the previous snapshot so writes are atomic per thread.
type RedisCheckpointRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCheckpointRepository(rdb *redis.Client, ttl time.Duration) *RedisCheckpointRepository {
	return &RedisCheckpointRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisCheckpointRepository) Get(ctx context.Context, threadID string) (*store.Checkpoint, error) {
	data, err := r.rdb.Get(ctx, checkpointKeyPrefix+threadID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("get checkpoint %s: %w", threadID, err)
	}

	var cp store.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", threadID, err)
	}
	return &cp, nil
}

func (r *RedisCheckpointRepository) Put(ctx context.Context, checkpoint *store.Checkpoint) error {
	if checkpoint.UpdatedAt.IsZero() {
		checkpoint.UpdatedAt = time.Now()
	}
	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("encode checkpoint %s: %w", checkpoint.ThreadID, err)
	}
	if err := r.rdb.Set(ctx, checkpointKeyPrefix+checkpoint.ThreadID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("put checkpoint %s: %w", checkpoint.ThreadID, err)
	}
	return nil
}
