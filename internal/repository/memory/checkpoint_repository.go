package memory

import (
	"context"
	"time"

	"customer-service-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// CheckpointRepository is the in-process checkpoint store. go-cache guards
// each Set with its own mutex, so a Put replaces a thread's snapshot atomically.
type CheckpointRepository struct {
	cache *cache.Cache
}

func NewCheckpointRepository(ttl time.Duration) *CheckpointRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	c := cache.New(ttl, 10*time.Minute)
	return &CheckpointRepository{
		cache: c,
	}
}

func (r *CheckpointRepository) Get(ctx context.Context, threadID string) (*store.Checkpoint, error) {
	if x, found := r.cache.Get(threadID); found {
		cp := *x.(*store.Checkpoint)
		cp.State = append([]byte(nil), cp.State...)
		return &cp, nil
	}
	return nil, store.ErrCheckpointNotFound
}

func (r *CheckpointRepository) Put(ctx context.Context, checkpoint *store.Checkpoint) error {
	cp := *checkpoint
	cp.State = append([]byte(nil), checkpoint.State...)
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}
	r.cache.Set(cp.ThreadID, &cp, cache.DefaultExpiration)
	return nil
}
