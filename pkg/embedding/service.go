package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 2048

// Service adapts an EmbeddingProvider to the Embedder contract: fixed width,
// zero vector on failure, and an LRU cache of successful results.
type Service struct {
	provider  EmbeddingProvider
	dimension int
	taskType  string
	cache     *lru.Cache[string, []float32]
}

func NewService(provider EmbeddingProvider, dimension int, cacheSize int) (*Service, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dimension)
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}

	cache, err := lru.New[string, []float32](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &Service{
		provider:  provider,
		dimension: dimension,
		taskType:  TaskRetrievalQuery,
		cache:     cache,
	}, nil
}

var _ Embedder = &Service{}

func (s *Service) Dimension() int {
	return s.dimension
}

func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := s.cache.Get(text); ok {
		return cached, nil
	}

	if s.provider == nil {
		return s.zero(), fmt.Errorf("no embedding provider configured")
	}

	res, err := s.provider.Generate(ctx, text, s.taskType)
	if err != nil {
		return s.zero(), fmt.Errorf("generate embedding: %w", err)
	}

	values := res.Embedding.Values
	if len(values) != s.dimension {
		return s.zero(), fmt.Errorf("embedding has %d dimensions, expected %d", len(values), s.dimension)
	}

	s.cache.Add(text, values)
	return values, nil
}

func (s *Service) zero() []float32 {
	return make([]float32, s.dimension)
}
