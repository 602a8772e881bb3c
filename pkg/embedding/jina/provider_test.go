package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"customer-service-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *JinaProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p := NewJinaProvider("secret")
	p.endpoint = srv.URL
	return p
}

func TestGenerateMapsTaskAndAuth(t *testing.T) {
	var got embeddingRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1,0.2]}]}`))
	})

	res, err := p.Generate(context.Background(), "refund please", embedding.TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Equal(t, "retrieval.query", got.Task)
	assert.Equal(t, []string{"refund please"}, got.Input)
	assert.Equal(t, []float32{0.1, 0.2}, res.Embedding.Values)
}

func TestGenerateEmptyData(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	_, err := p.Generate(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrEmptyEmbedding)
}

func TestGenerateAPIError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[],"error":{"message":"bad model"}}`))
	})
	_, err := p.Generate(context.Background(), "x", "")
	assert.ErrorContains(t, err, "bad model")
}
