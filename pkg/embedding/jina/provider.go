package jina

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"customer-service-be/pkg/embedding"
)

const defaultEndpoint = "https://api.jina.ai/v1/embeddings"

var ErrEmptyEmbedding = errors.New("jina returned no embeddings")

type JinaProvider struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Task  string   `json:"task,omitempty"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewJinaProvider uses v2-base-en, 768 wide like the conversation vector column
func NewJinaProvider(apiKey string) *JinaProvider {
	return &JinaProvider{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		model:    "jina-embeddings-v2-base-en",
		client:   embedding.NewHTTPClient(),
	}
}

var _ embedding.EmbeddingProvider = &JinaProvider{}

func (p *JinaProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	req := embeddingRequest{Model: p.model, Task: task(taskType), Input: []string{text}}
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}

	var res embeddingResponse
	if err := embedding.PostJSON(ctx, p.client, "jina", p.endpoint, headers, req, &res); err != nil {
		return nil, err
	}
	if res.Error != nil {
		return nil, fmt.Errorf("jina api error: %s", res.Error.Message)
	}
	if len(res.Data) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return embedding.NewResponse(res.Data[0].Embedding), nil
}

func task(taskType string) string {
	switch taskType {
	case embedding.TaskRetrievalQuery:
		return "retrieval.query"
	case embedding.TaskRetrievalDocument:
		return "retrieval.passage"
	}
	return ""
}
