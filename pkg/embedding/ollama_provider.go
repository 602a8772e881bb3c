package embedding

import (
	"context"
	"net/http"
	"strings"
)

// OllamaProvider calls a local Ollama embedding model such as nomic-embed-text
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaProvider(baseURL string, model string) EmbeddingProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  NewHTTPClient(),
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (p *OllamaProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	var res ollamaEmbeddingResponse
	req := ollamaEmbeddingRequest{Model: p.model, Prompt: taskPrefix(taskType) + text}
	if err := PostJSON(ctx, p.client, "ollama", p.baseURL+"/api/embeddings", nil, req, &res); err != nil {
		return nil, err
	}

	values := make([]float32, len(res.Embedding))
	for i, v := range res.Embedding {
		values[i] = float32(v)
	}
	// pgvector cosine distance assumes unit vectors
	return NewResponse(normalizeVector(values)), nil
}

// nomic-embed-text expects the task as a prompt prefix
func taskPrefix(taskType string) string {
	switch taskType {
	case TaskRetrievalQuery:
		return "search_query: "
	case TaskRetrievalDocument:
		return "search_document: "
	}
	return ""
}
