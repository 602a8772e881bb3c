package embedding

import (
	"context"
	"fmt"
	"net/http"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:embedContent"

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Model                string        `json:"model"`
	Content              geminiContent `json:"content"`
	TaskType             string        `json:"task_type,omitempty"`
	OutputDimensionality int           `json:"output_dimensionality,omitempty"`
}

type GeminiProvider struct {
	apiKey    string
	model     string
	dimension int
	endpoint  string
	client    *http.Client
}

// NewGeminiProvider asks for dimension-wide vectors so they fit the conversation column
func NewGeminiProvider(apiKey string, dimension int) EmbeddingProvider {
	model := "text-embedding-004"
	return &GeminiProvider{
		apiKey:    apiKey,
		model:     model,
		dimension: dimension,
		endpoint:  fmt.Sprintf(geminiEndpoint, model),
		client:    NewHTTPClient(),
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	req := geminiRequest{
		Model:                p.model,
		Content:              geminiContent{Parts: []geminiPart{{Text: text}}},
		TaskType:             taskType,
		OutputDimensionality: p.dimension,
	}

	var res EmbeddingResponse
	if err := PostJSON(ctx, p.client, "gemini", p.endpoint, map[string]string{"x-goog-api-key": p.apiKey}, req, &res); err != nil {
		return nil, err
	}

	// truncated outputs are not unit length
	return NewResponse(normalizeVector(res.Embedding.Values)), nil
}
