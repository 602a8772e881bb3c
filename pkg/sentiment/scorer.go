package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultModel   = "cardiffnlp/twitter-roberta-base-sentiment-latest"
	DefaultBaseURL = "https://router.huggingface.co/hf-inference/models"

	// ErrorLabel marks a failed analysis in the sentiment map
	ErrorLabel = "error"
)

// Scorer maps text to label probabilities
type Scorer interface {
	Score(ctx context.Context, text string) (map[string]float64, error)
}

// HuggingFaceScorer calls the text-classification inference endpoint
type HuggingFaceScorer struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ Scorer = &HuggingFaceScorer{}

func NewHuggingFaceScorer(apiKey, baseURL, model string) *HuggingFaceScorer {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &HuggingFaceScorer{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type classificationRequest struct {
	Inputs     string                 `json:"inputs"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (s *HuggingFaceScorer) Score(ctx context.Context, text string) (map[string]float64, error) {
	body, err := json.Marshal(classificationRequest{
		Inputs:     text,
		Parameters: map[string]interface{}{"top_k": nil},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sentiment request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sentiment api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	scores, err := parseScores(respBody)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("sentiment api returned no labels")
	}

	out := make(map[string]float64, len(scores))
	for _, ls := range scores {
		out[ls.Label] = ls.Score
	}
	return out, nil
}

// parseScores accepts both the nested [[...]] shape of single-input pipelines and a flat list
func parseScores(body []byte) ([]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []labelScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("decode sentiment response: %w", err)
	}
	return flat, nil
}

// Failed is the sentinel stored in place of scores when analysis fails
func Failed() map[string]float64 {
	return map[string]float64{ErrorLabel: 0}
}

// IsFailed reports whether a sentiment map is the failure sentinel
func IsFailed(scores map[string]float64) bool {
	_, ok := scores[ErrorLabel]
	return ok
}

// Dominant returns the highest scoring label, "" for empty or failed maps
func Dominant(scores map[string]float64) string {
	if IsFailed(scores) {
		return ""
	}
	best, bestScore := "", -1.0
	for label, score := range scores {
		if score > bestScore || (score == bestScore && label < best) {
			best, bestScore = label, score
		}
	}
	return best
}
