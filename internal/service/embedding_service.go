package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"rag-learning/pkg/config"

	"go.uber.org/zap"
)

// Embedder maps texts to fixed-length vectors, one per input, order
// preserved.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingService calls the OpenRouter embeddings API.
type EmbeddingService struct {
	config     *config.OpenRouterConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewEmbeddingService(cfg *config.OpenRouterConfig, logger *zap.Logger) *EmbeddingService {
	return &EmbeddingService{
		config:     cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// EmbedTexts embeds the whole batch in one round trip. A failed call aborts
// the operation; there is no partial result and no retry.
func (s *EmbeddingService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	payload := map[string]any{
		"model": s.config.EmbeddingModel,
		"input": texts,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embeddings request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	if s.config.SiteURL != "" {
		req.Header.Set("HTTP-Referer", s.config.SiteURL)
	}
	if s.config.AppName != "" {
		req.Header.Set("X-Title", s.config.AppName)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embeddings request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var embResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode embeddings response: %w", err)
	}

	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(embResp.Data), len(texts))
	}

	vectors := make([][]float32, len(embResp.Data))
	for i, item := range embResp.Data {
		vectors[i] = item.Embedding
	}

	s.logger.Debug("Texts embedded",
		zap.Int("count", len(texts)),
		zap.String("model", s.config.EmbeddingModel),
	)

	return vectors, nil
}
