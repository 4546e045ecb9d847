package service

import (
	"context"
	"fmt"
	"strings"

	"rag-learning/internal/models"

	"go.uber.org/zap"
)

// EmptyContextMessage is the sentinel rendered when retrieval finds
// nothing; callers compare against it to skip the completion call.
const EmptyContextMessage = "Nenhum trecho relevante foi encontrado na base de conhecimento."

// SimilaritySearcher answers nearest-neighbor queries over stored chunks.
type SimilaritySearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, k int) ([]models.SearchResult, error)
}

// Retriever finds the chunks most relevant to a query and renders them
// into the grounding context for a prompt.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]models.SearchResult, error)
}

// RAGService is the query-time wrapper: embed the query, fetch the top-k
// nearest chunks.
type RAGService struct {
	embedder Embedder
	searcher SimilaritySearcher
	logger   *zap.Logger
}

func NewRAGService(embedder Embedder, searcher SimilaritySearcher, logger *zap.Logger) *RAGService {
	return &RAGService{
		embedder: embedder,
		searcher: searcher,
		logger:   logger,
	}
}

// Search embeds the query and returns the k nearest chunks, ascending by
// distance.
func (s *RAGService) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding provider returned no vector for query")
	}

	results, err := s.searcher.SearchSimilar(ctx, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar chunks: %w", err)
	}

	s.logger.Info("Knowledge search completed",
		zap.Int("k", k),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// BuildContext renders retrieval results into the grounding block consumed
// verbatim by the completion prompts. The header layout is part of the
// prompt contract, not display formatting.
func BuildContext(results []models.SearchResult) string {
	if len(results) == 0 {
		return EmptyContextMessage
	}

	blocks := make([]string, 0, len(results))
	for i, r := range results {
		header := []string{fmt.Sprintf("Trecho %d", i+1)}
		if r.Metadata.Title != "" {
			header = append(header, "título: "+r.Metadata.Title)
		}
		if r.Metadata.Source != "" {
			header = append(header, "fonte: "+r.Metadata.Source)
		}
		if r.Metadata.Type != "" {
			header = append(header, "tipo: "+string(r.Metadata.Type))
		}

		blocks = append(blocks, strings.Join(header, " | ")+"\n"+r.Content)
	}

	rule := "\n" + strings.Repeat("-", 80) + "\n\n"
	return "\n\n" + strings.Join(blocks, rule)
}
