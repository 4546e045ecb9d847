package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rag-learning/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSearcher struct {
	searchFn func(ctx context.Context, embedding []float32, k int) ([]models.SearchResult, error)
	lastK    int
}

func (f *fakeSearcher) SearchSimilar(ctx context.Context, embedding []float32, k int) ([]models.SearchResult, error) {
	f.lastK = k
	return f.searchFn(ctx, embedding, k)
}

func TestRAGServiceSearch(t *testing.T) {
	embedder := &fakeEmbedder{
		embedFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			require.Equal(t, []string{"juros compostos"}, texts)
			return [][]float32{{0.1, 0.2}}, nil
		},
	}
	searcher := &fakeSearcher{
		searchFn: func(ctx context.Context, embedding []float32, k int) ([]models.SearchResult, error) {
			assert.Equal(t, []float32{0.1, 0.2}, embedding)
			return []models.SearchResult{{ID: 7, Content: "texto"}}, nil
		},
	}

	svc := NewRAGService(embedder, searcher, zap.NewNop())
	results, err := svc.Search(context.Background(), "juros compostos", 5)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(7), results[0].ID)
	assert.Equal(t, 5, searcher.lastK)
}

func TestRAGServiceSearchEmbedError(t *testing.T) {
	embedder := &fakeEmbedder{
		embedFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("provider down")
		},
	}

	svc := NewRAGService(embedder, &fakeSearcher{}, zap.NewNop())
	_, err := svc.Search(context.Background(), "qualquer", 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed query")
}

func TestBuildContextEmpty(t *testing.T) {
	assert.Equal(t, EmptyContextMessage, BuildContext(nil))
	assert.Equal(t, EmptyContextMessage, BuildContext([]models.SearchResult{}))
}

func TestBuildContextHeaders(t *testing.T) {
	results := []models.SearchResult{
		{
			Content: "Conteúdo um.",
			Metadata: models.ChunkMetadata{
				Title:  "Finanças",
				Source: "apostila.pdf",
				Type:   models.DocTypePDF,
			},
		},
		{
			Content:  "Conteúdo dois.",
			Metadata: models.ChunkMetadata{Source: "aula.mp3", Type: models.DocTypeAudio},
		},
	}

	out := BuildContext(results)

	assert.True(t, strings.HasPrefix(out, "\n\n"))
	assert.Contains(t, out, "Trecho 1 | título: Finanças | fonte: apostila.pdf | tipo: pdf\nConteúdo um.")
	// Missing title drops the field instead of rendering it empty.
	assert.Contains(t, out, "Trecho 2 | fonte: aula.mp3 | tipo: audio\nConteúdo dois.")
	assert.NotContains(t, out, "título: \n")

	rule := "\n" + strings.Repeat("-", 80) + "\n\n"
	assert.Equal(t, 1, strings.Count(out, rule))
}

func TestBuildContextBareResult(t *testing.T) {
	out := BuildContext([]models.SearchResult{{Content: "Só conteúdo."}})

	assert.Contains(t, out, "Trecho 1\nSó conteúdo.")
	assert.NotContains(t, out, "|")
}
