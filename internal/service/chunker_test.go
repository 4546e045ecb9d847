package service

import (
	"fmt"
	"strings"
	"testing"

	"rag-learning/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int, prefix string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return strings.Join(parts, " ")
}

func TestChunkerEmptyInput(t *testing.T) {
	c := NewChunker(&config.RAGConfig{MinWords: 200, MaxWords: 400, OverlapUnits: 1})

	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n\n  \t "))
}

func TestChunkerSingleShortText(t *testing.T) {
	c := NewChunker(&config.RAGConfig{MinWords: 200, MaxWords: 400, OverlapUnits: 1})

	chunks := c.Split("Uma frase curta sobre juros compostos.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Uma frase curta sobre juros compostos.", chunks[0])
}

func TestChunkerForceMergesUndersizedChunks(t *testing.T) {
	// Two 100-word paragraphs with min 120 / max 150: closing after the
	// first paragraph would leave it under min, so both land in one chunk
	// even though together they exceed max. The overlap remnant must not
	// surface as a trailing duplicate chunk.
	c := NewChunker(&config.RAGConfig{MinWords: 120, MaxWords: 150, OverlapUnits: 1})

	text := words(100, "a") + "\n\n" + words(100, "b")
	chunks := c.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, 200, len(strings.Fields(chunks[0])))
}

func TestChunkerParagraphOverlap(t *testing.T) {
	c := NewChunker(&config.RAGConfig{MinWords: 50, MaxWords: 100, OverlapUnits: 1})

	var paragraphs []string
	for i := 0; i < 4; i++ {
		paragraphs = append(paragraphs, words(60, fmt.Sprintf("p%d_", i)))
	}
	chunks := c.Split(strings.Join(paragraphs, "\n\n"))

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prevParas := strings.Split(chunks[i-1], "\n\n")
		tail := prevParas[len(prevParas)-1]
		assert.True(t, strings.HasPrefix(chunks[i], tail),
			"chunk %d should start with the last paragraph of chunk %d", i, i-1)
	}
}

func TestChunkerSentenceFallback(t *testing.T) {
	// Single paragraph: units are sentences, joined by spaces.
	c := NewChunker(&config.RAGConfig{MinWords: 5, MaxWords: 12, OverlapUnits: 0})

	text := "Primeira frase com cinco palavras aqui. Segunda frase com cinco palavras também. Terceira frase com cinco palavras mais."
	chunks := c.Split(text)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.NotContains(t, chunk, "\n\n")
		assert.True(t, strings.HasSuffix(strings.TrimSpace(chunk), "."))
	}
}

func TestChunkerSingleOversizedUnit(t *testing.T) {
	// One unit larger than max is emitted as-is; units are never split.
	c := NewChunker(&config.RAGConfig{MinWords: 50, MaxWords: 100, OverlapUnits: 1})

	text := strings.Join(strings.Fields(words(300, "w")), " ")
	chunks := c.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, 300, len(strings.Fields(chunks[0])))
}

func TestChunkerNormalizesWhitespace(t *testing.T) {
	c := NewChunker(&config.RAGConfig{MinWords: 200, MaxWords: 400, OverlapUnits: 1})

	chunks := c.Split("Linha   com\tespaços   repetidos.\r\nOutra linha.")
	require.Len(t, chunks, 1)
	assert.NotContains(t, chunks[0], "  ")
	assert.NotContains(t, chunks[0], "\r")
}

func TestChunkerDefaults(t *testing.T) {
	c := NewChunker(&config.RAGConfig{})

	assert.Equal(t, 200, c.minWords)
	assert.Equal(t, 400, c.maxWords)
	assert.Equal(t, 0, c.overlapUnits)
}
