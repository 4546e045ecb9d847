package service

import (
	"regexp"
	"strings"

	"rag-learning/pkg/config"
)

var (
	horizontalWS     = regexp.MustCompile(`[ \t]+`)
	sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)
)

// Chunker splits extracted text into overlapping retrieval units bounded by
// word counts. Paragraphs are the preferred unit; single-paragraph input
// falls back to sentences. A unit is never split mid-way, so a chunk may
// overshoot MaxWords rather than close under MinWords.
type Chunker struct {
	minWords     int
	maxWords     int
	overlapUnits int
}

func NewChunker(cfg *config.RAGConfig) *Chunker {
	minWords := cfg.MinWords
	if minWords <= 0 {
		minWords = 200
	}
	maxWords := cfg.MaxWords
	if maxWords <= 0 {
		maxWords = 400
	}
	overlap := cfg.OverlapUnits
	if overlap < 0 {
		overlap = 0
	}
	return &Chunker{
		minWords:     minWords,
		maxWords:     maxWords,
		overlapUnits: overlap,
	}
}

// Split turns raw text into chunk strings. Empty or whitespace-only input
// yields nil.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalWS.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	units, joiner := splitUnits(text)
	if len(units) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentWords := 0
	// hasNew distinguishes fresh units from a pure overlap remnant, so the
	// tail emit never duplicates the previous chunk.
	hasNew := false

	finalize := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, joiner))
		hasNew = false

		if c.overlapUnits > 0 {
			// Seed the next chunk with the tail of this one, both as
			// content and as the word-count baseline.
			start := len(current) - c.overlapUnits
			if start < 0 {
				start = 0
			}
			overlap := make([]string, len(current)-start)
			copy(overlap, current[start:])
			current = overlap
			currentWords = countWords(strings.Join(current, joiner))
		} else {
			current = nil
			currentWords = 0
		}
	}

	for _, unit := range units {
		unitWords := countWords(unit)

		if len(current) == 0 {
			current = append(current, unit)
			currentWords = unitWords
			hasNew = true
			continue
		}

		if currentWords+unitWords <= c.maxWords {
			current = append(current, unit)
			currentWords += unitWords
			hasNew = true
			continue
		}

		if currentWords < c.minWords {
			// Closing now would leave an undersized chunk; force the unit
			// in and accept the overshoot.
			current = append(current, unit)
			currentWords += unitWords
			finalize()
			continue
		}

		finalize()
		current = append(current, unit)
		currentWords += unitWords
		hasNew = true
	}

	if hasNew && len(current) > 0 {
		chunks = append(chunks, strings.Join(current, joiner))
	}

	return chunks
}

// splitUnits picks the atomic unit for accumulation: blank-line separated
// paragraphs when there is more than one, otherwise sentences.
func splitUnits(text string) ([]string, string) {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) > 1 {
		return paragraphs, "\n\n"
	}

	var sentences []string
	for _, s := range splitSentences(text) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences, " "
}

// splitSentences breaks text after ./!/? followed by whitespace, keeping the
// terminator with its sentence.
func splitSentences(text string) []string {
	indexes := sentenceBoundary.FindAllStringSubmatchIndex(text, -1)
	if len(indexes) == 0 {
		return []string{text}
	}

	var sentences []string
	start := 0
	for _, idx := range indexes {
		// idx[3] is the end of the terminator group; the whitespace after
		// it is consumed.
		sentences = append(sentences, text[start:idx[3]])
		start = idx[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
