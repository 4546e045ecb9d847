package service

import (
	"context"
	"fmt"

	"rag-learning/internal/models"

	"go.uber.org/zap"
)

// Skip reasons an ingestion can end with instead of inserting chunks.
const (
	SkipAlreadyIngested   = "already_ingested"
	SkipNoTextExtracted   = "no_text_extracted"
	SkipNoChunksGenerated = "no_chunks_generated"
)

// IngestResult reports what one ingestion did.
type IngestResult struct {
	Skipped        bool                 `json:"skipped"`
	Reason         string               `json:"reason,omitempty"`
	InsertedChunks int                  `json:"inserted_chunks"`
	Metadata       models.ChunkMetadata `json:"metadata"`
}

// ChunkStore is the write side of the knowledge store.
type ChunkStore interface {
	HasSource(ctx context.Context, source string, docType models.DocType) (bool, error)
	InsertChunk(ctx context.Context, content string, metadata models.ChunkMetadata, embedding []float32) error
}

// Extractor classifies files and produces their text.
type Extractor interface {
	Classify(filePath string) (models.DocType, error)
	BuildMetadata(filePath, title string, docType models.DocType) models.ChunkMetadata
	Extract(ctx context.Context, filePath string, docType models.DocType) (string, error)
}

// IngestionService runs the pipeline: dedup check, extract, chunk, embed
// the whole batch, persist chunk by chunk.
type IngestionService struct {
	extractor Extractor
	chunker   *Chunker
	embedder  Embedder
	store     ChunkStore
	logger    *zap.Logger
}

func NewIngestionService(
	extractor Extractor,
	chunker *Chunker,
	embedder Embedder,
	store ChunkStore,
	logger *zap.Logger,
) *IngestionService {
	return &IngestionService{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		logger:    logger,
	}
}

// Ingest processes one source file. Re-ingestion of a (source, type) pair
// that already has chunks is skipped before any extraction runs; the dedup
// key is the file name, not its content.
func (s *IngestionService) Ingest(ctx context.Context, filePath, title string) (*IngestResult, error) {
	docType, err := s.extractor.Classify(filePath)
	if err != nil {
		return nil, err
	}

	metadata := s.extractor.BuildMetadata(filePath, title, docType)

	exists, err := s.store.HasSource(ctx, metadata.Source, docType)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing chunks: %w", err)
	}
	if exists {
		s.logger.Info("Source already ingested, skipping",
			zap.String("source", metadata.Source),
			zap.String("type", string(docType)),
		)
		return &IngestResult{Skipped: true, Reason: SkipAlreadyIngested, Metadata: metadata}, nil
	}

	text, err := s.extractor.Extract(ctx, filePath, docType)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return &IngestResult{Skipped: true, Reason: SkipNoTextExtracted, Metadata: metadata}, nil
	}

	chunks := s.chunker.Split(text)
	if len(chunks) == 0 {
		return &IngestResult{Skipped: true, Reason: SkipNoChunksGenerated, Metadata: metadata}, nil
	}

	// One batch call, one vector per chunk, order preserved.
	embeddings, err := s.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}

	// Inserts are independent; a failure partway leaves the earlier chunks
	// in place.
	inserted := 0
	for i, chunk := range chunks {
		if err := s.store.InsertChunk(ctx, chunk, metadata, embeddings[i]); err != nil {
			return nil, fmt.Errorf("failed to insert chunk %d of %d: %w", i+1, len(chunks), err)
		}
		inserted++
	}

	s.logger.Info("Source ingested",
		zap.String("source", metadata.Source),
		zap.String("type", string(docType)),
		zap.Int("chunks", inserted),
	)

	return &IngestResult{InsertedChunks: inserted, Metadata: metadata}, nil
}
