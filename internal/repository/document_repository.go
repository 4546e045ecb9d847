package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"rag-learning/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// DocumentRepository owns the chunk table and its nearest-neighbor index.
type DocumentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDocumentRepository(db *pgxpool.Pool, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// InsertChunk persists one chunk with its embedding. Each insert is an
// independent statement; callers inserting a batch get no rollback across
// chunks.
func (r *DocumentRepository) InsertChunk(ctx context.Context, content string, metadata models.ChunkMetadata, embedding []float32) error {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk metadata: %w", err)
	}

	query := squirrel.Insert("documents").
		Columns("content", "metadata", "embedding").
		Values(content, metadataJSON, pgvector.NewVector(embedding)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// HasSource reports whether at least one chunk with the given (source, type)
// natural key already exists.
func (r *DocumentRepository) HasSource(ctx context.Context, source string, docType models.DocType) (bool, error) {
	query := squirrel.Select("1").
		From("documents").
		Where(squirrel.Eq{"metadata->>'source'": source}).
		Where(squirrel.Eq{"metadata->>'type'": string(docType)}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	return rows.Next(), rows.Err()
}

// SearchSimilar returns the k chunks nearest to the query embedding under
// the L2 operator, nearest first. Ties fall back to store ordering.
func (r *DocumentRepository) SearchSimilar(ctx context.Context, embedding []float32, k int) ([]models.SearchResult, error) {
	vec := pgvector.NewVector(embedding)

	query := squirrel.Select("id", "content", "metadata").
		Column(squirrel.Expr("embedding <-> ? AS distance", vec)).
		From("documents").
		OrderByClause(squirrel.Expr("embedding <-> ?", vec)).
		Limit(uint64(k)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var res models.SearchResult
		var metadataJSON []byte

		if err := rows.Scan(&res.ID, &res.Content, &metadataJSON, &res.Distance); err != nil {
			return nil, err
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &res.Metadata); err != nil {
				r.logger.Warn("Chunk has unreadable metadata", zap.Int64("id", res.ID), zap.Error(err))
			}
		}
		results = append(results, res)
	}

	return results, rows.Err()
}
