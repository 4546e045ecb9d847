package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// InitSchema creates the pgvector extension and all tables if they do not
// exist yet. Idempotent, runs on every startup.
func InitSchema(ctx context.Context, pool *pgxpool.Pool, embeddingDim int, logger *zap.Logger) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
			id BIGSERIAL PRIMARY KEY,
			content TEXT,
			metadata JSONB,
			embedding VECTOR(%d)
		);`, embeddingDim),

		`CREATE INDEX IF NOT EXISTS idx_documents_embedding
			ON documents
			USING ivfflat (embedding vector_l2_ops)
			WITH (lists = 100);`,

		`CREATE TABLE IF NOT EXISTS conversation (
			id BIGSERIAL PRIMARY KEY,
			history JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,

		`CREATE TABLE IF NOT EXISTS profile_information (
			id BIGSERIAL PRIMARY KEY,
			conversation_id BIGINT REFERENCES conversation(id) ON DELETE CASCADE,
			prefered_format TEXT,
			raw_conversation JSONB,
			analysis JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,

		`CREATE TABLE IF NOT EXISTS personalized_learning_contents (
			id BIGSERIAL PRIMARY KEY,
			conversation_id BIGINT REFERENCES conversation(id) ON DELETE CASCADE,
			analysis_id BIGINT REFERENCES profile_information(id) ON DELETE CASCADE,
			subtema TEXT,
			nivel TEXT,
			content_type TEXT,
			title TEXT,
			script TEXT,
			extra_metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	logger.Info("Database schema initialized", zap.Int("embedding_dim", embeddingDim))
	return nil
}
