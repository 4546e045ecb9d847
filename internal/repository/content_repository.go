package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"rag-learning/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ContentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewContentRepository(db *pgxpool.Pool, logger *zap.Logger) *ContentRepository {
	return &ContentRepository{
		db:     db,
		logger: logger,
	}
}

// InsertContent persists one generated content row and fills in its id and
// creation timestamp.
func (r *ContentRepository) InsertContent(ctx context.Context, content *models.PersonalizedContent) error {
	metadataJSON, err := json.Marshal(content.ExtraMetadata)
	if err != nil {
		return fmt.Errorf("failed to encode content metadata: %w", err)
	}

	query := squirrel.Insert("personalized_learning_contents").
		Columns("conversation_id", "analysis_id", "subtema", "nivel", "content_type", "title", "script", "extra_metadata").
		Values(
			content.ConversationID,
			content.AnalysisID,
			content.Subtopic,
			content.Level,
			content.ContentFormat,
			content.Title,
			content.Script,
			metadataJSON,
		).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&content.ID, &content.CreatedAt); err != nil {
		return fmt.Errorf("failed to save personalized content: %w", err)
	}

	return nil
}

// ListByConversation returns all generated contents for one conversation,
// newest first.
func (r *ContentRepository) ListByConversation(ctx context.Context, conversationID int64) ([]*models.PersonalizedContent, error) {
	query := squirrel.Select("id", "conversation_id", "analysis_id", "subtema", "nivel", "content_type", "title", "script", "extra_metadata", "created_at").
		From("personalized_learning_contents").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		OrderBy("created_at DESC").
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

	var contents []*models.PersonalizedContent
	for rows.Next() {
		var c models.PersonalizedContent
		var metadataJSON []byte

		if err := rows.Scan(
			&c.ID, &c.ConversationID, &c.AnalysisID, &c.Subtopic, &c.Level,
			&c.ContentFormat, &c.Title, &c.Script, &metadataJSON, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &c.ExtraMetadata); err != nil {
				r.logger.Warn("Content has unreadable metadata", zap.Int64("id", c.ID), zap.Error(err))
			}
		}
		contents = append(contents, &c)
	}

	return contents, rows.Err()
}
