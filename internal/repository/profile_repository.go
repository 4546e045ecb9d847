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

type ProfileRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProfileRepository(db *pgxpool.Pool, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// SaveProfile persists one analysis run together with the raw history it was
// derived from and returns the new profile id.
func (r *ProfileRepository) SaveProfile(
	ctx context.Context,
	conversationID int64,
	preferredFormat string,
	history []models.Turn,
	assessments []models.CompetenceAssessment,
) (int64, error) {
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return 0, fmt.Errorf("failed to encode raw conversation: %w", err)
	}
	analysisJSON, err := json.Marshal(assessments)
	if err != nil {
		return 0, fmt.Errorf("failed to encode analysis: %w", err)
	}

	query := squirrel.Insert("profile_information").
		Columns("conversation_id", "prefered_format", "raw_conversation", "analysis").
		Values(conversationID, nullableText(preferredFormat), historyJSON, analysisJSON).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to save profile information: %w", err)
	}

	return id, nil
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
