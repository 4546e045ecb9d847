package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rag-learning/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrConversationNotFound is returned when a conversation id does not
// resolve to a stored conversation.
var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewConversationRepository(db *pgxpool.Pool, logger *zap.Logger) *ConversationRepository {
	return &ConversationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new conversation with empty history and returns its id.
func (r *ConversationRepository) Create(ctx context.Context) (int64, error) {
	query := squirrel.Insert("conversation").
		Columns("history").
		Values([]byte("[]")).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create conversation: %w", err)
	}

	return id, nil
}

// GetHistory loads the ordered turn history of a conversation.
func (r *ConversationRepository) GetHistory(ctx context.Context, conversationID int64) ([]models.Turn, error) {
	query := squirrel.Select("history").
		From("conversation").
		Where(squirrel.Eq{"id": conversationID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var historyJSON []byte
	err = r.db.QueryRow(ctx, sql, args...).Scan(&historyJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}

	var history []models.Turn
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &history); err != nil {
			return nil, fmt.Errorf("failed to decode conversation history: %w", err)
		}
	}

	return history, nil
}

// SaveHistory overwrites the stored history with the full sequence. Callers
// racing on the same id lose to the later writer; serialization happens one
// layer up.
func (r *ConversationRepository) SaveHistory(ctx context.Context, conversationID int64, history []models.Turn) error {
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode conversation history: %w", err)
	}

	query := squirrel.Update("conversation").
		Set("history", historyJSON).
		Where(squirrel.Eq{"id": conversationID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
