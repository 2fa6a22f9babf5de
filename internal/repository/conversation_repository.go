package repository

import (
	"context"
	"encoding/json"

	"mba-counselor/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ConversationRepository persists turns per session for context and audit.
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

func (r *ConversationRepository) SaveTurn(ctx context.Context, turn *models.ConversationTurn, prefs models.PreferenceSet) error {
	contextJSON, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	query := squirrel.Insert("conversations").
		Columns("session_id", "user_message", "bot_response", "context", "failed").
		Values(turn.SessionID, turn.UserMessage, turn.BotResponse, contextJSON, turn.Failed).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, sql, args...).Scan(&turn.ID, &turn.CreatedAt)
}

// GetRecentBySession returns the newest turns in chronological order.
func (r *ConversationRepository) GetRecentBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ConversationTurn, error) {
	query := squirrel.Select("id", "session_id", "user_message", "bot_response", "failed", "created_at").
		From("conversations").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
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

	var turns []models.ConversationTurn
	for rows.Next() {
		var t models.ConversationTurn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UserMessage, &t.BotResponse, &t.Failed, &t.CreatedAt); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// reverse into chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	return turns, nil
}

// DeleteBySession removes all persisted turns for a session; reset must
// leave nothing behind.
func (r *ConversationRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	query := squirrel.Delete("conversations").
		Where(squirrel.Eq{"session_id": sessionID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
