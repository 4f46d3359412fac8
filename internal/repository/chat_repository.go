package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"crm-engagement/internal/domain"
)

// ChatRepository is the read side of chats the engine scans. Chat CRUD
// lives in the messaging service; TouchActivity is its hook into us.
type ChatRepository interface {
	FindInactiveSince(ctx context.Context, threshold time.Time, isGold bool) ([]domain.Chat, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error)
	TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) FindInactiveSince(ctx context.Context, threshold time.Time, isGold bool) ([]domain.Chat, error) {
	chats := []domain.Chat{}
	query := `
		SELECT chat_id, user_id, name, last_activity, is_gold, message_count, created_at
		FROM chats
		WHERE last_activity < $1 AND is_gold = $2
		ORDER BY last_activity`

	err := r.db.SelectContext(ctx, &chats, query, threshold, isGold)
	return chats, err
}

func (r *chatRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error) {
	var chat domain.Chat
	query := `
		SELECT chat_id, user_id, name, last_activity, is_gold, message_count, created_at
		FROM chats WHERE chat_id = $1`

	err := r.db.GetContext(ctx, &chat, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// TouchActivity never moves last_activity backwards.
func (r *chatRepository) TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE chats
		SET last_activity = GREATEST(last_activity, $2),
			message_count = message_count + 1
		WHERE chat_id = $1`

	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
