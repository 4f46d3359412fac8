package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"crm-engagement/internal/domain"
)

type UserRepository interface {
	GetRecipient(ctx context.Context, id uuid.UUID) (*domain.Recipient, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetRecipient(ctx context.Context, id uuid.UUID) (*domain.Recipient, error) {
	var recipient domain.Recipient
	query := `SELECT user_id, email, full_name FROM users WHERE user_id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &recipient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recipient, nil
}
