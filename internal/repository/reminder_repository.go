package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"crm-engagement/internal/domain"
)

type ReminderRepository interface {
	Create(ctx context.Context, reminder *domain.Reminder) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Reminder, int64, error)
	FindDue(ctx context.Context, windowStart, windowEnd time.Time) ([]domain.Reminder, error)
	Update(ctx context.Context, id uuid.UUID, update domain.ReminderUpdate) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

var ErrEmptyUpdate = errors.New("no fields to update")

type reminderRepository struct {
	db *sqlx.DB
}

func NewReminderRepository(db *sqlx.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	query := `
		INSERT INTO reminders (reminder_id, user_id, chat_id, title, message, reminder_time, is_recurring, recurrence_pattern, is_active, is_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		reminder.ID, reminder.UserID, reminder.ChatID, reminder.Title, reminder.Message,
		reminder.ReminderTime, reminder.IsRecurring, reminder.RecurrencePattern,
		reminder.IsActive, reminder.IsSent,
	).Scan(&reminder.CreatedAt, &reminder.UpdatedAt)
}

func (r *reminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	var reminder domain.Reminder
	query := `SELECT * FROM reminders WHERE reminder_id = $1`

	err := r.db.GetContext(ctx, &reminder, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *reminderRepository) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Reminder, int64, error) {
	params.Validate()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reminders WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}

	reminders := []domain.Reminder{}
	query := `
		SELECT * FROM reminders
		WHERE user_id = $1
		ORDER BY reminder_time
		LIMIT $2 OFFSET $3`
	err := r.db.SelectContext(ctx, &reminders, query, userID, params.PageSize, params.Offset())
	return reminders, total, err
}

// FindDue returns active, unsent reminders with reminder_time inside
// [windowStart, windowEnd].
func (r *reminderRepository) FindDue(ctx context.Context, windowStart, windowEnd time.Time) ([]domain.Reminder, error) {
	reminders := []domain.Reminder{}
	query := `
		SELECT * FROM reminders
		WHERE is_active = true
		  AND is_sent = false
		  AND reminder_time >= $1
		  AND reminder_time <= $2
		ORDER BY reminder_time`

	err := r.db.SelectContext(ctx, &reminders, query, windowStart, windowEnd)
	return reminders, err
}

func (r *reminderRepository) Update(ctx context.Context, id uuid.UUID, update domain.ReminderUpdate) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.ReminderTime != nil {
		add("reminder_time", *update.ReminderTime)
	}
	if update.IsSent != nil {
		add("is_sent", *update.IsSent)
	}
	if update.ClearSentAt {
		sets = append(sets, "sent_at = NULL")
	} else if update.SentAt != nil {
		add("sent_at", *update.SentAt)
	}
	if update.IsActive != nil {
		add("is_active", *update.IsActive)
	}
	if len(sets) == 0 {
		return ErrEmptyUpdate
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE reminders SET %s, updated_at = NOW() WHERE reminder_id = $%d`,
		strings.Join(sets, ", "), len(args))

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *reminderRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE reminder_id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
