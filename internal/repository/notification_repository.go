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

type NotificationRepository interface {
	// Create inserts the record unless an inactivity notification for the
	// same chat, kind and day already exists. inserted is false in that case.
	Create(ctx context.Context, notif *domain.Notification) (inserted bool, err error)
	CountForChatSince(ctx context.Context, chatID uuid.UUID, kind domain.NotificationType, since time.Time) (int, error)
	DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error)
	ListCreatedBefore(ctx context.Context, before time.Time) ([]domain.Notification, error)
	ListUnsent(ctx context.Context, limit int) ([]domain.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkDeliveryFailed(ctx context.Context, id uuid.UUID, at time.Time) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (notification_id, chat_id, user_id, type, title, message, days_inactive, last_activity, is_read, is_sent, dedup_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT DO NOTHING
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		notif.ID, notif.ChatID, notif.UserID, notif.Type, notif.Title, notif.Message,
		notif.DaysInactive, notif.LastActivity, notif.IsRead, notif.IsSent, notif.DedupDay,
	).Scan(&notif.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *notificationRepository) CountForChatSince(ctx context.Context, chatID uuid.UUID, kind domain.NotificationType, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE chat_id = $1 AND type = $2 AND created_at >= $3`
	err := r.db.GetContext(ctx, &count, query, chatID, kind, since)
	return count, err
}

func (r *notificationRepository) DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE created_at < $1`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *notificationRepository) ListCreatedBefore(ctx context.Context, before time.Time) ([]domain.Notification, error) {
	var notifications []domain.Notification
	query := `SELECT * FROM notifications WHERE created_at < $1 ORDER BY created_at`
	err := r.db.SelectContext(ctx, &notifications, query, before)
	return notifications, err
}

func (r *notificationRepository) ListUnsent(ctx context.Context, limit int) ([]domain.Notification, error) {
	var notifications []domain.Notification
	query := `
		SELECT * FROM notifications
		WHERE is_sent = false AND delivery_failed_at IS NULL
		ORDER BY created_at
		LIMIT $1`
	err := r.db.SelectContext(ctx, &notifications, query, limit)
	return notifications, err
}

func (r *notificationRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notifications SET is_sent = true WHERE notification_id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *notificationRepository) MarkDeliveryFailed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE notifications SET delivery_failed_at = $2 WHERE notification_id = $1`
	_, err := r.db.ExecContext(ctx, query, id, at)
	return err
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var notif domain.Notification
	query := `SELECT * FROM notifications WHERE notification_id = $1`
	err := r.db.GetContext(ctx, &notif, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	params.Validate()

	var total int64
	notifications := []domain.Notification{}

	filter := `user_id = $1`
	if unreadOnly {
		filter += ` AND is_read = false`
	}

	countQuery := `SELECT COUNT(*) FROM notifications WHERE ` + filter
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM notifications
		WHERE ` + filter + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	err := r.db.SelectContext(ctx, &notifications, query, userID, params.PageSize, params.Offset())
	return notifications, total, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true WHERE notification_id = $1 AND is_read = false`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}

func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `DELETE FROM notifications WHERE notification_id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
