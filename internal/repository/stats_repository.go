package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"crm-engagement/internal/domain"
)

type StatsRepository interface {
	// Engagement counts entities past each threshold. The 2-day counts
	// include entities that are also past 5 days.
	Engagement(ctx context.Context, twoDay, fiveDay time.Time) (*domain.EngagementStats, error)
}

type statsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Engagement(ctx context.Context, twoDay, fiveDay time.Time) (*domain.EngagementStats, error) {
	var stats domain.EngagementStats
	query := `
		SELECT
			(SELECT COUNT(*) FROM chats WHERE is_gold = false AND last_activity < $1) AS inactive_chats_2days,
			(SELECT COUNT(*) FROM chats WHERE is_gold = false AND last_activity < $2) AS inactive_chats_5days,
			(SELECT COUNT(*) FROM chats WHERE is_gold = true AND last_activity < $1) AS inactive_fundraisers_2days,
			(SELECT COUNT(*) FROM chats WHERE is_gold = true AND last_activity < $2) AS inactive_fundraisers_5days,
			(SELECT COUNT(*) FROM notifications WHERE is_sent = false) AS unsent_notifications,
			(SELECT COUNT(*) FROM reminders WHERE is_active = true AND is_sent = false) AS active_reminders`

	if err := r.db.GetContext(ctx, &stats, query, twoDay, fiveDay); err != nil {
		return nil, err
	}
	return &stats, nil
}
