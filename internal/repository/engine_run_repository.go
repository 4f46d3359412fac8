package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"crm-engagement/internal/domain"
)

type EngineRunRepository interface {
	Create(ctx context.Context, run *domain.EngineRun) error
	List(ctx context.Context, kind domain.RunKind, params domain.PaginationParams) ([]domain.EngineRun, int64, error)
}

type engineRunRepository struct {
	db *sqlx.DB
}

func NewEngineRunRepository(db *sqlx.DB) EngineRunRepository {
	return &engineRunRepository{db: db}
}

func (r *engineRunRepository) Create(ctx context.Context, run *domain.EngineRun) error {
	query := `
		INSERT INTO engine_runs (run_id, kind, status, summary, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Kind, run.Status, run.Summary, run.Error, run.StartedAt, run.FinishedAt,
	)
	return err
}

// List returns runs newest first. An empty kind lists every kind.
func (r *engineRunRepository) List(ctx context.Context, kind domain.RunKind, params domain.PaginationParams) ([]domain.EngineRun, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM engine_runs WHERE ($1 = '' OR kind = $1)`
	if err := r.db.GetContext(ctx, &total, countQuery, kind); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT run_id, kind, status, summary, error, started_at, finished_at
		FROM engine_runs
		WHERE ($1 = '' OR kind = $1)
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3`

	runs := []domain.EngineRun{}
	err := r.db.SelectContext(ctx, &runs, query, kind, params.PageSize, params.Offset())
	return runs, total, err
}
