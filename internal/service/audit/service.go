// Package audit keeps the history of engine passes.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/pkg/clock"
	"crm-engagement/internal/repository"
)

type Service interface {
	Record(ctx context.Context, input domain.RecordRunInput) error
	ListRuns(ctx context.Context, kind domain.RunKind, params domain.PaginationParams) (domain.PaginatedResponse[domain.EngineRun], error)
}

type service struct {
	runRepo repository.EngineRunRepository
	clock   clock.Clock
}

func NewService(runRepo repository.EngineRunRepository, clk clock.Clock) Service {
	return &service{
		runRepo: runRepo,
		clock:   clk,
	}
}

func (s *service) Record(ctx context.Context, input domain.RecordRunInput) error {
	run := &domain.EngineRun{
		ID:         uuid.New(),
		Kind:       input.Kind,
		Status:     input.Status,
		StartedAt:  input.StartedAt,
		FinishedAt: s.clock.Now(),
	}

	if input.Summary != nil {
		summary, err := json.Marshal(input.Summary)
		if err != nil {
			return fmt.Errorf("encode %s run summary: %w", input.Kind, err)
		}
		run.Summary = summary
	}
	if input.Err != nil {
		msg := input.Err.Error()
		run.Error = &msg
	}

	return s.runRepo.Create(ctx, run)
}

func (s *service) ListRuns(ctx context.Context, kind domain.RunKind, params domain.PaginationParams) (domain.PaginatedResponse[domain.EngineRun], error) {
	params.Validate()

	runs, total, err := s.runRepo.List(ctx, kind, params)
	if err != nil {
		return domain.PaginatedResponse[domain.EngineRun]{}, err
	}
	return domain.NewPaginatedResponse(runs, params.Page, params.PageSize, total), nil
}
