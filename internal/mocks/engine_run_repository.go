package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crm-engagement/internal/domain"
)

type EngineRunRepository struct {
	mock.Mock
}

func (m *EngineRunRepository) Create(ctx context.Context, run *domain.EngineRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *EngineRunRepository) List(ctx context.Context, kind domain.RunKind, params domain.PaginationParams) ([]domain.EngineRun, int64, error) {
	args := m.Called(ctx, kind, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.EngineRun), args.Get(1).(int64), args.Error(2)
}
