package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"crm-engagement/internal/domain"
)

type StatsRepository struct {
	mock.Mock
}

func (m *StatsRepository) Engagement(ctx context.Context, twoDay, fiveDay time.Time) (*domain.EngagementStats, error) {
	args := m.Called(ctx, twoDay, fiveDay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EngagementStats), args.Error(1)
}
