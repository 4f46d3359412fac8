package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"crm-engagement/internal/domain"
)

type ReminderRepository struct {
	mock.Mock
}

func (m *ReminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

func (m *ReminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reminder), args.Error(1)
}

func (m *ReminderRepository) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Reminder, int64, error) {
	args := m.Called(ctx, userID, params)
	return args.Get(0).([]domain.Reminder), args.Get(1).(int64), args.Error(2)
}

func (m *ReminderRepository) FindDue(ctx context.Context, windowStart, windowEnd time.Time) ([]domain.Reminder, error) {
	args := m.Called(ctx, windowStart, windowEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reminder), args.Error(1)
}

func (m *ReminderRepository) Update(ctx context.Context, id uuid.UUID, update domain.ReminderUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *ReminderRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
