package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"crm-engagement/internal/domain"
)

type ChatRepository struct {
	mock.Mock
}

func (m *ChatRepository) FindInactiveSince(ctx context.Context, threshold time.Time, isGold bool) ([]domain.Chat, error) {
	args := m.Called(ctx, threshold, isGold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chat), args.Error(1)
}

func (m *ChatRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *ChatRepository) TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}
