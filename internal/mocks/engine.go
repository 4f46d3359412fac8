package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"crm-engagement/internal/domain"
)

type Guard struct {
	mock.Mock
}

func (m *Guard) Exists(ctx context.Context, chatID uuid.UUID, kind domain.NotificationType, now time.Time) (bool, error) {
	args := m.Called(ctx, chatID, kind, now)
	return args.Bool(0), args.Error(1)
}

type Emitter struct {
	mock.Mock
}

func (m *Emitter) EmitInactivity(ctx context.Context, chat domain.Chat, days int, now time.Time) (bool, error) {
	args := m.Called(ctx, chat, days, now)
	return args.Bool(0), args.Error(1)
}

func (m *Emitter) EmitReminder(ctx context.Context, reminder domain.Reminder, chatName string, now time.Time) (*domain.Notification, error) {
	args := m.Called(ctx, reminder, chatName, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

type Archiver struct {
	mock.Mock
}

func (m *Archiver) Archive(ctx context.Context, notifications []domain.Notification, at time.Time) (string, error) {
	args := m.Called(ctx, notifications, at)
	return args.String(0), args.Error(1)
}

type Orchestrator struct {
	mock.Mock
}

func (m *Orchestrator) RunFullPass(ctx context.Context) (*domain.RunSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RunSummary), args.Error(1)
}

func (m *Orchestrator) RunReminderPass(ctx context.Context) (*domain.ReminderSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReminderSummary), args.Error(1)
}

func (m *Orchestrator) Sweep(ctx context.Context) (*domain.CleanupSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CleanupSummary), args.Error(1)
}
