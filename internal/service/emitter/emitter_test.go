package emitter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/mocks"
)

var now = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func TestEmitInactivity(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.NotificationRepository)
	em := NewEmitter(repo, nil, "", time.UTC)

	chat := domain.Chat{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Name:         "Acme",
		LastActivity: now.Add(-3 * 24 * time.Hour),
	}

	var saved *domain.Notification
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.Notification)
	}).Return(true, nil).Once()

	emitted, err := em.EmitInactivity(ctx, chat, 2, now)

	require.NoError(t, err)
	assert.True(t, emitted)
	require.NotNil(t, saved)
	assert.Equal(t, domain.NotifChatInactive2Days, saved.Type)
	assert.Equal(t, chat.UserID, saved.UserID)
	assert.Equal(t, chat.ID, *saved.ChatID)
	assert.Equal(t, 2, *saved.DaysInactive)
	assert.True(t, chat.LastActivity.Equal(*saved.LastActivity))
	assert.False(t, saved.IsRead)
	assert.False(t, saved.IsSent)
	assert.True(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC).Equal(saved.DedupDay))
	assert.Contains(t, saved.Message, "Acme")
}

func TestEmitInactivity_FundraiserFiveDaysUsesLegacyLabel(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.NotificationRepository)
	em := NewEmitter(repo, nil, "", time.UTC)

	chat := domain.Chat{ID: uuid.New(), IsGold: true, LastActivity: now.Add(-6 * 24 * time.Hour)}

	repo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Type == domain.NotificationType("fundraiser_inactive_4days") && *n.DaysInactive == 5
	})).Return(true, nil).Once()

	emitted, err := em.EmitInactivity(ctx, chat, 5, now)

	require.NoError(t, err)
	assert.True(t, emitted)
	repo.AssertExpectations(t)
}

func TestEmitInactivity_DuplicateIgnored(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.NotificationRepository)
	em := NewEmitter(repo, nil, "", time.UTC)

	repo.On("Create", ctx, mock.Anything).Return(false, nil).Once()

	emitted, err := em.EmitInactivity(ctx, domain.Chat{ID: uuid.New()}, 2, now)

	require.NoError(t, err)
	assert.False(t, emitted)
}

func TestEmitInactivity_Errors(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.NotificationRepository)
	em := NewEmitter(repo, nil, "", time.UTC)

	_, err := em.EmitInactivity(ctx, domain.Chat{ID: uuid.New()}, 3, now)
	assert.ErrorIs(t, err, ErrUnknownThreshold)

	repo.On("Create", ctx, mock.Anything).Return(false, errors.New("write failed")).Once()
	_, err = em.EmitInactivity(ctx, domain.Chat{ID: uuid.New()}, 2, now)
	assert.Error(t, err)
}

func TestEmitReminder(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.NotificationRepository)
	em := NewEmitter(repo, nil, "", time.UTC)

	t.Run("user reminder", func(t *testing.T) {
		r := domain.Reminder{
			ID:           uuid.New(),
			UserID:       uuid.New(),
			Title:        "Pay invoice",
			Message:      "Acme invoice #42",
			ReminderTime: now.Add(2*time.Minute + 10*time.Second),
		}
		repo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Type == domain.NotifUserReminder && n.ChatID == nil
		})).Return(true, nil).Once()

		n, err := em.EmitReminder(ctx, r, "", now)

		require.NoError(t, err)
		assert.Equal(t, "⏰ Due soon: Pay invoice", n.Title)
		assert.Contains(t, n.Message, "Acme invoice #42")
		assert.Contains(t, n.Message, "3 minute")
		assert.Nil(t, n.DaysInactive)
	})

	t.Run("chat reminder", func(t *testing.T) {
		chatID := uuid.New()
		r := domain.Reminder{ID: uuid.New(), UserID: uuid.New(), ChatID: &chatID, Title: "Follow up", ReminderTime: now.Add(time.Minute)}
		repo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Type == domain.NotifChatReminder && *n.ChatID == chatID
		})).Return(true, nil).Once()

		n, err := em.EmitReminder(ctx, r, "Acme", now)

		require.NoError(t, err)
		assert.Equal(t, domain.NotifChatReminder, n.Type)
	})

	repo.AssertExpectations(t)
}
