package delivery

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/mocks"
	"crm-engagement/internal/pkg/clock"
	"crm-engagement/internal/repository"
)

var now = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func TestDispatchBatch(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	notifs := new(mocks.NotificationRepository)
	users := new(mocks.UserRepository)
	channel := new(mocks.EmailService)

	ok := domain.Notification{ID: uuid.New(), UserID: uuid.New(), Title: "ok"}
	noEmail := domain.Notification{ID: uuid.New(), UserID: uuid.New()}
	bounced := domain.Notification{ID: uuid.New(), UserID: uuid.New()}

	okUser := &domain.Recipient{ID: ok.UserID, Email: "a@example.com", FullName: "A"}
	bouncedUser := &domain.Recipient{ID: bounced.UserID, Email: "b@example.com"}

	notifs.On("ListUnsent", ctx, 10).Return([]domain.Notification{ok, noEmail, bounced}, nil).Once()
	users.On("GetRecipient", ctx, ok.UserID).Return(okUser, nil).Once()
	users.On("GetRecipient", ctx, noEmail.UserID).Return(&domain.Recipient{ID: noEmail.UserID}, nil).Once()
	users.On("GetRecipient", ctx, bounced.UserID).Return(bouncedUser, nil).Once()
	channel.On("SendNotificationEmail", ctx, *okUser, ok).Return(nil).Once()
	channel.On("SendNotificationEmail", ctx, *bouncedUser, bounced).Return(errors.New("rejected")).Once()
	notifs.On("MarkSent", ctx, ok.ID).Return(nil).Once()
	notifs.On("MarkDeliveryFailed", ctx, noEmail.ID, now).Return(nil).Once()
	notifs.On("MarkDeliveryFailed", ctx, bounced.ID, now).Return(nil).Once()

	summary, err := NewDispatcher(notifs, users, channel, clock.Fixed(now), 10, logger).DispatchBatch(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 2, summary.Failed)
	notifs.AssertExpectations(t)
	notifs.AssertNotCalled(t, "MarkSent", ctx, bounced.ID)
	notifs.AssertNotCalled(t, "MarkDeliveryFailed", ctx, ok.ID, mock.Anything)
	channel.AssertExpectations(t)
}

func TestDispatchBatch_LookupErrorKeepsRowQueued(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	notifs := new(mocks.NotificationRepository)
	users := new(mocks.UserRepository)

	n := domain.Notification{ID: uuid.New(), UserID: uuid.New()}
	notifs.On("ListUnsent", ctx, 10).Return([]domain.Notification{n}, nil).Once()
	users.On("GetRecipient", ctx, n.UserID).Return(nil, errors.New("conn reset")).Once()

	summary, err := NewDispatcher(notifs, users, new(mocks.EmailService), clock.Fixed(now), 10, logger).DispatchBatch(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	notifs.AssertNotCalled(t, "MarkDeliveryFailed", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchBatch_LoadError(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	notifs := new(mocks.NotificationRepository)

	notifs.On("ListUnsent", ctx, DefaultBatchSize).Return(nil, errors.New("db down")).Once()

	_, err := NewDispatcher(notifs, new(mocks.UserRepository), new(mocks.EmailService), clock.Fixed(now), 0, logger).DispatchBatch(ctx)

	assert.Error(t, err)
	notifs.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
}

// queue mirrors the unsent-notification SQL: oldest first, skipping sent
// and failed rows.
type queue struct {
	repository.NotificationRepository
	rows map[uuid.UUID]*domain.Notification
}

func (q *queue) add(userID uuid.UUID, createdAt time.Time) uuid.UUID {
	n := &domain.Notification{ID: uuid.New(), UserID: userID, Title: "t", CreatedAt: createdAt}
	q.rows[n.ID] = n
	return n.ID
}

func (q *queue) ListUnsent(_ context.Context, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range q.rows {
		if !n.IsSent && n.DeliveryFailedAt == nil {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (q *queue) MarkSent(_ context.Context, id uuid.UUID) error {
	q.rows[id].IsSent = true
	return nil
}

func (q *queue) MarkDeliveryFailed(_ context.Context, id uuid.UUID, at time.Time) error {
	q.rows[id].DeliveryFailedAt = &at
	return nil
}

type recipients map[uuid.UUID]*domain.Recipient

func (r recipients) GetRecipient(_ context.Context, id uuid.UUID) (*domain.Recipient, error) {
	return r[id], nil
}

type outbox struct{ sent []uuid.UUID }

func (o *outbox) SendNotificationEmail(_ context.Context, _ domain.Recipient, n domain.Notification) error {
	o.sent = append(o.sent, n.ID)
	return nil
}

func TestDispatchBatch_UndeliverableRowsDoNotBlockQueue(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()

	q := &queue{rows: map[uuid.UUID]*domain.Notification{}}
	noAddress := uuid.New()
	reachable := uuid.New()
	users := recipients{
		noAddress: {ID: noAddress},
		reachable: {ID: reachable, Email: "r@example.com"},
	}

	first := q.add(noAddress, now.Add(-3*time.Hour))
	second := q.add(uuid.New(), now.Add(-2*time.Hour)) // user deleted
	deliverable := q.add(reachable, now.Add(-time.Hour))

	box := &outbox{}
	d := NewDispatcher(q, users, box, clock.Fixed(now), 2, logger)

	summary, err := d.DispatchBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Sent)
	assert.Equal(t, 2, summary.Failed)
	require.NotNil(t, q.rows[first].DeliveryFailedAt)
	require.NotNil(t, q.rows[second].DeliveryFailedAt)

	summary, err = d.DispatchBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, []uuid.UUID{deliverable}, box.sent)
	assert.True(t, q.rows[deliverable].IsSent)

	summary, err = d.DispatchBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Sent+summary.Failed, "failed rows are attempted once")
}
