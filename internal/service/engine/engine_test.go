package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/service/dedup"
	"crm-engagement/internal/service/emitter"
	"crm-engagement/internal/service/inactivity"
	"crm-engagement/internal/service/reminder"
	"crm-engagement/internal/service/retention"
	"crm-engagement/internal/service/window"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

type runLog struct{ runs []domain.RecordRunInput }

func (l *runLog) Record(_ context.Context, input domain.RecordRunInput) error {
	l.runs = append(l.runs, input)
	return nil
}

type harness struct {
	clock *testClock
	store *memStore
	runs  *runLog
	orch  *orchestrator
}

func newHarness(t *testing.T, start time.Time) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	clk := &testClock{t: start}
	store := newMemStore(clk.Now)

	chats := chatRepo{store}
	notifs := notifRepo{memStore: store}
	reminders := reminderRepo{memStore: store}

	em := emitter.NewEmitter(notifs, nil, "", time.UTC)
	scanner := inactivity.NewScanner(chats, dedup.NewGuard(notifs, time.UTC), em, logger)
	sweeper := retention.NewSweeper(notifs, nil, time.UTC, logger)
	remSvc := reminder.NewService(reminders, chats, em, clk, time.UTC, logger)

	runs := &runLog{}
	orch := NewOrchestrator(sweeper, scanner, remSvc, runs, clk, time.UTC, logger).(*orchestrator)
	return &harness{clock: clk, store: store, runs: runs, orch: orch}
}

var start = time.Date(2026, 6, 15, 0, 5, 0, 0, time.UTC)

func TestRunFullPass_ChatInactiveThreeDays(t *testing.T) {
	h := newHarness(t, start)
	chat := h.store.addChat("Acme", 3*24*time.Hour, false)

	summary, err := h.orch.RunFullPass(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.ChatNotifications.TwoDayCount)
	assert.Equal(t, 0, summary.ChatNotifications.FiveDayCount)

	two := h.store.byType(domain.NotifChatInactive2Days)
	require.Len(t, two, 1)
	assert.Equal(t, chat.ID, *two[0].ChatID)
	assert.Equal(t, 2, *two[0].DaysInactive)
	assert.Empty(t, h.store.byType(domain.NotifChatInactive5Days))
}

func TestRunFullPass_SecondPassGeneratesNothing(t *testing.T) {
	h := newHarness(t, start)
	h.store.addChat("three days", 3*24*time.Hour, false)
	h.store.addChat("six days", 6*24*time.Hour, false)
	h.store.addChat("gold six days", 6*24*time.Hour, true)
	h.store.addChat("active", time.Hour, false)

	first, err := h.orch.RunFullPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, first.TotalGenerated())
	assert.Equal(t, 2, first.ChatNotifications.TwoDayCount)
	assert.Equal(t, 1, first.ChatNotifications.FiveDayCount)
	assert.Equal(t, 1, first.FundraiserNotifications.TwoDayCount)
	assert.Equal(t, 1, first.FundraiserNotifications.FiveDayCount)

	h.clock.t = start.Add(3 * time.Hour)
	second, err := h.orch.RunFullPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.TotalGenerated())
	assert.Equal(t, int64(0), second.Cleanup.DeletedCount)
}

func TestRunFullPass_TwoAndFiveDayKindsCoexist(t *testing.T) {
	h := newHarness(t, start)
	chat := h.store.addChat("quiet", 7*24*time.Hour, false)

	_, err := h.orch.RunFullPass(context.Background())
	require.NoError(t, err)

	two := h.store.byType(domain.NotifChatInactive2Days)
	five := h.store.byType(domain.NotifChatInactive5Days)
	require.Len(t, two, 1)
	require.Len(t, five, 1)
	assert.Equal(t, chat.ID, *two[0].ChatID)
	assert.Equal(t, chat.ID, *five[0].ChatID)
	assert.Equal(t, 5, *five[0].DaysInactive)
}

func TestRunFullPass_NextDaySweepsAndRenotifies(t *testing.T) {
	h := newHarness(t, start)
	h.store.addChat("quiet", 3*24*time.Hour, false)

	_, err := h.orch.RunFullPass(context.Background())
	require.NoError(t, err)

	h.clock.t = start.Add(24 * time.Hour)
	summary, err := h.orch.RunFullPass(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Cleanup.DeletedCount)
	assert.Equal(t, 1, summary.ChatNotifications.TwoDayCount)
	assert.Len(t, h.store.byType(domain.NotifChatInactive2Days), 1)
}

func TestRunFullPass_SweepBoundary(t *testing.T) {
	h := newHarness(t, start)
	dayStart := window.StartOfDay(start, time.UTC)

	h.store.notifications = []domain.Notification{
		{ID: uuid.New(), Type: domain.NotifSystemAlert, CreatedAt: dayStart.Add(-time.Nanosecond)},
		{ID: uuid.New(), Type: domain.NotifSystemAlert, CreatedAt: dayStart},
		{ID: uuid.New(), Type: domain.NotifStatusUpdate, CreatedAt: dayStart.Add(-48 * time.Hour)},
	}

	summary, err := h.orch.RunFullPass(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Cleanup.DeletedCount)
	require.Len(t, h.store.notifications, 1)
	assert.True(t, h.store.notifications[0].CreatedAt.Equal(dayStart))
}

func TestRunFullPass_SweepFailureFailsRun(t *testing.T) {
	h := newHarness(t, start)
	h.store.addChat("quiet", 3*24*time.Hour, false)
	h.store.failDelete = errors.New("lock timeout")

	summary, err := h.orch.RunFullPass(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPartialPass)
	require.NotNil(t, summary)
	assert.Len(t, summary.Errors, 1)
	assert.Empty(t, h.store.notifications)

	require.Len(t, h.runs.runs, 1)
	assert.Equal(t, domain.RunStatusFailed, h.runs.runs[0].Status)
	assert.EqualError(t, h.runs.runs[0].Err, "lock timeout")
}

func TestRunFullPass_ScanFailureIsPartial(t *testing.T) {
	h := newHarness(t, start)
	h.store.addChat("gold", 3*24*time.Hour, true)
	th := window.NewThresholds(start, time.UTC)
	h.store.failFind[false] = map[time.Time]error{th.TwoDay: errors.New("connection reset")}

	summary, err := h.orch.RunFullPass(context.Background())

	assert.ErrorIs(t, err, ErrPartialPass)
	require.NotNil(t, summary)
	assert.Len(t, summary.Errors, 1)
	assert.Equal(t, 1, summary.FundraiserNotifications.TwoDayCount)

	require.Len(t, h.runs.runs, 1)
	assert.Equal(t, domain.RunKindFull, h.runs.runs[0].Kind)
	assert.Equal(t, domain.RunStatusPartial, h.runs.runs[0].Status)
	assert.Same(t, summary, h.runs.runs[0].Summary)
}

func TestRunFullPass_RejectsOverlappingRun(t *testing.T) {
	h := newHarness(t, start)
	h.orch.fullMu.Lock()
	defer h.orch.fullMu.Unlock()

	_, err := h.orch.RunFullPass(context.Background())

	assert.ErrorIs(t, err, ErrPassInProgress)
	assert.Empty(t, h.runs.runs, "rejected passes are not recorded")
}

func TestSweep_RecordsRun(t *testing.T) {
	h := newHarness(t, start)

	summary, err := h.orch.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.DeletedCount)
	require.Len(t, h.runs.runs, 1)
	assert.Equal(t, domain.RunKindSweep, h.runs.runs[0].Kind)
	assert.Equal(t, domain.RunStatusOK, h.runs.runs[0].Status)
	assert.Equal(t, start, h.runs.runs[0].StartedAt)
}

func TestRunReminderPass_WeeklyReminder(t *testing.T) {
	h := newHarness(t, start)
	weekly := domain.RecurWeekly
	r := domain.Reminder{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		Title:             "Pipeline review",
		ReminderTime:      start.Add(time.Minute),
		IsRecurring:       true,
		RecurrencePattern: &weekly,
		IsActive:          true,
	}
	h.store.reminders[r.ID] = r

	summary, err := h.orch.RunReminderPass(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Fired)
	assert.Equal(t, 1, summary.Recurred)
	require.Len(t, h.store.byType(domain.NotifUserReminder), 1)

	updated := h.store.reminders[r.ID]
	assert.True(t, r.ReminderTime.AddDate(0, 0, 7).Equal(updated.ReminderTime))
	assert.False(t, updated.IsSent)
	assert.Nil(t, updated.SentAt)

	again, err := h.orch.RunReminderPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Found)
}

func TestRunReminderPass_OneShotFiresOnce(t *testing.T) {
	h := newHarness(t, start)
	r := domain.Reminder{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Title:        "Send contract",
		ReminderTime: start.Add(3 * time.Minute),
		IsActive:     true,
	}
	h.store.reminders[r.ID] = r

	first, err := h.orch.RunReminderPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Fired)

	h.clock.t = start.Add(time.Minute)
	second, err := h.orch.RunReminderPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Fired)

	updated := h.store.reminders[r.ID]
	assert.True(t, updated.IsSent)
	require.NotNil(t, updated.SentAt)
	assert.True(t, start.Equal(*updated.SentAt))
	assert.Len(t, h.store.byType(domain.NotifUserReminder), 1)
}

func TestRunReminderPass_InactiveNeverFires(t *testing.T) {
	h := newHarness(t, start)
	r := domain.Reminder{ID: uuid.New(), ReminderTime: start.Add(time.Minute), IsActive: false}
	h.store.reminders[r.ID] = r

	summary, err := h.orch.RunReminderPass(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Found)
	assert.Empty(t, h.store.notifications)
}

type orderedRecorder struct {
	name  string
	calls *[]string
	err   error
}

func (r orderedRecorder) Record(context.Context, domain.RecordRunInput) error {
	*r.calls = append(*r.calls, r.name)
	return r.err
}

func TestRecorders_CallsEveryRecorderInOrder(t *testing.T) {
	var calls []string
	rs := Recorders{
		orderedRecorder{name: "audit", calls: &calls, err: errors.New("insert failed")},
		orderedRecorder{name: "dashboard", calls: &calls},
	}

	err := rs.Record(context.Background(), domain.RecordRunInput{Kind: domain.RunKindFull})

	assert.EqualError(t, err, "insert failed")
	assert.Equal(t, []string{"audit", "dashboard"}, calls)
}
