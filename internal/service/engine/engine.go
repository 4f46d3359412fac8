// Package engine sequences the inactivity pass and the reminder pass.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/pkg/clock"
	"crm-engagement/internal/service/inactivity"
	"crm-engagement/internal/service/reminder"
	"crm-engagement/internal/service/retention"
	"crm-engagement/internal/service/window"
)

var (
	// ErrPassInProgress is returned when the same cadence is already running.
	ErrPassInProgress = errors.New("pass already in progress")
	// ErrPartialPass wraps scan failures. The summary is still valid.
	ErrPartialPass = errors.New("pass finished with scan errors")
)

type Orchestrator interface {
	// RunFullPass runs sweep, chat 2d, chat 5d, fundraiser 2d, fundraiser
	// 5d in that order. A failed sweep fails the run before any scan.
	RunFullPass(ctx context.Context) (*domain.RunSummary, error)
	RunReminderPass(ctx context.Context) (*domain.ReminderSummary, error)
	// Sweep runs only the retention step.
	Sweep(ctx context.Context) (*domain.CleanupSummary, error)
}

// RunRecorder stores the outcome of each pass. Recording failures are
// logged and never fail the pass.
type RunRecorder interface {
	Record(ctx context.Context, input domain.RecordRunInput) error
}

// Recorders fans one run out to several recorders.
type Recorders []RunRecorder

func (rs Recorders) Record(ctx context.Context, input domain.RecordRunInput) error {
	var errs []error
	for _, r := range rs {
		if err := r.Record(ctx, input); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type orchestrator struct {
	sweeper   *retention.Sweeper
	scanner   *inactivity.Scanner
	reminders reminder.Service
	recorder  RunRecorder
	clock     clock.Clock
	loc       *time.Location
	log       logrus.FieldLogger

	fullMu     sync.Mutex
	reminderMu sync.Mutex
}

func NewOrchestrator(
	sweeper *retention.Sweeper,
	scanner *inactivity.Scanner,
	reminders reminder.Service,
	recorder RunRecorder,
	clk clock.Clock,
	loc *time.Location,
	log logrus.FieldLogger,
) Orchestrator {
	if loc == nil {
		loc = time.UTC
	}
	return &orchestrator{
		sweeper:   sweeper,
		scanner:   scanner,
		reminders: reminders,
		recorder:  recorder,
		clock:     clk,
		loc:       loc,
		log:       log,
	}
}

func (o *orchestrator) RunFullPass(ctx context.Context) (*domain.RunSummary, error) {
	if !o.fullMu.TryLock() {
		return nil, ErrPassInProgress
	}
	defer o.fullMu.Unlock()

	now := o.clock.Now()
	th := window.NewThresholds(now, o.loc)
	summary := &domain.RunSummary{Timestamp: now}

	deleted, err := o.sweeper.Sweep(ctx, now)
	if err != nil {
		summary.Errors = append(summary.Errors, err.Error())
		o.log.WithError(err).Error("full pass failed at retention sweep")
		o.record(ctx, domain.RunKindFull, domain.RunStatusFailed, now, summary, err)
		return summary, fmt.Errorf("retention sweep: %w", err)
	}
	summary.Cleanup.DeletedCount = deleted

	var scanErrs []error

	chats, err := o.scanner.ScanVariant(ctx, domain.VariantChat, th)
	summary.ChatNotifications = chats
	if err != nil {
		scanErrs = append(scanErrs, err)
	}

	fundraisers, err := o.scanner.ScanVariant(ctx, domain.VariantFundraiser, th)
	summary.FundraiserNotifications = fundraisers
	if err != nil {
		scanErrs = append(scanErrs, err)
	}

	for _, e := range scanErrs {
		summary.Errors = append(summary.Errors, e.Error())
	}

	log := o.log.WithFields(logrus.Fields{
		"deleted":         summary.Cleanup.DeletedCount,
		"chat_2d":         summary.ChatNotifications.TwoDayCount,
		"chat_5d":         summary.ChatNotifications.FiveDayCount,
		"fundraiser_2d":   summary.FundraiserNotifications.TwoDayCount,
		"fundraiser_5d":   summary.FundraiserNotifications.FiveDayCount,
		"total_generated": summary.TotalGenerated(),
	})

	if len(scanErrs) > 0 {
		joined := errors.Join(scanErrs...)
		log.WithError(joined).Warn("full pass complete with errors")
		o.record(ctx, domain.RunKindFull, domain.RunStatusPartial, now, summary, joined)
		return summary, fmt.Errorf("%w: %w", ErrPartialPass, joined)
	}
	log.Info("full pass complete")
	o.record(ctx, domain.RunKindFull, domain.RunStatusOK, now, summary, nil)
	return summary, nil
}

func (o *orchestrator) RunReminderPass(ctx context.Context) (*domain.ReminderSummary, error) {
	if !o.reminderMu.TryLock() {
		return nil, ErrPassInProgress
	}
	defer o.reminderMu.Unlock()

	started := o.clock.Now()
	summary, err := o.reminders.ProcessDue(ctx)
	if err != nil {
		o.record(ctx, domain.RunKindReminders, domain.RunStatusFailed, started, summary, err)
		return summary, err
	}
	o.record(ctx, domain.RunKindReminders, domain.RunStatusOK, started, summary, nil)
	return summary, nil
}

func (o *orchestrator) Sweep(ctx context.Context) (*domain.CleanupSummary, error) {
	if !o.fullMu.TryLock() {
		return nil, ErrPassInProgress
	}
	defer o.fullMu.Unlock()

	started := o.clock.Now()
	deleted, err := o.sweeper.Sweep(ctx, started)
	if err != nil {
		o.record(ctx, domain.RunKindSweep, domain.RunStatusFailed, started, nil, err)
		return nil, err
	}
	summary := &domain.CleanupSummary{DeletedCount: deleted}
	o.record(ctx, domain.RunKindSweep, domain.RunStatusOK, started, summary, nil)
	return summary, nil
}

func (o *orchestrator) record(ctx context.Context, kind domain.RunKind, status domain.RunStatus, started time.Time, summary interface{}, runErr error) {
	if o.recorder == nil {
		return
	}
	err := o.recorder.Record(ctx, domain.RecordRunInput{
		Kind:      kind,
		Status:    status,
		StartedAt: started,
		Summary:   summary,
		Err:       runErr,
	})
	if err != nil {
		o.log.WithError(err).WithField("kind", kind).Warn("failed to record engine run")
	}
}
