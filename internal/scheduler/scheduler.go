// Package scheduler drives the engine's cadences from in-process timers:
// a daily full pass, a frequent reminder pass and the delivery batches.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/service/engine"
)

// Config controls the cadences. A zero interval disables that loop.
type Config struct {
	DailyHour        int
	DailyMinute      int
	Location         *time.Location
	ReminderInterval time.Duration
	DispatchInterval time.Duration
	RunOnStart       bool
}

// Dispatcher is satisfied by *delivery.Dispatcher.
type Dispatcher interface {
	DispatchBatch(ctx context.Context) (*domain.DispatchSummary, error)
}

type Scheduler struct {
	engine     engine.Orchestrator
	dispatcher Dispatcher
	cfg        Config
	log        logrus.FieldLogger
	now        func() time.Time
}

// New builds a scheduler. dispatcher may be nil.
func New(orchestrator engine.Orchestrator, dispatcher Dispatcher, cfg Config, log logrus.FieldLogger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scheduler{
		engine:     orchestrator,
		dispatcher: dispatcher,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// Start launches every configured loop and blocks until ctx is cancelled.
// Intended to be called with `go`.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.WithFields(logrus.Fields{
		"daily_at": time.Date(0, 1, 1, s.cfg.DailyHour, s.cfg.DailyMinute, 0, 0, s.cfg.Location).Format("15:04 MST"),
		"reminder": s.cfg.ReminderInterval.String(),
		"dispatch": s.cfg.DispatchInterval.String(),
	}).Info("scheduler started")

	if s.cfg.RunOnStart {
		s.runFull(ctx)
		s.runReminders(ctx)
	}

	go s.dailyLoop(ctx)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if s.cfg.ReminderInterval > 0 {
		t := time.NewTicker(s.cfg.ReminderInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { s.runReminders(ctx) })
	}

	if s.cfg.DispatchInterval > 0 && s.dispatcher != nil {
		t := time.NewTicker(s.cfg.DispatchInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { s.runDispatch(ctx) })
	}

	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) dailyLoop(ctx context.Context) {
	for {
		next := NextDailyRun(s.now(), s.cfg.DailyHour, s.cfg.DailyMinute, s.cfg.Location)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			s.runFull(ctx)
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// NextDailyRun returns the first hour:minute in loc strictly after now.
func NextDailyRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

func (s *Scheduler) runFull(ctx context.Context) {
	summary, err := s.engine.RunFullPass(ctx)
	switch {
	case errors.Is(err, engine.ErrPassInProgress):
		s.log.Warn("full pass skipped, previous run still in progress")
	case errors.Is(err, engine.ErrPartialPass):
		// already logged by the orchestrator
	case err != nil:
		s.log.WithError(err).Error("full pass failed, retrying on next tick")
	default:
		s.log.WithField("summary", summary.String()).Debug("scheduled full pass")
	}
}

func (s *Scheduler) runReminders(ctx context.Context) {
	_, err := s.engine.RunReminderPass(ctx)
	switch {
	case errors.Is(err, engine.ErrPassInProgress):
		s.log.Warn("reminder pass skipped, previous run still in progress")
	case err != nil:
		s.log.WithError(err).Error("reminder pass failed")
	}
}

func (s *Scheduler) runDispatch(ctx context.Context) {
	if _, err := s.dispatcher.DispatchBatch(ctx); err != nil {
		s.log.WithError(err).Error("dispatch error")
	}
}
