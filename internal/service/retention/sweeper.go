// Package retention deletes notifications that were not created today.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"crm-engagement/internal/repository"
	"crm-engagement/internal/service/archive"
	"crm-engagement/internal/service/window"
)

type Sweeper struct {
	notifRepo repository.NotificationRepository
	archiver  archive.Archiver
	loc       *time.Location
	log       logrus.FieldLogger
}

// NewSweeper builds a sweeper. archiver may be nil, in which case rows are
// deleted without a copy.
func NewSweeper(notifRepo repository.NotificationRepository, archiver archive.Archiver, loc *time.Location, log logrus.FieldLogger) *Sweeper {
	if loc == nil {
		loc = time.UTC
	}
	return &Sweeper{notifRepo: notifRepo, archiver: archiver, loc: loc, log: log}
}

// Cutoff is the start of the calendar day containing now.
func (s *Sweeper) Cutoff(now time.Time) time.Time {
	return window.StartOfDay(now, s.loc)
}

// Sweep removes every notification created before Cutoff(now) and returns
// the number deleted. When archiving is enabled a failed upload aborts the
// sweep before anything is deleted.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int64, error) {
	cutoff := s.Cutoff(now)
	log := s.log.WithField("cutoff", cutoff.Format(time.RFC3339))

	if s.archiver != nil {
		expired, err := s.notifRepo.ListCreatedBefore(ctx, cutoff)
		if err != nil {
			return 0, fmt.Errorf("list expired notifications: %w", err)
		}
		key, err := s.archiver.Archive(ctx, expired, now)
		if err != nil {
			return 0, fmt.Errorf("archive expired notifications: %w", err)
		}
		if key != "" {
			log.WithFields(logrus.Fields{"object": key, "count": len(expired)}).Info("archived expired notifications")
		}
	}

	deleted, err := s.notifRepo.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired notifications: %w", err)
	}

	log.WithField("deleted", deleted).Info("retention sweep complete")
	return deleted, nil
}
