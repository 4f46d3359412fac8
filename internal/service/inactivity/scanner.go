// Package inactivity finds chats and fundraisers that crossed an inactivity
// threshold and emits one notification per entity, kind and day.
package inactivity

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/repository"
	"crm-engagement/internal/service/dedup"
	"crm-engagement/internal/service/emitter"
	"crm-engagement/internal/service/window"
)

// Scanner runs the threshold scans. An entity inactive for ten days still
// matches the 2-day scan; the guard keeps it from being re-notified.
type Scanner struct {
	chatRepo repository.ChatRepository
	guard    dedup.Guard
	emitter  emitter.Emitter
	log      logrus.FieldLogger
}

func NewScanner(chatRepo repository.ChatRepository, guard dedup.Guard, em emitter.Emitter, log logrus.FieldLogger) *Scanner {
	return &Scanner{
		chatRepo: chatRepo,
		guard:    guard,
		emitter:  em,
		log:      log,
	}
}

// Scan runs one (variant, threshold) query and returns how many
// notifications were written. A failed query aborts the scan; failures on
// single candidates are logged and skipped.
func (s *Scanner) Scan(ctx context.Context, variant domain.EntityVariant, days int, th window.Thresholds) (int, error) {
	threshold, ok := th.For(days)
	if !ok {
		return 0, fmt.Errorf("%w: %d days", emitter.ErrUnknownThreshold, days)
	}
	kind, ok := domain.InactivityType(variant, days)
	if !ok {
		return 0, fmt.Errorf("%w: %s/%d days", emitter.ErrUnknownThreshold, variant, days)
	}

	chats, err := s.chatRepo.FindInactiveSince(ctx, threshold, variant.IsGold())
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", kind, err)
	}

	log := s.log.WithFields(logrus.Fields{"kind": kind, "candidates": len(chats)})
	generated := 0

	for _, chat := range chats {
		if err := ctx.Err(); err != nil {
			return generated, err
		}

		exists, err := s.guard.Exists(ctx, chat.ID, kind, th.Now)
		if err != nil {
			log.WithField("chat_id", chat.ID).WithError(err).Warn("dedup check failed, skipping chat")
			continue
		}
		if exists {
			continue
		}

		emitted, err := s.emitter.EmitInactivity(ctx, chat, days, th.Now)
		if err != nil {
			log.WithField("chat_id", chat.ID).WithError(err).Warn("failed to emit notification, skipping chat")
			continue
		}
		if emitted {
			generated++
		}
	}

	log.WithField("generated", generated).Debug("inactivity scan complete")
	return generated, nil
}

// ScanVariant runs the 2-day then the 5-day scan for one variant. Both are
// attempted even if the first fails; errors are joined.
func (s *Scanner) ScanVariant(ctx context.Context, variant domain.EntityVariant, th window.Thresholds) (domain.ScanSummary, error) {
	var summary domain.ScanSummary
	var errs []error

	two, err := s.Scan(ctx, variant, window.TwoDayThreshold, th)
	if err != nil {
		errs = append(errs, err)
	}
	summary.TwoDayCount = two

	five, err := s.Scan(ctx, variant, window.FiveDayThreshold, th)
	if err != nil {
		errs = append(errs, err)
	}
	summary.FiveDayCount = five

	summary.TotalGenerated = summary.TwoDayCount + summary.FiveDayCount
	return summary, errors.Join(errs...)
}
