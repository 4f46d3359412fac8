package reminder

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/service/window"
)

// ProcessDue emits one notification per reminder due within the next five
// minutes, then either re-arms it (recurring) or marks it sent. Emission
// happens before the state change, so a failed emission leaves the
// reminder pending for the next pass.
func (s *service) ProcessDue(ctx context.Context) (*domain.ReminderSummary, error) {
	now := s.clock.Now()
	due := window.DueSoonWindow(now)
	summary := &domain.ReminderSummary{Timestamp: now}

	reminders, err := s.reminderRepo.FindDue(ctx, due.Start, due.End)
	if err != nil {
		return summary, fmt.Errorf("find due reminders: %w", err)
	}
	summary.Found = len(reminders)

	for _, r := range reminders {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		log := s.log.WithField("reminder_id", r.ID)

		var update domain.ReminderUpdate
		if r.IsRecurring {
			pattern := domain.RecurrencePattern("")
			if r.RecurrencePattern != nil {
				pattern = *r.RecurrencePattern
			}
			next, err := NextOccurrence(r.ReminderTime, pattern, s.loc)
			if err != nil {
				log.WithError(err).Warn("skipping recurring reminder")
				summary.Skipped++
				continue
			}
			notSent := false
			update = domain.ReminderUpdate{ReminderTime: &next, IsSent: &notSent, ClearSentAt: true}
		} else {
			sent := true
			sentAt := now
			update = domain.ReminderUpdate{IsSent: &sent, SentAt: &sentAt}
		}

		if _, err := s.emitter.EmitReminder(ctx, r, s.chatName(ctx, r, log), now); err != nil {
			log.WithError(err).Warn("failed to emit reminder notification")
			summary.Failed++
			continue
		}
		summary.Fired++

		if err := s.reminderRepo.Update(ctx, r.ID, update); err != nil {
			log.WithError(err).Error("reminder fired but state update failed")
			summary.Failed++
			continue
		}
		if r.IsRecurring {
			summary.Recurred++
		}
	}

	s.log.WithFields(logrus.Fields{
		"found":    summary.Found,
		"fired":    summary.Fired,
		"recurred": summary.Recurred,
		"skipped":  summary.Skipped,
		"failed":   summary.Failed,
	}).Info("reminder pass complete")

	return summary, nil
}

func (s *service) chatName(ctx context.Context, r domain.Reminder, log logrus.FieldLogger) string {
	if r.ChatID == nil {
		return ""
	}
	chat, err := s.chatRepo.GetByID(ctx, *r.ChatID)
	if err != nil {
		log.WithError(err).Debug("chat lookup failed, rendering without name")
		return ""
	}
	if chat == nil {
		return ""
	}
	return chat.Name
}
