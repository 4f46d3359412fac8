// Package dedup answers whether an inactivity notification was already
// created for a chat today.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/repository"
	"crm-engagement/internal/service/window"
)

type Guard interface {
	// Exists is true iff a notification for (chatID, kind) was created at
	// or after the start of the calendar day containing now.
	Exists(ctx context.Context, chatID uuid.UUID, kind domain.NotificationType, now time.Time) (bool, error)
}

type guard struct {
	notifRepo repository.NotificationRepository
	loc       *time.Location
}

func NewGuard(notifRepo repository.NotificationRepository, loc *time.Location) Guard {
	if loc == nil {
		loc = time.UTC
	}
	return &guard{notifRepo: notifRepo, loc: loc}
}

func (g *guard) Exists(ctx context.Context, chatID uuid.UUID, kind domain.NotificationType, now time.Time) (bool, error) {
	since := window.StartOfDay(now, g.loc)
	count, err := g.notifRepo.CountForChatSince(ctx, chatID, kind, since)
	if err != nil {
		return false, fmt.Errorf("check existing %s for chat %s: %w", kind, chatID, err)
	}
	return count > 0, nil
}
