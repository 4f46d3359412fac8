// Package emitter builds notification records and persists them.
package emitter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/pkg/messages"
	"crm-engagement/internal/repository"
	"crm-engagement/internal/service/window"
)

var ErrUnknownThreshold = errors.New("no notification kind for threshold")

type Emitter interface {
	// EmitInactivity writes one inactivity notification for chat. emitted is
	// false when the store already holds one for the same chat, kind and day.
	EmitInactivity(ctx context.Context, chat domain.Chat, days int, now time.Time) (emitted bool, err error)
	// EmitReminder writes the due-soon notification for a reminder.
	// chatName is used for entity-linked reminders and may be empty.
	EmitReminder(ctx context.Context, reminder domain.Reminder, chatName string, now time.Time) (*domain.Notification, error)
}

type emitter struct {
	notifRepo repository.NotificationRepository
	catalog   *messages.Catalog
	locale    string
	loc       *time.Location
}

func NewEmitter(notifRepo repository.NotificationRepository, catalog *messages.Catalog, locale string, loc *time.Location) Emitter {
	if catalog == nil {
		catalog = messages.Default()
	}
	if locale == "" {
		locale = messages.DefaultLocale
	}
	if loc == nil {
		loc = time.UTC
	}
	return &emitter{
		notifRepo: notifRepo,
		catalog:   catalog,
		locale:    locale,
		loc:       loc,
	}
}

func (e *emitter) EmitInactivity(ctx context.Context, chat domain.Chat, days int, now time.Time) (bool, error) {
	kind, ok := domain.InactivityType(chat.Variant(), days)
	if !ok {
		return false, fmt.Errorf("%w: %d days", ErrUnknownThreshold, days)
	}

	title, message := e.catalog.Render(e.locale, kind, messages.Vars{
		"name": chat.Name,
		"days": strconv.Itoa(days),
	})

	chatID := chat.ID
	lastActivity := chat.LastActivity
	daysInactive := days

	notif := &domain.Notification{
		ID:           uuid.New(),
		ChatID:       &chatID,
		UserID:       chat.UserID,
		Type:         kind,
		Title:        title,
		Message:      message,
		DaysInactive: &daysInactive,
		LastActivity: &lastActivity,
		IsRead:       false,
		IsSent:       false,
		DedupDay:     window.StartOfDay(now, e.loc),
	}

	inserted, err := e.notifRepo.Create(ctx, notif)
	if err != nil {
		return false, fmt.Errorf("insert %s notification for chat %s: %w", kind, chat.ID, err)
	}
	return inserted, nil
}

func (e *emitter) EmitReminder(ctx context.Context, reminder domain.Reminder, chatName string, now time.Time) (*domain.Notification, error) {
	kind := domain.NotifUserReminder
	if reminder.ChatID != nil {
		kind = domain.NotifChatReminder
	}

	title, message := e.catalog.Render(e.locale, kind, messages.Vars{
		"title":   reminder.Title,
		"message": reminder.Message,
		"minutes": strconv.Itoa(window.MinutesUntil(now, reminder.ReminderTime)),
		"name":    chatName,
	})

	notif := &domain.Notification{
		ID:       uuid.New(),
		ChatID:   reminder.ChatID,
		UserID:   reminder.UserID,
		Type:     kind,
		Title:    title,
		Message:  message,
		IsRead:   false,
		IsSent:   false,
		DedupDay: window.StartOfDay(now, e.loc),
	}

	if _, err := e.notifRepo.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("insert %s notification for reminder %s: %w", kind, reminder.ID, err)
	}
	return notif, nil
}
