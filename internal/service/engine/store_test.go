package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/repository"
)

// memStore is an in-memory entity store with the same uniqueness rule as
// the notifications table.
type memStore struct {
	mu            sync.Mutex
	now           func() time.Time
	chats         map[uuid.UUID]domain.Chat
	notifications []domain.Notification
	reminders     map[uuid.UUID]domain.Reminder

	failFind   map[bool]map[time.Time]error
	failDelete error
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		now:       now,
		chats:     map[uuid.UUID]domain.Chat{},
		reminders: map[uuid.UUID]domain.Reminder{},
		failFind:  map[bool]map[time.Time]error{},
	}
}

func (s *memStore) addChat(name string, inactiveFor time.Duration, gold bool) domain.Chat {
	c := domain.Chat{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Name:         name,
		LastActivity: s.now().Add(-inactiveFor),
		IsGold:       gold,
	}
	s.chats[c.ID] = c
	return c
}

func (s *memStore) byType(kind domain.NotificationType) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for _, n := range s.notifications {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

type chatRepo struct{ *memStore }

func (r chatRepo) FindInactiveSince(_ context.Context, threshold time.Time, isGold bool) ([]domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failFind[isGold][threshold]; err != nil {
		return nil, err
	}
	var out []domain.Chat
	for _, c := range r.chats {
		if c.LastActivity.Before(threshold) && c.IsGold == isGold {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivity.Before(out[j].LastActivity) })
	return out, nil
}

func (r chatRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r chatRepo) TouchActivity(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	if !ok {
		return false, nil
	}
	if at.After(c.LastActivity) {
		c.LastActivity = at
	}
	c.MessageCount++
	r.chats[id] = c
	return true, nil
}

type notifRepo struct {
	*memStore
	repository.NotificationRepository
}

func (r notifRepo) Create(_ context.Context, n *domain.Notification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.Type.IsInactivity() {
		for _, existing := range r.notifications {
			if existing.Type == n.Type && existing.ChatID != nil && n.ChatID != nil &&
				*existing.ChatID == *n.ChatID && existing.DedupDay.Equal(n.DedupDay) {
				return false, nil
			}
		}
	}
	n.CreatedAt = r.now()
	r.notifications = append(r.notifications, *n)
	return true, nil
}

func (r notifRepo) CountForChatSince(_ context.Context, chatID uuid.UUID, kind domain.NotificationType, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifications {
		if n.ChatID != nil && *n.ChatID == chatID && n.Type == kind && !n.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r notifRepo) DeleteCreatedBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDelete != nil {
		return 0, r.failDelete
	}
	kept := r.notifications[:0]
	var deleted int64
	for _, n := range r.notifications {
		if n.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.notifications = kept
	return deleted, nil
}

type reminderRepo struct {
	*memStore
	repository.ReminderRepository
}

func (r reminderRepo) FindDue(_ context.Context, start, end time.Time) ([]domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Reminder
	for _, rem := range r.reminders {
		if rem.IsActive && !rem.IsSent && !rem.ReminderTime.Before(start) && !rem.ReminderTime.After(end) {
			out = append(out, rem)
		}
	}
	return out, nil
}

func (r reminderRepo) Update(_ context.Context, id uuid.UUID, u domain.ReminderUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[id]
	if !ok {
		return errors.New("no such reminder")
	}
	if u.ReminderTime != nil {
		rem.ReminderTime = *u.ReminderTime
	}
	if u.IsSent != nil {
		rem.IsSent = *u.IsSent
	}
	if u.ClearSentAt {
		rem.SentAt = nil
	} else if u.SentAt != nil {
		at := *u.SentAt
		rem.SentAt = &at
	}
	if u.IsActive != nil {
		rem.IsActive = *u.IsActive
	}
	r.reminders[id] = rem
	return nil
}
