// Package reminder manages user reminders and fires the ones that are due
// soon.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/pkg/clock"
	"crm-engagement/internal/repository"
	"crm-engagement/internal/service/emitter"
)

var (
	ErrReminderNotFound  = errors.New("reminder not found")
	ErrInvalidRecurrence = errors.New("invalid recurrence pattern")
	ErrInvalidReminder   = errors.New("invalid reminder")
	ErrForbidden         = errors.New("reminder belongs to another user")
)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input domain.CreateReminderInput) (*domain.Reminder, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Reminder, error)
	List(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Reminder], error)
	Deactivate(ctx context.Context, userID, id uuid.UUID) error
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// ProcessDue fires every pending reminder inside the due-soon window.
	ProcessDue(ctx context.Context) (*domain.ReminderSummary, error)
}

type service struct {
	reminderRepo repository.ReminderRepository
	chatRepo     repository.ChatRepository
	emitter      emitter.Emitter
	clock        clock.Clock
	loc          *time.Location
	log          logrus.FieldLogger
}

func NewService(
	reminderRepo repository.ReminderRepository,
	chatRepo repository.ChatRepository,
	em emitter.Emitter,
	clk clock.Clock,
	loc *time.Location,
	log logrus.FieldLogger,
) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		reminderRepo: reminderRepo,
		chatRepo:     chatRepo,
		emitter:      em,
		clock:        clk,
		loc:          loc,
		log:          log,
	}
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input domain.CreateReminderInput) (*domain.Reminder, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	reminder := &domain.Reminder{
		ID:           uuid.New(),
		UserID:       userID,
		ChatID:       input.ChatID,
		Title:        strings.TrimSpace(input.Title),
		Message:      input.Message,
		ReminderTime: input.ReminderTime,
		IsRecurring:  input.IsRecurring,
		IsActive:     true,
		IsSent:       false,
	}
	if input.IsRecurring {
		reminder.RecurrencePattern = input.RecurrencePattern
	}

	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return reminder, nil
}

func (s *service) validate(input domain.CreateReminderInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidReminder)
	}
	if input.ReminderTime.IsZero() {
		return fmt.Errorf("%w: reminder_time is required", ErrInvalidReminder)
	}
	if !input.ReminderTime.After(s.clock.Now()) {
		return fmt.Errorf("%w: reminder_time must be in the future", ErrInvalidReminder)
	}
	if input.IsRecurring {
		if input.RecurrencePattern == nil || !input.RecurrencePattern.Valid() {
			return fmt.Errorf("%w: recurring reminders need daily, weekly, monthly or yearly", ErrInvalidRecurrence)
		}
	} else if input.RecurrencePattern != nil {
		return fmt.Errorf("%w: pattern given for a one-shot reminder", ErrInvalidRecurrence)
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Reminder, error) {
	reminder, err := s.reminderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reminder == nil {
		return nil, ErrReminderNotFound
	}
	if reminder.UserID != userID {
		return nil, ErrForbidden
	}
	return reminder, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Reminder], error) {
	params.Validate()
	reminders, total, err := s.reminderRepo.ListByUser(ctx, userID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Reminder]{}, err
	}
	return domain.NewPaginatedResponse(reminders, params.Page, params.PageSize, total), nil
}

func (s *service) Deactivate(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, userID, id); err != nil {
		return err
	}
	inactive := false
	return s.reminderRepo.Update(ctx, id, domain.ReminderUpdate{IsActive: &inactive})
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, userID, id); err != nil {
		return err
	}
	deleted, err := s.reminderRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrReminderNotFound
	}
	return nil
}
