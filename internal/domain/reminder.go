package domain

import (
	"time"

	"github.com/google/uuid"
)

type Reminder struct {
	ID                uuid.UUID          `json:"id" db:"reminder_id"`
	UserID            uuid.UUID          `json:"user_id" db:"user_id"`
	ChatID            *uuid.UUID         `json:"chat_id,omitempty" db:"chat_id"`
	Title             string             `json:"title" db:"title"`
	Message           string             `json:"message" db:"message"`
	ReminderTime      time.Time          `json:"reminder_time" db:"reminder_time"`
	IsRecurring       bool               `json:"is_recurring" db:"is_recurring"`
	RecurrencePattern *RecurrencePattern `json:"recurrence_pattern,omitempty" db:"recurrence_pattern"`
	IsActive          bool               `json:"is_active" db:"is_active"`
	IsSent            bool               `json:"is_sent" db:"is_sent"`
	SentAt            *time.Time         `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`
}

type RecurrencePattern string

const (
	RecurDaily   RecurrencePattern = "daily"
	RecurWeekly  RecurrencePattern = "weekly"
	RecurMonthly RecurrencePattern = "monthly"
	RecurYearly  RecurrencePattern = "yearly"
)

func (p RecurrencePattern) Valid() bool {
	switch p {
	case RecurDaily, RecurWeekly, RecurMonthly, RecurYearly:
		return true
	}
	return false
}

type ReminderState string

const (
	ReminderPending  ReminderState = "PENDING"
	ReminderSent     ReminderState = "SENT"
	ReminderInactive ReminderState = "INACTIVE"
)

func (r *Reminder) State() ReminderState {
	switch {
	case !r.IsActive:
		return ReminderInactive
	case r.IsSent:
		return ReminderSent
	default:
		return ReminderPending
	}
}

// ReminderUpdate is a partial update; nil fields are left untouched.
// ClearSentAt wins over SentAt.
type ReminderUpdate struct {
	ReminderTime *time.Time
	IsSent       *bool
	SentAt       *time.Time
	ClearSentAt  bool
	IsActive     *bool
}

type CreateReminderInput struct {
	ChatID            *uuid.UUID         `json:"chat_id,omitempty"`
	Title             string             `json:"title"`
	Message           string             `json:"message"`
	ReminderTime      time.Time          `json:"reminder_time"`
	IsRecurring       bool               `json:"is_recurring"`
	RecurrencePattern *RecurrencePattern `json:"recurrence_pattern,omitempty"`
}
