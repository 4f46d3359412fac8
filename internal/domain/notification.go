package domain

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID           uuid.UUID        `json:"id" db:"notification_id"`
	ChatID       *uuid.UUID       `json:"chat_id,omitempty" db:"chat_id"`
	UserID       uuid.UUID        `json:"user_id" db:"user_id"`
	Type         NotificationType `json:"type" db:"type"`
	Title        string           `json:"title" db:"title"`
	Message      string           `json:"message" db:"message"`
	DaysInactive *int             `json:"days_inactive,omitempty" db:"days_inactive"`
	LastActivity *time.Time       `json:"last_activity,omitempty" db:"last_activity"`
	IsRead       bool             `json:"is_read" db:"is_read"`
	IsSent       bool             `json:"is_sent" db:"is_sent"`
	DedupDay     time.Time        `json:"-" db:"dedup_day"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	// DeliveryFailedAt is set when the one delivery attempt failed. Such
	// rows are never picked up by the dispatcher again.
	DeliveryFailedAt *time.Time `json:"delivery_failed_at,omitempty" db:"delivery_failed_at"`
}

type NotificationType string

// The 5-day kinds keep their historical "4days" labels; stored rows depend on them.
const (
	NotifChatInactive2Days       NotificationType = "chat_inactive_2days"
	NotifChatInactive5Days       NotificationType = "chat_inactive_4days"
	NotifFundraiserInactive2Days NotificationType = "fundraiser_inactive_2days"
	NotifFundraiserInactive5Days NotificationType = "fundraiser_inactive_4days"
	NotifChatReminder            NotificationType = "chat_reminder"
	NotifUserReminder            NotificationType = "user_reminder"
	NotifSystemAlert             NotificationType = "system_alert"
	NotifStatusUpdate            NotificationType = "status_update"
)

var notificationTypes = map[NotificationType]struct{}{
	NotifChatInactive2Days:       {},
	NotifChatInactive5Days:       {},
	NotifFundraiserInactive2Days: {},
	NotifFundraiserInactive5Days: {},
	NotifChatReminder:            {},
	NotifUserReminder:            {},
	NotifSystemAlert:             {},
	NotifStatusUpdate:            {},
}

func (t NotificationType) Valid() bool {
	_, ok := notificationTypes[t]
	return ok
}

// IsInactivity reports whether the kind is produced by the inactivity scans
// and therefore subject to the one-per-entity-per-day rule.
func (t NotificationType) IsInactivity() bool {
	switch t {
	case NotifChatInactive2Days, NotifChatInactive5Days,
		NotifFundraiserInactive2Days, NotifFundraiserInactive5Days:
		return true
	}
	return false
}

// InactivityType returns the notification kind for an entity variant and
// threshold in days. ok is false for thresholds other than 2 and 5.
func InactivityType(variant EntityVariant, days int) (NotificationType, bool) {
	switch {
	case variant == VariantChat && days == 2:
		return NotifChatInactive2Days, true
	case variant == VariantChat && days == 5:
		return NotifChatInactive5Days, true
	case variant == VariantFundraiser && days == 2:
		return NotifFundraiserInactive2Days, true
	case variant == VariantFundraiser && days == 5:
		return NotifFundraiserInactive5Days, true
	}
	return "", false
}

type NotificationFilter struct {
	UnreadOnly bool
}
