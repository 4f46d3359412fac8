package domain

import "time"

// EngagementStats is the admin overview of what the next full pass would
// find and what is waiting for delivery.
type EngagementStats struct {
	InactiveChats2Days       int64      `json:"inactive_chats_2days" db:"inactive_chats_2days"`
	InactiveChats5Days       int64      `json:"inactive_chats_5days" db:"inactive_chats_5days"`
	InactiveFundraisers2Days int64      `json:"inactive_fundraisers_2days" db:"inactive_fundraisers_2days"`
	InactiveFundraisers5Days int64      `json:"inactive_fundraisers_5days" db:"inactive_fundraisers_5days"`
	UnsentNotifications      int64      `json:"unsent_notifications" db:"unsent_notifications"`
	ActiveReminders          int64      `json:"active_reminders" db:"active_reminders"`
	LastFullRun              *EngineRun `json:"last_full_run,omitempty" db:"-"`
	GeneratedAt              time.Time  `json:"generated_at" db:"-"`
}
