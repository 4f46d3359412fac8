package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Chat         ChatRepository
	Notification NotificationRepository
	Reminder     ReminderRepository
	User         UserRepository
	EngineRun    EngineRunRepository
	Stats        StatsRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Chat:         NewChatRepository(db),
		Notification: NewNotificationRepository(db),
		Reminder:     NewReminderRepository(db),
		User:         NewUserRepository(db),
		EngineRun:    NewEngineRunRepository(db),
		Stats:        NewStatsRepository(db),
	}
}
