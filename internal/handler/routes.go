package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/middleware"
	"crm-engagement/internal/ratelimit"
)

type RouteConfig struct {
	JWTSecret string
	// EngineLimiter throttles the manual engine triggers.
	EngineLimiter ratelimit.Store
	Log           logrus.FieldLogger
}

func SetupRoutes(app *fiber.App, h *Handlers, cfg RouteConfig) {
	app.Get("/health", h.Health.Check)

	v1 := app.Group("/api/v1")
	protected := v1.Group("", middleware.AuthRequired(cfg.JWTSecret))

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Post("/read-all", h.Notification.MarkAllAsRead)
	notifications.Post("/:id/read", h.Notification.MarkAsRead)
	notifications.Delete("/:id", middleware.RequireRole(domain.RoleAdmin), h.Notification.Delete)

	reminders := protected.Group("/reminders")
	reminders.Post("/", h.Reminder.Create)
	reminders.Get("/", h.Reminder.List)
	reminders.Get("/:id", h.Reminder.Get)
	reminders.Post("/:id/deactivate", h.Reminder.Deactivate)
	reminders.Delete("/:id", h.Reminder.Delete)

	protected.Post("/chats/:id/activity", h.Activity.Touch)

	engine := protected.Group("/engine", middleware.RequireRole(domain.RoleAdmin))
	if cfg.EngineLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.EngineLimiter, "engine", cfg.Log))
	}
	engine.Post("/run", h.Engine.RunFullPass)
	engine.Post("/reminders/run", h.Engine.RunReminderPass)
	engine.Get("/runs", h.Audit.ListRuns)
	engine.Get("/stats", h.Dashboard.GetStats)
}
