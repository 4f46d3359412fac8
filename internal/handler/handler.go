package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/middleware"
	"crm-engagement/internal/service"
)

type Handlers struct {
	Notification *NotificationHandler
	Reminder     *ReminderHandler
	Activity     *ActivityHandler
	Engine       *EngineHandler
	Audit        *AuditHandler
	Dashboard    *DashboardHandler
	Health       *HealthHandler
}

func NewHandlers(services *service.Services, health *HealthHandler) *Handlers {
	return &Handlers{
		Notification: NewNotificationHandler(services.Notification),
		Reminder:     NewReminderHandler(services.Reminder),
		Activity:     NewActivityHandler(services.Activity),
		Engine:       NewEngineHandler(services.Engine),
		Audit:        NewAuditHandler(services.Audit),
		Dashboard:    NewDashboardHandler(services.Dashboard),
		Health:       health,
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", 20); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()
	return params
}

func parseIDParam(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid " + label + " ID")
	}
	return id, nil
}
