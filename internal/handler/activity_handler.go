package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"crm-engagement/internal/middleware"
	"crm-engagement/internal/service/activity"
)

type ActivityHandler struct {
	activityService activity.Service
}

func NewActivityHandler(activityService activity.Service) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// Touch is called by the messaging path whenever a chat sees traffic.
func (h *ActivityHandler) Touch(c *fiber.Ctx) error {
	chatID, err := parseIDParam(c, "id", "chat")
	if err != nil {
		return err
	}

	if err := h.activityService.Touch(c.UserContext(), chatID); err != nil {
		if errors.Is(err, activity.ErrChatNotFound) {
			return middleware.NotFound("Chat not found")
		}
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
