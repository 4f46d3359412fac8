package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"crm-engagement/internal/middleware"
	"crm-engagement/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	unreadOnly := c.QueryBool("unread_only", false)
	params := getPaginationParams(c)

	result, err := h.notifService.List(c.UserContext(), userID, unreadOnly, params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	count, err := h.notifService.GetUnreadCount(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count": count,
	})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	notifID, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	if err := h.notifService.MarkAsRead(c.UserContext(), userID, notifID); err != nil {
		return notificationError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	if err := h.notifService.MarkAllAsRead(c.UserContext(), userID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	notifID, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	if err := h.notifService.Delete(c.UserContext(), notifID); err != nil {
		return notificationError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func notificationError(err error) error {
	switch {
	case errors.Is(err, notification.ErrNotificationNotFound):
		return middleware.NotFound("Notification not found")
	case errors.Is(err, notification.ErrForbidden):
		return middleware.Forbidden("You can only access your own notifications")
	}
	return err
}
