package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/middleware"
	"crm-engagement/internal/service/reminder"
)

type ReminderHandler struct {
	reminderService reminder.Service
}

func NewReminderHandler(reminderService reminder.Service) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

func (h *ReminderHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var input domain.CreateReminderInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	created, err := h.reminderService.Create(c.UserContext(), userID, input)
	if err != nil {
		return reminderError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *ReminderHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "reminder")
	if err != nil {
		return err
	}

	found, err := h.reminderService.GetByID(c.UserContext(), userID, id)
	if err != nil {
		return reminderError(err)
	}

	return c.JSON(fiber.Map{
		"reminder": found,
		"state":    found.State(),
	})
}

func (h *ReminderHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	result, err := h.reminderService.List(c.UserContext(), userID, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *ReminderHandler) Deactivate(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "reminder")
	if err != nil {
		return err
	}

	if err := h.reminderService.Deactivate(c.UserContext(), userID, id); err != nil {
		return reminderError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ReminderHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "reminder")
	if err != nil {
		return err
	}

	if err := h.reminderService.Delete(c.UserContext(), userID, id); err != nil {
		return reminderError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func reminderError(err error) error {
	switch {
	case errors.Is(err, reminder.ErrReminderNotFound):
		return middleware.NotFound("Reminder not found")
	case errors.Is(err, reminder.ErrForbidden):
		return middleware.Forbidden("You can only access your own reminders")
	case errors.Is(err, reminder.ErrInvalidReminder), errors.Is(err, reminder.ErrInvalidRecurrence):
		return middleware.BadRequest(err.Error())
	}
	return err
}
