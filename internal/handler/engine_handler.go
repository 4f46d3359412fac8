package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"crm-engagement/internal/middleware"
	"crm-engagement/internal/service/engine"
)

type EngineHandler struct {
	engine engine.Orchestrator
}

func NewEngineHandler(orchestrator engine.Orchestrator) *EngineHandler {
	return &EngineHandler{engine: orchestrator}
}

// RunFullPass runs the inactivity pass synchronously and returns its
// summary. Scan errors still produce a 200 with the errors listed.
func (h *EngineHandler) RunFullPass(c *fiber.Ctx) error {
	summary, err := h.engine.RunFullPass(c.UserContext())
	switch {
	case errors.Is(err, engine.ErrPassInProgress):
		return middleware.Conflict("A full pass is already running")
	case errors.Is(err, engine.ErrPartialPass):
		return c.JSON(summary)
	case err != nil:
		return err
	}
	return c.JSON(summary)
}

func (h *EngineHandler) RunReminderPass(c *fiber.Ctx) error {
	summary, err := h.engine.RunReminderPass(c.UserContext())
	if errors.Is(err, engine.ErrPassInProgress) {
		return middleware.Conflict("A reminder pass is already running")
	}
	if err != nil {
		return err
	}
	return c.JSON(summary)
}
