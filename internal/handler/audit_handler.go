package handler

import (
	"github.com/gofiber/fiber/v2"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/middleware"
	"crm-engagement/internal/service/audit"
)

type AuditHandler struct {
	auditService audit.Service
}

func NewAuditHandler(auditService audit.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListRuns returns recorded engine passes, newest first. ?kind= filters by
// full, reminders or sweep.
func (h *AuditHandler) ListRuns(c *fiber.Ctx) error {
	kind := domain.RunKind(c.Query("kind"))
	switch kind {
	case "", domain.RunKindFull, domain.RunKindReminders, domain.RunKindSweep:
	default:
		return middleware.BadRequest("Unknown run kind")
	}

	runs, err := h.auditService.ListRuns(c.UserContext(), kind, getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.JSON(runs)
}
