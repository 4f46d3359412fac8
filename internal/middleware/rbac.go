package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"crm-engagement/internal/domain"
)

func RequireRole(requiredRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetCurrentUserID(c) == uuid.Nil {
			return Unauthorized("User not found")
		}

		if GetCurrentUserRole(c) != requiredRole {
			return Forbidden("Insufficient permissions for this operation")
		}

		return c.Next()
	}
}

func IsAdmin(c *fiber.Ctx) bool {
	return GetCurrentUserRole(c) == domain.RoleAdmin
}
