package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crm-engagement/internal/ratelimit"
)

// RateLimit throttles per route and caller. Authenticated requests are
// keyed by user id, anonymous ones by client IP. A store error lets the
// request through.
func RateLimit(store ratelimit.Store, scope string, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := c.IP()
		if userID := GetCurrentUserID(c); userID != uuid.Nil {
			identity = userID.String()
		}

		allowed, err := store.Allow(c.UserContext(), ratelimit.Key(scope, identity))
		if err != nil {
			log.WithError(err).WithField("scope", scope).Warn("rate limit store unavailable")
			return c.Next()
		}
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, "60")
			return TooManyRequests("Too many requests")
		}

		return c.Next()
	}
}
