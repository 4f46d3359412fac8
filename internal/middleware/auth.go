package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	UserIDContextKey = "user_id"
	RoleContextKey   = "role"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are issued by the account service; the engine only verifies them.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return Unauthorized("Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return Unauthorized("Invalid authorization header format")
		}

		claims, err := ParseToken(parts[1], secret)
		if err != nil {
			return Unauthorized("Invalid or expired token")
		}

		c.Locals(UserIDContextKey, claims.UserID)
		c.Locals(RoleContextKey, claims.Role)

		return c.Next()
	}
}

func GetCurrentUserID(c *fiber.Ctx) uuid.UUID {
	userID, ok := c.Locals(UserIDContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

func GetCurrentUserRole(c *fiber.Ctx) string {
	role, _ := c.Locals(RoleContextKey).(string)
	return role
}

// GetUserID is GetCurrentUserID for handlers that must reject anonymous
// callers.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userID := GetCurrentUserID(c)
	if userID == uuid.Nil {
		return uuid.Nil, Unauthorized("User not found")
	}
	return userID, nil
}
