package middleware

import (
	"context"
	"strings"

	"agora/internal/auth"
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TokenFromRequest extracts the session token from the auth cookie or, as a
// fallback, from a Bearer Authorization header.
func TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(auth.CookieName); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// SetUserContext stores the authenticated user ID in fiber locals and the
// request context so logs and downstream calls can see it.
func SetUserContext(c *fiber.Ctx, userID uuid.UUID) {
	c.Locals("userID", userID)
	ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
	c.SetUserContext(ctx)
}

// AuthRequired rejects requests without a valid session token.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("authentication required"))
		}

		userID, err := auth.ParseSession(secret, token)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("invalid or expired session"))
		}

		SetUserContext(c, userID)
		return c.Next()
	}
}

// OptionalAuth attaches the user ID when a valid session token is present
// and lets the request through either way.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := TokenFromRequest(c); token != "" {
			if userID, err := auth.ParseSession(secret, token); err == nil {
				SetUserContext(c, userID)
			}
		}
		return c.Next()
	}
}

// AuthedUserID returns the authenticated user ID from fiber locals.
func AuthedUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals("userID").(uuid.UUID)
	return id, ok
}
