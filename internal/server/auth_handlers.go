package server

import (
	"errors"

	"agora/internal/auth"
	"agora/internal/middleware"
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GoogleCallback handles GET /api/auth/google/callback?code=...
// It exchanges the authorization code, resolves the identity to a local
// account (creating it on first sign-in), sets the session cookie, and
// redirects to the frontend.
func (s *Server) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("missing authorization code"))
	}

	identity, err := s.google.Resolve(c.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrCodeExchange):
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("authorization code exchange failed"))
		case errors.Is(err, auth.ErrIdentityRejected):
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("identity verification failed"))
		default:
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
	}

	// Signup kill switch: when flipped off, only existing accounts may
	// still sign in.
	if s.featureFlags.Disabled("signups") {
		existing, err := s.userRepo.GetByEmail(c.Context(), identity.Email)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		if existing == nil {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("new signups are currently disabled"))
		}
	}

	user, isNew, err := s.identityService.ResolveGoogleIdentity(c.Context(), identity)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	token, err := auth.IssueSession(s.config.JWTSecret, user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	c.Cookie(auth.SessionCookie(token, s.config.IsProduction()))
	middleware.Logger.InfoContext(c.UserContext(), "session issued",
		"user_id", user.ID.String(), "new_account", isNew)

	// New accounts land on profile setup, returning ones go home.
	target := s.config.FrontendURL + "/home"
	if isNew {
		target = s.config.FrontendURL + "/user-details"
	}
	return c.Redirect(target, fiber.StatusFound)
}

// Logout handles POST /api/auth/logout by expiring the session cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(auth.ClearSessionCookie(s.config.IsProduction()))
	return c.JSON(fiber.Map{"success": true})
}
