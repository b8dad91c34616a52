package server

import (
	"strings"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetMe handles GET /api/user/me, returning the caller's private profile.
func (s *Server) GetMe(c *fiber.Ctx) error {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("authentication required"))
	}

	user, err := s.userService.GetMe(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, "user", user)
}

// GetUserDetails handles GET /api/user/details/:username. The email field
// is included only when the caller is viewing their own profile.
func (s *Server) GetUserDetails(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Params("username"))
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("username is required"))
	}

	var viewer *uuid.UUID
	if id, ok := middleware.AuthedUserID(c); ok {
		viewer = &id
	}

	profile, isOwn, err := s.userService.GetProfileByUsername(c.Context(), username, viewer)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":      true,
		"isOwnProfile": isOwn,
		"user":         profile,
	})
}

// UpdateMyProfile handles PATCH /api/user/me. The body is decoded
// strictly so unknown fields are rejected rather than dropped.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("authentication required"))
	}

	var in service.UpdateProfileInput
	if err := decodeStrictJSON(c, &in); err != nil {
		return models.RespondWithAppError(c, err)
	}

	user, err := s.userService.UpdateProfile(c.Context(), userID, in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, "user", user)
}

// DeleteMyAccount handles DELETE /api/user/me.
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("authentication required"))
	}

	if err := s.userService.DeleteAccount(c.Context(), userID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
