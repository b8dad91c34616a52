package server

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetStats handles GET /api/stats, returning forum-wide totals.
func (s *Server) GetStats(c *fiber.Ctx) error {
	totals, err := s.statsRepo.Totals(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, "stats", totals)
}

// GetUserStats handles GET /api/stats/:userId, returning per-user
// contribution counters.
func (s *Server) GetUserStats(c *fiber.Ctx) error {
	userID, err := parseUUID(c, "userId")
	if err != nil {
		return nil
	}

	stats, err := s.statsRepo.UserStats(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, "stats", stats)
}
