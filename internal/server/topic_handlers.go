package server

import (
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTopics handles GET /api/topics. Topics are a small set; the full
// list is returned alphabetically without pagination.
func (s *Server) GetTopics(c *fiber.Ctx) error {
	topics, err := s.topicService.ListTopics(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, "topics", topics)
}

// CreateTopic handles POST /api/topics.
func (s *Server) CreateTopic(c *fiber.Ctx) error {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("authentication required"))
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeStrictJSON(c, &req); err != nil {
		return models.RespondWithAppError(c, err)
	}

	topic, err := s.topicService.CreateTopic(c.Context(), service.CreateTopicInput{
		CallerID:    userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusCreated, "topic", topic)
}

// UpdateTopic handles PATCH /api/topics/:id (creator only).
func (s *Server) UpdateTopic(c *fiber.Ctx) error {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("authentication required"))
	}
	topicID, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeStrictJSON(c, &req); err != nil {
		return models.RespondWithAppError(c, err)
	}

	topic, err := s.topicService.UpdateTopic(c.Context(), service.UpdateTopicInput{
		CallerID:    userID,
		TopicID:     topicID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, "topic", topic)
}

// DeleteTopic handles DELETE /api/topics/:id (creator only).
func (s *Server) DeleteTopic(c *fiber.Ctx) error {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("authentication required"))
	}
	topicID, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.topicService.DeleteTopic(c.Context(), userID, topicID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
