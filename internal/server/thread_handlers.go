package server

import (
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetThreads handles GET /api/threads?page&limit&sort&search.
func (s *Server) GetThreads(c *fiber.Ctx) error {
	return s.listThreads(c, nil)
}

// GetTopicThreads handles GET /api/topics/:id/threads?page&limit&sort.
func (s *Server) GetTopicThreads(c *fiber.Ctx) error {
	topicID, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}
	return s.listThreads(c, &topicID)
}

func (s *Server) listThreads(c *fiber.Ctx, topicID *uuid.UUID) error {
	pg := parsePagination(c)

	page, err := s.threadService.ListThreads(c.Context(), service.ListThreadsInput{
		TopicID: topicID,
		Search:  c.Query("search"),
		Sort:    c.Query("sort"),
		Page:    pg.Page,
		Limit:   pg.Limit,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, "threads", page.Threads, page.Page, page.Limit, page.Count)
}

// GetThread handles GET /api/threads/:id. Every successful read bumps the
// thread's view counter.
func (s *Server) GetThread(c *fiber.Ctx) error {
	threadID, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}

	thread, err := s.threadService.GetThread(c.Context(), threadID, true)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, "thread", thread)
}

// CreateThread handles POST /api/threads/new.
func (s *Server) CreateThread(c *fiber.Ctx) error {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("authentication required"))
	}

	var req struct {
		TopicID uuid.UUID `json:"topicId"`
		Title   string    `json:"title"`
	}
	if err := decodeStrictJSON(c, &req); err != nil {
		return models.RespondWithAppError(c, err)
	}
	if req.TopicID == uuid.Nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("topicId is required"))
	}

	thread, err := s.threadService.CreateThread(c.Context(), service.CreateThreadInput{
		CallerID: userID,
		TopicID:  req.TopicID,
		Title:    req.Title,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusCreated, "thread", thread)
}

// UpdateThread handles PATCH /api/threads/:id (creator only).
func (s *Server) UpdateThread(c *fiber.Ctx) error {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("authentication required"))
	}
	threadID, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title    *string `json:"title"`
		IsLocked *bool   `json:"isLocked"`
	}
	if err := decodeStrictJSON(c, &req); err != nil {
		return models.RespondWithAppError(c, err)
	}

	thread, err := s.threadService.UpdateThread(c.Context(), service.UpdateThreadInput{
		CallerID: userID,
		ThreadID: threadID,
		Title:    req.Title,
		IsLocked: req.IsLocked,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, "thread", thread)
}

// DeleteThread handles DELETE /api/threads/:id (creator only). The
// thread's posts go with it.
func (s *Server) DeleteThread(c *fiber.Ctx) error {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("authentication required"))
	}
	threadID, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.threadService.DeleteThread(c.Context(), userID, threadID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
