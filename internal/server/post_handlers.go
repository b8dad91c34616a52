package server

import (
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetThreadPosts handles GET /api/threads/:id/posts?page&limit. Posts are
// returned oldest first.
func (s *Server) GetThreadPosts(c *fiber.Ctx) error {
	threadID, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}
	pg := parsePagination(c)

	page, err := s.postService.ListPosts(c.Context(), threadID, pg.Page, pg.Limit)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, "posts", page.Posts, page.Page, page.Limit, page.Count)
}

// GetPost handles GET /api/posts/:id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, "post", post)
}

// CreatePost handles POST /api/posts.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("authentication required"))
	}

	var req struct {
		ThreadID uuid.UUID `json:"threadId"`
		Content  string    `json:"content"`
	}
	if err := decodeStrictJSON(c, &req); err != nil {
		return models.RespondWithAppError(c, err)
	}
	if req.ThreadID == uuid.Nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("threadId is required"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		CallerID: userID,
		ThreadID: req.ThreadID,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusCreated, "post", post)
}

// UpdatePost handles PATCH /api/posts/:id (author only).
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("authentication required"))
	}
	postID, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeStrictJSON(c, &req); err != nil {
		return models.RespondWithAppError(c, err)
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		CallerID: userID,
		PostID:   postID,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, "post", post)
}

// DeletePost handles DELETE /api/posts/:id (author only). The author's
// post counter is decremented in the same transaction.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("authentication required"))
	}
	postID, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), userID, postID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
