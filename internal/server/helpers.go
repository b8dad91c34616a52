package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) so
// Fiber's ErrorHandler does not overwrite the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed page/limit query parameters. Page is 1-based.
type Pagination struct {
	Page  int
	Limit int
}

// parsePagination extracts page and limit query parameters. Bounds are
// applied again in the service layer; this only protects against absurd
// raw values reaching it.
func parsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		limit = 0
	}
	return Pagination{Page: page, Limit: limit}
}

// parseUUID extracts a route parameter as a UUID. On failure it writes a
// 400 JSON response and returns errResponseWritten; callers should check:
// if err != nil { return nil }.
func parseUUID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid "+humanizeParam(param)))
		return uuid.Nil, errResponseWritten
	}
	return id, nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		return strings.ToLower(param[:len(param)-2]) + " ID"
	}
	return param
}

// decodeStrictJSON decodes the request body into dst, rejecting unknown
// fields and trailing content. Partial-update endpoints rely on this so a
// misspelled field name fails loudly instead of being silently ignored.
func decodeStrictJSON(c *fiber.Ctx, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return models.NewValidationError("invalid request body: " + err.Error())
	}
	if dec.More() {
		return models.NewValidationError("invalid request body: trailing content")
	}
	return nil
}

// respond wraps a payload in the standard success envelope under the
// given key.
func respond(c *fiber.Ctx, status int, key string, payload any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		key:       payload,
	})
}

// respondPage wraps one listing page in the success envelope with its
// pagination block.
func respondPage(c *fiber.Ctx, key string, items any, page, limit int, count int64) error {
	return c.JSON(fiber.Map{
		"success": true,
		key:       items,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"count": count,
		},
	})
}
