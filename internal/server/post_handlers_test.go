package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agora/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetThreadPosts(t *testing.T) {
	app, deps := newTestApp(t)
	threadID := uuid.New()

	deps.threads.getByIDFn = func(_ context.Context, id uuid.UUID) (*models.Thread, error) {
		return &models.Thread{ID: id}, nil
	}
	deps.posts.listByThreadFn = func(_ context.Context, id uuid.UUID, limit, offset int) ([]models.Post, error) {
		assert.Equal(t, threadID, id)
		return []models.Post{{ID: uuid.New(), Content: "first"}}, nil
	}
	deps.posts.countByThreadFn = func(_ context.Context, _ uuid.UUID) (int64, error) {
		return 1, nil
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/threads/%s/posts", threadID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Len(t, body["posts"].([]any), 1)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["count"])
}

func TestGetThreadPosts_UnknownThread(t *testing.T) {
	app, deps := newTestApp(t)

	deps.threads.getByIDFn = func(_ context.Context, _ uuid.UUID) (*models.Thread, error) {
		return nil, models.NewNotFoundError("Thread")
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/threads/%s/posts", uuid.New()), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreatePost(t *testing.T) {
	app, deps := newTestApp(t)
	userID := uuid.New()
	threadID := uuid.New()

	deps.threads.getByIDFn = func(_ context.Context, id uuid.UUID) (*models.Thread, error) {
		return &models.Thread{ID: id}, nil
	}
	deps.posts.createFn = func(_ context.Context, post *models.Post) error {
		assert.Equal(t, threadID, post.ThreadID)
		assert.Equal(t, userID, post.CreatedBy)
		post.ID = uuid.New()
		return nil
	}
	deps.posts.getByIDFn = func(_ context.Context, id uuid.UUID) (*models.Post, error) {
		return &models.Post{ID: id, ThreadID: threadID, Content: "welcome aboard"}, nil
	}

	payload := fmt.Sprintf(`{"threadId":%q,"content":"welcome aboard"}`, threadID)
	req := authedRequest(t, http.MethodPost, "/api/posts", strings.NewReader(payload), userID)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreatePost_LockedThread(t *testing.T) {
	app, deps := newTestApp(t)

	deps.threads.getByIDFn = func(_ context.Context, id uuid.UUID) (*models.Thread, error) {
		return &models.Thread{ID: id, IsLocked: true}, nil
	}

	payload := fmt.Sprintf(`{"threadId":%q,"content":"too late"}`, uuid.New())
	req := authedRequest(t, http.MethodPost, "/api/posts", strings.NewReader(payload), uuid.New())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUpdatePost_NotAuthor(t *testing.T) {
	app, deps := newTestApp(t)

	deps.posts.getByIDFn = func(_ context.Context, id uuid.UUID) (*models.Post, error) {
		return &models.Post{ID: id, CreatedBy: uuid.New()}, nil
	}

	payload := `{"content":"edited"}`
	req := authedRequest(t, http.MethodPatch, "/api/posts/"+uuid.NewString(),
		strings.NewReader(payload), uuid.New())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeletePost(t *testing.T) {
	app, deps := newTestApp(t)
	userID := uuid.New()
	postID := uuid.New()
	deleted := false

	deps.posts.getByIDFn = func(_ context.Context, id uuid.UUID) (*models.Post, error) {
		return &models.Post{ID: id, CreatedBy: userID}, nil
	}
	deps.posts.deleteFn = func(_ context.Context, post *models.Post) error {
		assert.Equal(t, postID, post.ID)
		deleted = true
		return nil
	}

	req := authedRequest(t, http.MethodDelete, "/api/posts/"+postID.String(), nil, userID)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, deleted)
}
