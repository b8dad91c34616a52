package service

import (
	"context"
	"strings"
	"testing"

	"agora/internal/models"
	"agora/internal/observability"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePost(t *testing.T) {
	caller := uuid.New()
	threadID := uuid.New()
	postID := uuid.New()

	threads := &threadRepoStub{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.Thread, error) {
			return &models.Thread{ID: id}, nil
		},
	}
	posts := &postRepoStub{
		createFn: func(_ context.Context, post *models.Post) error {
			assert.Equal(t, threadID, post.ThreadID)
			assert.Equal(t, caller, post.CreatedBy)
			post.ID = postID
			return nil
		},
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.Post, error) {
			return &models.Post{ID: id, ThreadID: threadID, Content: "First!"}, nil
		},
	}
	svc := NewPostService(posts, threads)
	before := testutil.ToFloat64(observability.PostsCreated.WithLabelValues("opening"))

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		CallerID: caller,
		ThreadID: threadID,
		Content:  " First! ",
	})
	require.NoError(t, err)
	assert.Equal(t, postID, post.ID)

	after := testutil.ToFloat64(observability.PostsCreated.WithLabelValues("opening"))
	assert.Equal(t, before+1, after)
}

func TestPostService_CreatePost_LockedThread(t *testing.T) {
	threads := &threadRepoStub{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.Thread, error) {
			return &models.Thread{ID: id, IsLocked: true}, nil
		},
	}
	svc := NewPostService(&postRepoStub{}, threads)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		CallerID: uuid.New(),
		ThreadID: uuid.New(),
		Content:  "too late",
	})
	assertForbiddenError(t, err)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	svc := NewPostService(&postRepoStub{}, &threadRepoStub{})

	_, err := svc.CreatePost(context.Background(), CreatePostInput{Content: "   "})
	assertValidationError(t, err)

	_, err = svc.CreatePost(context.Background(), CreatePostInput{Content: strings.Repeat("x", 50001)})
	assertValidationError(t, err)
}

func TestPostService_ListPosts_UnknownThread(t *testing.T) {
	threads := &threadRepoStub{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*models.Thread, error) {
			return nil, models.NewNotFoundError("Thread")
		},
	}
	svc := NewPostService(&postRepoStub{}, threads)

	_, err := svc.ListPosts(context.Background(), uuid.New(), 1, 20)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestPostService_ListPosts(t *testing.T) {
	threadID := uuid.New()

	threads := &threadRepoStub{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.Thread, error) {
			return &models.Thread{ID: id}, nil
		},
	}
	posts := &postRepoStub{
		listByThreadFn: func(_ context.Context, id uuid.UUID, limit, offset int) ([]models.Post, error) {
			assert.Equal(t, threadID, id)
			assert.Equal(t, 20, limit)
			assert.Equal(t, 20, offset)
			return []models.Post{{ID: uuid.New()}}, nil
		},
		countByThreadFn: func(_ context.Context, id uuid.UUID) (int64, error) {
			return 21, nil
		},
	}
	svc := NewPostService(posts, threads)

	page, err := svc.ListPosts(context.Background(), threadID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)
	assert.Equal(t, int64(21), page.Count)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 20, page.Limit)
}

func TestPostService_UpdatePost_NotAuthor(t *testing.T) {
	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.Post, error) {
			return &models.Post{ID: id, CreatedBy: uuid.New()}, nil
		},
	}
	svc := NewPostService(posts, &threadRepoStub{})

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		CallerID: uuid.New(),
		PostID:   uuid.New(),
		Content:  "edited",
	})
	assertForbiddenError(t, err)
}

func TestPostService_DeletePost(t *testing.T) {
	author := uuid.New()
	postID := uuid.New()
	deleted := false

	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.Post, error) {
			return &models.Post{ID: id, CreatedBy: author}, nil
		},
		deleteFn: func(_ context.Context, post *models.Post) error {
			assert.Equal(t, postID, post.ID)
			deleted = true
			return nil
		},
	}
	svc := NewPostService(posts, &threadRepoStub{})

	require.NoError(t, svc.DeletePost(context.Background(), author, postID))
	assert.True(t, deleted)

	err := svc.DeletePost(context.Background(), uuid.New(), postID)
	assertForbiddenError(t, err)
}
