package service

import (
	"context"
	"strings"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PostService implements post CRUD and the chronological post listing.
type PostService struct {
	posts   repository.PostRepository
	threads repository.ThreadRepository
}

// NewPostService returns a new PostService.
func NewPostService(posts repository.PostRepository, threads repository.ThreadRepository) *PostService {
	return &PostService{posts: posts, threads: threads}
}

type CreatePostInput struct {
	CallerID uuid.UUID
	ThreadID uuid.UUID
	Content  string
}

type UpdatePostInput struct {
	CallerID uuid.UUID
	PostID   uuid.UUID
	Content  string
}

// PostPage is one page of a thread's posts plus the unpaginated total.
type PostPage struct {
	Posts []models.Post `json:"posts"`
	Count int64         `json:"count"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

const maxPostContentLen = 50000

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("post content is required")
	}
	if len(content) > maxPostContentLen {
		return nil, models.NewValidationError("post content too long (max 50000 characters)")
	}

	thread, err := s.threads.GetByID(ctx, in.ThreadID)
	if err != nil {
		return nil, err
	}
	if thread.IsLocked {
		return nil, models.NewForbiddenError("thread is locked")
	}

	post := &models.Post{
		ThreadID:  in.ThreadID,
		Content:   content,
		CreatedBy: in.CallerID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	kind := "reply"
	if thread.PostCount == 0 {
		kind = "opening"
	}
	observability.PostsCreated.WithLabelValues(kind).Inc()

	return s.posts.GetByID(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// ListPosts returns one page of a thread's posts in chronological order.
// The thread is fetched first so an unknown thread is a 404 rather than
// an empty page; page and count queries then run concurrently.
func (s *PostService) ListPosts(ctx context.Context, threadID uuid.UUID, page, limit int) (*PostPage, error) {
	if _, err := s.threads.GetByID(ctx, threadID); err != nil {
		return nil, err
	}

	page, limit, offset := NormalizePagination(page, limit)
	result := &PostPage{Page: page, Limit: limit}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		posts, err := s.posts.ListByThread(gctx, threadID, limit, offset)
		if err != nil {
			return err
		}
		result.Posts = posts
		return nil
	})
	g.Go(func() error {
		count, err := s.posts.CountByThread(gctx, threadID)
		if err != nil {
			return err
		}
		result.Count = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("post content is required")
	}
	if len(content) > maxPostContentLen {
		return nil, models.NewValidationError("post content too long (max 50000 characters)")
	}

	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.CreatedBy != in.CallerID {
		return nil, models.NewForbiddenError("only the post author can modify it")
	}

	post.Content = content
	post.UpdatedBy = &in.CallerID
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, in.PostID)
}

func (s *PostService) DeletePost(ctx context.Context, callerID, postID uuid.UUID) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.CreatedBy != callerID {
		return models.NewForbiddenError("only the post author can delete it")
	}
	return s.posts.Delete(ctx, post)
}
