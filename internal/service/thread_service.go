package service

import (
	"context"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Pagination bounds shared by all listings.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ThreadService implements thread CRUD and the ranked thread listing.
type ThreadService struct {
	threads repository.ThreadRepository
	topics  repository.TopicRepository
}

// NewThreadService returns a new ThreadService.
func NewThreadService(threads repository.ThreadRepository, topics repository.TopicRepository) *ThreadService {
	return &ThreadService{threads: threads, topics: topics}
}

type ListThreadsInput struct {
	TopicID *uuid.UUID
	Search  string
	Sort    string
	Page    int
	Limit   int
}

// ThreadPage is one page of a thread listing plus the unpaginated total.
type ThreadPage struct {
	Threads []models.Thread `json:"threads"`
	Count   int64           `json:"count"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

type CreateThreadInput struct {
	CallerID uuid.UUID
	TopicID  uuid.UUID
	Title    string
}

type UpdateThreadInput struct {
	CallerID uuid.UUID
	ThreadID uuid.UUID
	Title    *string
	IsLocked *bool
}

const maxThreadTitleLen = 255

// NormalizePagination bounds page and limit and returns them with the
// derived offset. Page is 1-based.
func NormalizePagination(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit, (page - 1) * limit
}

func normalizeSort(sort string) string {
	switch sort {
	case repository.SortTop, repository.SortViews, repository.SortTrending, repository.SortLatest:
		return sort
	default:
		return repository.SortLatest
	}
}

// ListThreads runs the page query and the count query concurrently; they
// share the filter but are independent, so serializing them would only
// add latency.
func (s *ThreadService) ListThreads(ctx context.Context, in ListThreadsInput) (*ThreadPage, error) {
	page, limit, offset := NormalizePagination(in.Page, in.Limit)
	sort := normalizeSort(in.Sort)
	filter := repository.ThreadFilter{TopicID: in.TopicID, Search: strings.TrimSpace(in.Search)}

	result := &ThreadPage{Page: page, Limit: limit}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		threads, err := s.threads.List(gctx, filter, sort, limit, offset)
		if err != nil {
			return err
		}
		result.Threads = threads
		return nil
	})
	g.Go(func() error {
		count, err := s.threads.Count(gctx, filter)
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

// GetThread fetches one thread with its aggregates. When bumpView is set
// the stored view counter is incremented; a failed bump does not fail the
// read.
func (s *ThreadService) GetThread(ctx context.Context, id uuid.UUID, bumpView bool) (*models.Thread, error) {
	thread, err := s.threads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bumpView {
		if err := s.threads.IncrementViewCount(ctx, id); err == nil {
			thread.ViewCount++
		}
	}
	return thread, nil
}

func (s *ThreadService) CreateThread(ctx context.Context, in CreateThreadInput) (*models.Thread, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("thread title is required")
	}
	if len(title) > maxThreadTitleLen {
		return nil, models.NewValidationError("thread title too long (max 255 characters)")
	}

	// The referenced topic must exist before the insert.
	if _, err := s.topics.GetByID(ctx, in.TopicID); err != nil {
		return nil, err
	}

	thread := &models.Thread{
		TopicID:   in.TopicID,
		Title:     title,
		CreatedBy: in.CallerID,
	}
	if err := s.threads.Create(ctx, thread); err != nil {
		return nil, err
	}
	return s.threads.GetByID(ctx, thread.ID)
}

func (s *ThreadService) UpdateThread(ctx context.Context, in UpdateThreadInput) (*models.Thread, error) {
	thread, err := s.threads.GetByID(ctx, in.ThreadID)
	if err != nil {
		return nil, err
	}
	if thread.CreatedBy != in.CallerID {
		return nil, models.NewForbiddenError("only the thread creator can modify it")
	}

	changed := false
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("thread title cannot be empty")
		}
		if len(title) > maxThreadTitleLen {
			return nil, models.NewValidationError("thread title too long (max 255 characters)")
		}
		thread.Title = title
		changed = true
	}
	if in.IsLocked != nil {
		thread.IsLocked = *in.IsLocked
		changed = true
	}
	if !changed {
		return nil, models.NewValidationError("no fields to update")
	}

	thread.UpdatedBy = &in.CallerID
	if err := s.threads.Update(ctx, thread); err != nil {
		return nil, err
	}
	return s.threads.GetByID(ctx, in.ThreadID)
}

func (s *ThreadService) DeleteThread(ctx context.Context, callerID, threadID uuid.UUID) error {
	thread, err := s.threads.GetByID(ctx, threadID)
	if err != nil {
		return err
	}
	if thread.CreatedBy != callerID {
		return models.NewForbiddenError("only the thread creator can delete it")
	}
	return s.threads.Delete(ctx, threadID)
}
