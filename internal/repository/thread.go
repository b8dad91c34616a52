package repository

import (
	"context"
	"errors"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Thread sort modes accepted by listings.
const (
	SortLatest   = "latest"
	SortTop      = "top"
	SortViews    = "views"
	SortTrending = "trending"
)

// ThreadFilter narrows a thread listing. Zero values mean "no filter".
type ThreadFilter struct {
	TopicID *uuid.UUID
	Search  string
}

// ThreadRepository defines persistence operations for threads.
type ThreadRepository interface {
	List(ctx context.Context, filter ThreadFilter, sort string, limit, offset int) ([]models.Thread, error)
	Count(ctx context.Context, filter ThreadFilter) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Thread, error)
	Create(ctx context.Context, thread *models.Thread) error
	Update(ctx context.Context, thread *models.Thread) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository returns a new ThreadRepository implementation.
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

// threadSelect computes per-thread aggregates in one query: post count,
// vote sum, latest activity (falling back to the thread's own creation
// time for empty threads), plus denormalized author and topic names.
const threadSelect = "threads.*, " +
	"(SELECT COUNT(*) FROM posts WHERE posts.thread_id = threads.id) AS post_count, " +
	"(SELECT COALESCE(SUM(posts.vote), 0) FROM posts WHERE posts.thread_id = threads.id) AS likes, " +
	"(SELECT COALESCE(MAX(posts.created_at), threads.created_at) FROM posts WHERE posts.thread_id = threads.id) AS last_active, " +
	"(SELECT CASE WHEN users.username IS NOT NULL AND users.username <> '' THEN users.username ELSE users.first_name END " +
	"FROM users WHERE users.id = threads.created_by) AS author_name, " +
	"(SELECT topics.name FROM topics WHERE topics.id = threads.topic_id) AS topic_name"

func (r *threadRepository) applyFilter(db *gorm.DB, filter ThreadFilter) *gorm.DB {
	if filter.TopicID != nil {
		db = db.Where("threads.topic_id = ?", *filter.TopicID)
	}
	if filter.Search != "" {
		db = db.Where("threads.title ILIKE ?", "%"+filter.Search+"%")
	}
	return db
}

// applySort appends the ORDER BY clause for the requested sort mode. The
// trending expression repeats the post-count subquery because PostgreSQL
// does not allow SELECT aliases inside ORDER BY expressions; a bare alias
// (likes, last_active) is fine. Every mode tie-breaks on creation time
// then id so pagination stays stable.
func (r *threadRepository) applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case SortTop:
		db = db.Order("likes DESC")
	case SortViews:
		db = db.Order("threads.view_count DESC")
	case SortTrending:
		db = db.Order("(threads.view_count * 0.5 + (SELECT COUNT(*) FROM posts WHERE posts.thread_id = threads.id) * 2.0) DESC")
	default: // SortLatest and anything unrecognized
		db = db.Order("last_active DESC")
	}
	return db.Order("threads.created_at DESC").Order("threads.id")
}

func (r *threadRepository) List(ctx context.Context, filter ThreadFilter, sort string, limit, offset int) ([]models.Thread, error) {
	defer observability.TrackListing("threads", sort)()

	var threads []models.Thread
	base := r.applyFilter(r.db.WithContext(ctx).Select(threadSelect), filter)
	err := r.applySort(base, sort).
		Limit(limit).
		Offset(offset).
		Find(&threads).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if threads == nil {
		threads = []models.Thread{}
	}
	for i := range threads {
		threads[i].Replies = repliesFromPostCount(threads[i].PostCount)
	}
	return threads, nil
}

// repliesFromPostCount excludes the opening post from the reply count and
// floors at zero for threads with no posts at all.
func repliesFromPostCount(postCount int) int {
	if postCount <= 1 {
		return 0
	}
	return postCount - 1
}

func (r *threadRepository) Count(ctx context.Context, filter ThreadFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Thread{}), filter).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *threadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Thread, error) {
	return cache.Aside(ctx, cache.ThreadKey(id), cache.ThreadTTL, func() (*models.Thread, error) {
		var thread models.Thread
		err := r.db.WithContext(ctx).
			Select(threadSelect).
			First(&thread, "threads.id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Thread")
			}
			return nil, models.NewInternalError(err)
		}
		thread.Replies = repliesFromPostCount(thread.PostCount)
		return &thread, nil
	})
}

func (r *threadRepository) Create(ctx context.Context, thread *models.Thread) error {
	if err := r.db.WithContext(ctx).Create(thread).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateStats(ctx)
	return nil
}

func (r *threadRepository) Update(ctx context.Context, thread *models.Thread) error {
	res := r.db.WithContext(ctx).Model(thread).
		Select("title", "is_locked", "updated_by").
		Updates(thread)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Thread")
	}
	cache.InvalidateThread(ctx, thread.ID)
	return nil
}

func (r *threadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Give back each author's share of the doomed posts before the
		// rows go away, same floor as the single-post delete.
		err := tx.Exec(`UPDATE users SET total_posts = GREATEST(total_posts - d.c, 0)
			FROM (SELECT created_by, COUNT(*) AS c FROM posts WHERE thread_id = ? GROUP BY created_by) d
			WHERE users.id = d.created_by`, id).Error
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Post{}, "thread_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Thread{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Thread")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateThread(ctx, id)
	cache.InvalidateStats(ctx)
	return nil
}

func (r *threadRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&models.Thread{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
