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

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	// Create inserts the post and bumps the author's totalPosts counter in
	// the same transaction.
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListByThread(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]models.Post, error)
	CountByThread(ctx context.Context, threadID uuid.UUID) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the post and decrements the author's totalPosts
	// counter, floored at zero, in the same transaction.
	Delete(ctx context.Context, post *models.Post) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

const postSelect = "posts.*, " +
	"(SELECT CASE WHEN users.username IS NOT NULL AND users.username <> '' THEN users.username ELSE users.first_name END " +
	"FROM users WHERE users.id = posts.created_by) AS author_name"

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.NewDatabaseMetrics(r.db).TrackQuery("create", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", post.CreatedBy).
			UpdateColumn("total_posts", gorm.Expr("total_posts + 1")).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, post.CreatedBy, nil)
	cache.InvalidateThread(ctx, post.ThreadID)
	cache.InvalidateStats(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Select(postSelect).
		First(&post, "posts.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) ListByThread(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]models.Post, error) {
	defer observability.TrackListing("posts", "chronological")()

	var posts []models.Post
	err := r.db.WithContext(ctx).
		Select(postSelect).
		Where("posts.thread_id = ?", threadID).
		Order("posts.created_at ASC").
		Order("posts.id").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

func (r *postRepository) CountByThread(ctx context.Context, threadID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("thread_id = ?", threadID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(post).
		Select("content", "updated_by").
		Updates(post)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post")
	}
	cache.InvalidateThread(ctx, post.ThreadID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Post{}, "id = ?", post.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.User{}).
			Where("id = ?", post.CreatedBy).
			UpdateColumn("total_posts", gorm.Expr("GREATEST(total_posts - 1, 0)")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post")
		}
		return models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, post.CreatedBy, nil)
	cache.InvalidateThread(ctx, post.ThreadID)
	cache.InvalidateStats(ctx)
	return nil
}
