package repository

import (
	"context"

	"agora/internal/cache"
	"agora/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// StatsRepository computes aggregate counters over the forum.
type StatsRepository interface {
	Totals(ctx context.Context) (*models.ForumTotals, error)
	UserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository returns a new StatsRepository implementation.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// Totals runs the four entity counts concurrently; each lands in its own
// field so no synchronization beyond the errgroup is needed.
func (r *statsRepository) Totals(ctx context.Context) (*models.ForumTotals, error) {
	totals, err := cache.Aside(ctx, cache.StatsTotalsKey, cache.StatsTTL, func() (*models.ForumTotals, error) {
		var t models.ForumTotals
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return r.db.WithContext(gctx).Model(&models.Topic{}).Count(&t.TotalTopics).Error
		})
		g.Go(func() error {
			return r.db.WithContext(gctx).Model(&models.Thread{}).Count(&t.TotalThreads).Error
		})
		g.Go(func() error {
			return r.db.WithContext(gctx).Model(&models.Post{}).Count(&t.TotalPosts).Error
		})
		g.Go(func() error {
			return r.db.WithContext(gctx).Model(&models.User{}).Count(&t.TotalMembers).Error
		})

		if err := g.Wait(); err != nil {
			return nil, models.NewInternalError(err)
		}
		return &t, nil
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *statsRepository) UserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	stats := models.UserStats{UserID: userID}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.db.WithContext(gctx).Model(&models.Thread{}).
			Where("created_by = ?", userID).
			Count(&stats.ThreadsCount).Error
	})
	g.Go(func() error {
		return r.db.WithContext(gctx).Model(&models.Post{}).
			Where("created_by = ?", userID).
			Count(&stats.PostsCount).Error
	})
	g.Go(func() error {
		return r.db.WithContext(gctx).Model(&models.Post{}).
			Where("created_by = ?", userID).
			Select("COALESCE(SUM(vote), 0)").
			Scan(&stats.LikesReceived).Error
	})

	if err := g.Wait(); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}
