package seed

import (
	"fmt"

	"agora/internal/middleware"
	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers          int
	NumThreads        int
	MaxPostsPerThread int
	ShouldClean       bool
}

// DefaultOptions returns a seed profile suitable for local development.
func DefaultOptions() Options {
	return Options{
		NumUsers:          40,
		NumThreads:        60,
		MaxPostsPerThread: 12,
		ShouldClean:       true,
	}
}

var topicNames = []string{
	"Academics", "Placements", "Campus Life", "Clubs", "Gaming",
	"Programming", "Projects", "Internships", "Hostel", "Sports",
	"Events", "Lost and Found",
}

// Run populates the database with generated users, topics, threads, and
// posts. Per-user post counters are recomputed at the end so they match
// the generated data.
func Run(db *gorm.DB, opts Options) error {
	logger := middleware.Logger

	if opts.ShouldClean {
		// Children first to respect foreign keys.
		for _, table := range []string{"posts", "threads", "topics", "users"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clean %s: %w", table, err)
			}
		}
		logger.Info("cleaned existing data")
	}

	f := NewFactory(db)

	users, err := f.CreateUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	logger.Info("seeded users", "count", len(users))

	topics := make([]models.Topic, 0, len(topicNames))
	for _, name := range topicNames {
		creator := users[gofakeit.Number(0, len(users)-1)]
		topics = append(topics, *f.BuildTopic(creator.ID, name))
	}
	if err := db.Create(&topics).Error; err != nil {
		return fmt.Errorf("seed topics: %w", err)
	}
	logger.Info("seeded topics", "count", len(topics))

	threads := make([]models.Thread, 0, opts.NumThreads)
	for i := 0; i < opts.NumThreads; i++ {
		creator := users[gofakeit.Number(0, len(users)-1)]
		topic := topics[gofakeit.Number(0, len(topics)-1)]
		threads = append(threads, *f.BuildThread(creator.ID, topic.ID))
	}
	if err := db.CreateInBatches(threads, 100).Error; err != nil {
		return fmt.Errorf("seed threads: %w", err)
	}
	logger.Info("seeded threads", "count", len(threads))

	var posts []models.Post
	for _, thread := range threads {
		n := gofakeit.Number(0, opts.MaxPostsPerThread)
		for i := 0; i < n; i++ {
			author := users[gofakeit.Number(0, len(users)-1)]
			posts = append(posts, *f.BuildPost(author.ID, thread.ID))
		}
	}
	if len(posts) > 0 {
		if err := db.CreateInBatches(posts, 200).Error; err != nil {
			return fmt.Errorf("seed posts: %w", err)
		}
	}
	logger.Info("seeded posts", "count", len(posts))

	// Recompute the denormalized per-user counter from the actual rows.
	if err := db.Exec(`
		UPDATE users SET total_posts = (
			SELECT COUNT(*) FROM posts WHERE posts.created_by = users.id
		)`).Error; err != nil {
		return fmt.Errorf("recompute post counters: %w", err)
	}

	logger.Info("seeding complete")
	return nil
}
