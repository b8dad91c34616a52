// Command seed populates the development database with generated forum data.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/seed"
)

func main() {
	logger := middleware.Logger

	opts := seed.DefaultOptions()
	flag.IntVar(&opts.NumUsers, "users", opts.NumUsers, "number of users to create")
	flag.IntVar(&opts.NumThreads, "threads", opts.NumThreads, "number of threads to create")
	flag.IntVar(&opts.MaxPostsPerThread, "max-posts", opts.MaxPostsPerThread, "maximum posts per thread")
	flag.BoolVar(&opts.ShouldClean, "clean", opts.ShouldClean, "delete existing data first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		logger.Error("refusing to seed a production database")
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		logger.Error("failed to apply database schema", "error", err)
		os.Exit(1)
	}

	if err := seed.Run(db, opts); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}
