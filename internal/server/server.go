// Package server contains the HTTP handlers and routing for the forum API.
package server

import (
	"context"
	"fmt"
	"time"

	"agora/internal/auth"
	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/featureflags"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// identityResolver exchanges an OAuth authorization code for a verified
// external identity. Satisfied by auth.GoogleVerifier; swapped in tests.
type identityResolver interface {
	Resolve(ctx context.Context, code string) (*auth.GoogleIdentity, error)
}

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	google       identityResolver
	featureFlags *featureflags.Manager

	userRepo   repository.UserRepository
	topicRepo  repository.TopicRepository
	threadRepo repository.ThreadRepository
	postRepo   repository.PostRepository
	statsRepo  repository.StatsRepository

	identityService *service.IdentityService
	userService     *service.UserService
	topicService    *service.TopicService
	threadService   *service.ThreadService
	postService     *service.PostService
}

// NewServer creates a server instance, establishing the database and Redis
// connections from configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis first.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	s := &Server{
		config: cfg,
		db:     db,
		redis:  redisClient,
		google:       auth.NewGoogleVerifier(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI),
		featureFlags: featureflags.NewManager(cfg.FeatureFlags),

		userRepo:   repository.NewUserRepository(db),
		topicRepo:  repository.NewTopicRepository(db),
		threadRepo: repository.NewThreadRepository(db),
		postRepo:   repository.NewPostRepository(db),
		statsRepo:  repository.NewStatsRepository(db),
	}

	s.identityService = service.NewIdentityService(s.userRepo)
	s.userService = service.NewUserService(s.userRepo)
	s.topicService = service.NewTopicService(s.topicRepo)
	s.threadService = service.NewThreadService(s.threadRepo, s.topicRepo)
	s.postService = service.NewPostService(s.postRepo, s.threadRepo)

	s.promMiddleware = middleware.InitMetrics("agora-api")

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for log correlation
	app.Use(requestid.New())

	// Propagate request ID and user ID into the request context
	app.Use(middleware.ContextMiddleware())

	// OpenTelemetry spans per request
	app.Use(middleware.TracingMiddleware())

	// Prometheus HTTP metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit so browser
	// clients still receive CORS headers on error responses. Credentials
	// are required for the session cookie.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	authRequired := middleware.AuthRequired(s.config.JWTSecret)
	optionalAuth := middleware.OptionalAuth(s.config.JWTSecret)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Get("/google/callback", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "oauth_callback"), s.GoogleCallback)
	authGroup.Post("/logout", s.Logout)

	// User routes
	user := api.Group("/user")
	user.Get("/me", authRequired, s.GetMe)
	user.Patch("/me", authRequired, s.UpdateMyProfile)
	user.Delete("/me", authRequired, s.DeleteMyAccount)
	user.Get("/details/:username", optionalAuth, s.GetUserDetails)

	// Topic routes
	topics := api.Group("/topics")
	topics.Get("/", s.GetTopics)
	topics.Post("/", authRequired, middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "create_topic"), s.CreateTopic)
	topics.Get("/:id/threads", s.GetTopicThreads)
	topics.Patch("/:id", authRequired, s.UpdateTopic)
	topics.Delete("/:id", authRequired, s.DeleteTopic)

	// Thread routes. /new before /:id so it is not captured as an ID.
	threads := api.Group("/threads")
	threads.Get("/", s.GetThreads)
	threads.Post("/new", authRequired, middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_thread"), s.CreateThread)
	threads.Get("/:id/posts", s.GetThreadPosts)
	threads.Get("/:id", s.GetThread)
	threads.Patch("/:id", authRequired, s.UpdateThread)
	threads.Delete("/:id", authRequired, s.DeleteThread)

	// Post routes
	posts := api.Group("/posts")
	posts.Post("/", authRequired, middleware.RateLimit(
		s.redis, 30, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Get("/:id", s.GetPost)
	posts.Patch("/:id", authRequired, s.UpdatePost)
	posts.Delete("/:id", authRequired, s.DeletePost)

	// Stats routes
	stats := api.Group("/stats")
	stats.Get("/", s.GetStats)
	stats.Get("/:userId", s.GetUserStats)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. The database is
// required; Redis is a cache and only degrades the status when down.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "disabled"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Agora Forum API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled handler error", "error", err)
			return models.RespondWithAppError(c, err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server and closes connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
