package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"agora/internal/auth"
	"agora/internal/config"
	"agora/internal/featureflags"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key-for-sessions-0123456789"

// testDeps bundles the stub repositories a test can program before the
// app is built.
type testDeps struct {
	server  *Server
	users   *userRepoStub
	topics  *topicRepoStub
	threads *threadRepoStub
	posts   *postRepoStub
	stats   *statsRepoStub
	google  *googleStub
}

// newTestApp builds a Server over stub repositories and returns the
// routed Fiber app plus the stubs for programming expectations.
func newTestApp(t *testing.T) (*fiber.App, *testDeps) {
	t.Helper()

	deps := &testDeps{
		users:   &userRepoStub{},
		topics:  &topicRepoStub{},
		threads: &threadRepoStub{},
		posts:   &postRepoStub{},
		stats:   &statsRepoStub{},
		google:  &googleStub{},
	}

	cfg := &config.Config{
		Env:         "test",
		Port:        "0",
		JWTSecret:   testJWTSecret,
		FrontendURL: "http://localhost:5173",
	}

	s := &Server{
		config:       cfg,
		google:       deps.google,
		featureFlags: featureflags.NewManager(cfg.FeatureFlags),
		userRepo:   deps.users,
		topicRepo:  deps.topics,
		threadRepo: deps.threads,
		postRepo:   deps.posts,
		statsRepo:  deps.stats,
	}
	s.identityService = service.NewIdentityService(deps.users)
	s.userService = service.NewUserService(deps.users)
	s.topicService = service.NewTopicService(deps.topics)
	s.threadService = service.NewThreadService(deps.threads, deps.topics)
	s.postService = service.NewPostService(deps.posts, deps.threads)
	deps.server = s

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithAppError(c, err)
		},
	})
	s.SetupRoutes(app)
	return app, deps
}

// authedRequest builds a request carrying a valid session cookie for
// the given user.
func authedRequest(t *testing.T, method, target string, body io.Reader, userID uuid.UUID) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := auth.IssueSession(testJWTSecret, userID)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	return req
}

// decodeBody decodes a response body into a generic map.
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// googleStub satisfies the identityResolver interface.
type googleStub struct {
	resolveFn func(ctx context.Context, code string) (*auth.GoogleIdentity, error)
}

func (g *googleStub) Resolve(ctx context.Context, code string) (*auth.GoogleIdentity, error) {
	return g.resolveFn(ctx, code)
}

// Stub repositories. Tests set only the fields they need; an unset field
// means the call is unexpected and panics.

type userRepoStub struct {
	createIfAbsentFn func(ctx context.Context, user *models.User) (bool, error)
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*models.User, error)
	getByEmailFn     func(ctx context.Context, email string) (*models.User, error)
	getByUsernameFn  func(ctx context.Context, username string) (*models.User, error)
	updateFieldsFn   func(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.User, error)
	deleteFn         func(ctx context.Context, id uuid.UUID) error
}

func (s *userRepoStub) CreateIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	return s.createIfAbsentFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.User, error) {
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *userRepoStub) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

type topicRepoStub struct {
	listFn    func(ctx context.Context) ([]models.Topic, error)
	getByIDFn func(ctx context.Context, id uuid.UUID) (*models.Topic, error)
	createFn  func(ctx context.Context, topic *models.Topic) error
	updateFn  func(ctx context.Context, topic *models.Topic) error
	deleteFn  func(ctx context.Context, id uuid.UUID) error
}

func (s *topicRepoStub) List(ctx context.Context) ([]models.Topic, error) { return s.listFn(ctx) }
func (s *topicRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.Topic, error) {
	return s.getByIDFn(ctx, id)
}
func (s *topicRepoStub) Create(ctx context.Context, topic *models.Topic) error {
	return s.createFn(ctx, topic)
}
func (s *topicRepoStub) Update(ctx context.Context, topic *models.Topic) error {
	return s.updateFn(ctx, topic)
}
func (s *topicRepoStub) Delete(ctx context.Context, id uuid.UUID) error { return s.deleteFn(ctx, id) }

type threadRepoStub struct {
	listFn        func(ctx context.Context, filter repository.ThreadFilter, sort string, limit, offset int) ([]models.Thread, error)
	countFn       func(ctx context.Context, filter repository.ThreadFilter) (int64, error)
	getByIDFn     func(ctx context.Context, id uuid.UUID) (*models.Thread, error)
	createFn      func(ctx context.Context, thread *models.Thread) error
	updateFn      func(ctx context.Context, thread *models.Thread) error
	deleteFn      func(ctx context.Context, id uuid.UUID) error
	incrementViFn func(ctx context.Context, id uuid.UUID) error
}

func (s *threadRepoStub) List(ctx context.Context, filter repository.ThreadFilter, sort string, limit, offset int) ([]models.Thread, error) {
	return s.listFn(ctx, filter, sort, limit, offset)
}
func (s *threadRepoStub) Count(ctx context.Context, filter repository.ThreadFilter) (int64, error) {
	return s.countFn(ctx, filter)
}
func (s *threadRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.Thread, error) {
	return s.getByIDFn(ctx, id)
}
func (s *threadRepoStub) Create(ctx context.Context, thread *models.Thread) error {
	return s.createFn(ctx, thread)
}
func (s *threadRepoStub) Update(ctx context.Context, thread *models.Thread) error {
	return s.updateFn(ctx, thread)
}
func (s *threadRepoStub) Delete(ctx context.Context, id uuid.UUID) error { return s.deleteFn(ctx, id) }
func (s *threadRepoStub) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return s.incrementViFn(ctx, id)
}

type postRepoStub struct {
	createFn        func(ctx context.Context, post *models.Post) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*models.Post, error)
	listByThreadFn  func(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]models.Post, error)
	countByThreadFn func(ctx context.Context, threadID uuid.UUID) (int64, error)
	updateFn        func(ctx context.Context, post *models.Post) error
	deleteFn        func(ctx context.Context, post *models.Post) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListByThread(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]models.Post, error) {
	return s.listByThreadFn(ctx, threadID, limit, offset)
}
func (s *postRepoStub) CountByThread(ctx context.Context, threadID uuid.UUID) (int64, error) {
	return s.countByThreadFn(ctx, threadID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, post *models.Post) error {
	return s.deleteFn(ctx, post)
}

type statsRepoStub struct {
	totalsFn    func(ctx context.Context) (*models.ForumTotals, error)
	userStatsFn func(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
}

func (s *statsRepoStub) Totals(ctx context.Context) (*models.ForumTotals, error) {
	return s.totalsFn(ctx)
}
func (s *statsRepoStub) UserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	return s.userStatsFn(ctx, userID)
}
