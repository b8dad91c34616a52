package service

import (
	"context"
	"errors"
	"testing"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Function-field stub repositories. Tests set only the fields they need;
// an unset field means the call is unexpected and panics.

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

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, models.CodeValidation, appErr.Code)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, models.CodeForbidden, appErr.Code)
}
