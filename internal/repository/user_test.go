package repository

import (
	"context"
	"errors"
	"testing"

	"agora/internal/cache"
	"agora/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func setupTestCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	return mr
}

func TestUserRepository_CreateIfAbsent(t *testing.T) {
	t.Run("inserts new user", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewUserRepository(db)

		user := &models.User{Email: "new@example.com", FirstName: "New"}

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"total_posts"}).AddRow(0))
		mock.ExpectCommit()

		created, err := repo.CreateIfAbsent(context.Background(), user)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, uuid.Nil, user.ID, "BeforeCreate assigns an id")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflicting email inserts nothing", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewUserRepository(db)

		user := &models.User{Email: "taken@example.com"}

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"total_posts"}))
		mock.ExpectCommit()

		created, err := repo.CreateIfAbsent(context.Background(), user)
		require.NoError(t, err)
		assert.False(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "users"`).
			WillReturnError(errors.New("connection refused"))
		mock.ExpectRollback()

		_, err := repo.CreateIfAbsent(context.Background(), &models.User{Email: "x@example.com"})
		require.Error(t, err)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeInternal, appErr.Code)
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = `).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name"}).
				AddRow(id, "a@example.com", "Ana"))

		user, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", user.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = `).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.GetByID(context.Background(), uuid.New())
		require.Error(t, err)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestUserRepository_GetByEmail_AbsentIsNil(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = `).
		WillReturnError(gorm.ErrRecordNotFound)

	user, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_GetByUsername_AbsentIsNil(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = `).
		WillReturnError(gorm.ErrRecordNotFound)

	user, err := repo.GetByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "users" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = `).
			WillReturnRows(sqlmock.NewRows([]string{"id", "bio"}).AddRow(id, "updated"))

		user, err := repo.UpdateFields(context.Background(), id, map[string]interface{}{"bio": "updated"})
		require.NoError(t, err)
		assert.Equal(t, "updated", user.Bio)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate username maps to conflict", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT "username" FROM "users" WHERE id = `).
			WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("old_name"))
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "users" SET`).
			WillReturnError(gorm.ErrDuplicatedKey)
		mock.ExpectRollback()

		_, err := repo.UpdateFields(context.Background(), id, map[string]interface{}{"username": "taken"})
		require.Error(t, err)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})

	t.Run("missing user maps to not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "users" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		_, err := repo.UpdateFields(context.Background(), uuid.New(), map[string]interface{}{"bio": "x"})
		require.Error(t, err)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestUserRepository_GetByUsername_CachesProfile(t *testing.T) {
	setupTestCache(t)
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username"}).
			AddRow(id, "a@example.com", "gopher"))

	first, err := repo.GetByUsername(context.Background(), "gopher")
	require.NoError(t, err)
	require.NotNil(t, first)

	// Second read is served from the cache; no further query is expected.
	second, err := repo.GetByUsername(context.Background(), "gopher")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateFields_EvictsOldUsernameKey(t *testing.T) {
	mr := setupTestCache(t)
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	require.NoError(t, mr.Set(cache.UsernameKey("old_name"), "{}"))

	mock.ExpectQuery(`SELECT "username" FROM "users" WHERE id = `).
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("old_name"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(id, "new_name"))

	_, err := repo.UpdateFields(context.Background(), id, map[string]interface{}{"username": "new_name"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.UsernameKey("old_name")))
}

func TestUserRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
