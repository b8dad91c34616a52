// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// CreateIfAbsent inserts the user unless a row with the same email
	// already exists. Returns true when a new row was inserted.
	CreateIfAbsent(ctx context.Context, user *models.User) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	defer observability.NewDatabaseMetrics(r.db).TrackQuery("create_if_absent", "users")()

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(user)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := cache.Aside(ctx, cache.UserKey(id), cache.UserTTL, func() (*models.User, error) {
		var u models.User
		if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("User")
			}
			return nil, models.NewInternalError(err)
		}
		return &u, nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return cache.Aside(ctx, cache.UsernameKey(username), cache.UserTTL, func() (*models.User, error) {
		var user models.User
		if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, models.NewInternalError(err)
		}
		return &user, nil
	})
}

func (r *userRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.User, error) {
	defer observability.NewDatabaseMetrics(r.db).TrackQuery("update", "users")()

	// A rename leaves the previous username's cache entry behind, so
	// evict it before the row changes.
	if _, renaming := fields["username"]; renaming {
		var prior models.User
		err := r.db.WithContext(ctx).Select("username").First(&prior, "id = ?", id).Error
		if err == nil && prior.Username != nil {
			cache.Invalidate(ctx, cache.UsernameKey(*prior.Username))
		}
	}

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("username is already taken")
		}
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("User")
	}

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, id, user.Username)
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User")
		}
		return models.NewInternalError(err)
	}

	if err := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error; err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, id, user.Username)
	cache.InvalidateStats(ctx)
	return nil
}
