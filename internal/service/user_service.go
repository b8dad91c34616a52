package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"

	"github.com/google/uuid"
)

// UserService implements profile reads, partial updates, and account removal.
type UserService struct {
	users repository.UserRepository
}

// NewUserService returns a new UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// UpdateProfileInput carries the recognized optional profile fields. Nil
// means "leave unchanged"; the handler enforces strict body decoding so
// unknown keys never reach this point.
type UpdateProfileInput struct {
	Username       *string `json:"username"`
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	ImageURL       *string `json:"imageUrl"`
	Pronouns       *string `json:"pronouns"`
	Bio            *string `json:"bio"`
	Branch         *string `json:"branch"`
	PassingOutYear *int    `json:"passingOutYear"`
}

func (s *UserService) GetMe(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// GetProfileByUsername returns the public profile for the named user and
// whether the viewer owns it. The email field is included only for the
// owner.
func (s *UserService) GetProfileByUsername(ctx context.Context, username string, viewerID *uuid.UUID) (*models.PublicProfile, bool, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		return nil, false, models.NewNotFoundError("User")
	}

	owner := viewerID != nil && *viewerID == user.ID
	profile := user.Profile(owner)
	return &profile, owner, nil
}

// UpdateProfile applies a partial update: only fields present in the
// input reach the store. A username collision surfaces as 409.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	fields := map[string]interface{}{}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["username"] = username
	}
	if in.FirstName != nil {
		if len(*in.FirstName) > 50 {
			return nil, models.NewValidationError("firstName too long (max 50 characters)")
		}
		fields["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		if len(*in.LastName) > 50 {
			return nil, models.NewValidationError("lastName too long (max 50 characters)")
		}
		fields["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.ImageURL != nil {
		url := strings.TrimSpace(*in.ImageURL)
		if url != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "/images/") {
			return nil, models.NewValidationError("imageUrl must be a URL or an /images/ path")
		}
		fields["image_url"] = url
	}
	if in.Pronouns != nil {
		if len(*in.Pronouns) > 50 {
			return nil, models.NewValidationError("pronouns too long (max 50 characters)")
		}
		fields["pronouns"] = strings.TrimSpace(*in.Pronouns)
	}
	if in.Bio != nil {
		if len(*in.Bio) > 280 {
			return nil, models.NewValidationError("bio too long (max 280 characters)")
		}
		fields["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.Branch != nil {
		if len(*in.Branch) > 100 {
			return nil, models.NewValidationError("branch too long (max 100 characters)")
		}
		fields["branch"] = strings.TrimSpace(*in.Branch)
	}
	if in.PassingOutYear != nil {
		year := *in.PassingOutYear
		if year < 2000 || year > 2100 {
			return nil, models.NewValidationError("passingOutYear must be between 2000 and 2100")
		}
		fields["passing_out_year"] = strconv.Itoa(year)
	}

	if len(fields) == 0 {
		return nil, models.NewValidationError("no valid fields provided for update")
	}

	return s.users.UpdateFields(ctx, userID, fields)
}

// DeleteAccount removes the caller's account.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
