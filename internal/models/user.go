// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a forum member. Accounts are created on first Google
// sign-in; username stays unset until the member picks one.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	Username       *string   `gorm:"uniqueIndex" json:"username"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	ImageURL       string    `gorm:"size:500" json:"imageUrl"`
	Pronouns       string    `gorm:"size:64" json:"pronouns"`
	Bio            string    `gorm:"size:255" json:"bio"`
	Branch         string    `gorm:"size:8" json:"branch"`
	PassingOutYear string    `gorm:"size:4" json:"passingOutYear"`
	// TotalPosts is a denormalized counter maintained transactionally with
	// post creation and deletion.
	TotalPosts int       `gorm:"not null;default:0" json:"totalPosts"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName resolves the name shown next to the user's content:
// username when set, first name otherwise.
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.FirstName
}

// PublicProfile is the profile view exposed to other members. Email is
// only present when the viewer owns the profile.
type PublicProfile struct {
	ID             uuid.UUID `json:"id"`
	Username       *string   `json:"username"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	ImageURL       string    `json:"imageUrl"`
	Pronouns       string    `json:"pronouns"`
	Bio            string    `json:"bio"`
	Branch         string    `json:"branch"`
	PassingOutYear string    `json:"passingOutYear"`
	TotalPosts     int       `json:"totalPosts"`
	Email          string    `json:"email,omitempty"`
}

// Profile returns the public view of the user. When owner is true the
// email field is included.
func (u *User) Profile(owner bool) PublicProfile {
	p := PublicProfile{
		ID:             u.ID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ImageURL:       u.ImageURL,
		Pronouns:       u.Pronouns,
		Bio:            u.Bio,
		Branch:         u.Branch,
		PassingOutYear: u.PassingOutYear,
		TotalPosts:     u.TotalPosts,
	}
	if owner {
		p.Email = u.Email
	}
	return p
}
