package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a reply within exactly one Thread.
type Post struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"threadId"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Vote       int        `gorm:"not null;default:0" json:"likes"`
	IsApproved bool       `gorm:"default:false" json:"isApproved"`
	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null;index" json:"createdBy"`
	CreatedAt  time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	UpdatedBy  *uuid.UUID `gorm:"type:uuid" json:"updatedBy,omitempty"`
	DeletedAt  *time.Time `json:"-"`
	DeletedBy  *uuid.UUID `gorm:"type:uuid" json:"-"`

	// AuthorName is not persisted; resolved from the users table at query
	// time (username, falling back to first name).
	AuthorName string `gorm:"->;-:migration" json:"authorName"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
