package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Topic is a top-level discussion category.
type Topic struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"size:255;not null" json:"topicName"`
	Description string     `gorm:"size:1024" json:"topicDescription"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null;index" json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	UpdatedBy   *uuid.UUID `gorm:"type:uuid" json:"updatedBy,omitempty"`
	// Soft-delete markers exist for schema compatibility with the data
	// model; deletes are currently hard and queries do not filter on them.
	DeletedAt *time.Time `json:"-"`
	DeletedBy *uuid.UUID `gorm:"type:uuid" json:"-"`

	// ThreadCount is not persisted; computed at query time for listings.
	ThreadCount int `gorm:"->;-:migration" json:"threadCount"`
}

func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
