package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Thread is a discussion opened under exactly one Topic.
type Thread struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"topicId"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	ViewCount int        `gorm:"not null;default:0;index" json:"views"`
	PinnedAt  *time.Time `json:"pinnedAt,omitempty"`
	IsLocked  bool       `gorm:"default:false" json:"isLocked"`
	CreatedBy uuid.UUID  `gorm:"type:uuid;not null;index" json:"createdBy"`
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	UpdatedBy *uuid.UUID `gorm:"type:uuid" json:"updatedBy,omitempty"`
	DeletedAt *time.Time `json:"-"`
	DeletedBy *uuid.UUID `gorm:"type:uuid" json:"-"`

	// Computed listing fields; populated by the ranking query, not persisted.
	PostCount  int       `gorm:"->;-:migration" json:"-"`
	Replies    int       `gorm:"-" json:"replies"`
	Likes      int       `gorm:"->;-:migration" json:"likes"`
	LastActive time.Time `gorm:"->;-:migration" json:"lastActive"`
	AuthorName string    `gorm:"->;-:migration" json:"authorName"`
	TopicName  string    `gorm:"->;-:migration" json:"topicName"`
}

func (t *Thread) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TrendingScore is the heuristic blending popularity and activity used by
// the trending sort. It carries no time-decay term.
func (t *Thread) TrendingScore() float64 {
	return float64(t.ViewCount)*0.5 + float64(t.PostCount)*2
}
