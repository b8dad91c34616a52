// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"strings"
	"time"

	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory builds realistic-looking forum entities.
type Factory struct {
	db *gorm.DB
}

// NewFactory creates a Factory bound to the given database.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db}
}

// BuildUser returns an unsaved user with populated profile fields. Roughly
// a third of generated users have not picked a username yet, matching the
// post-signup state.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	user := &models.User{
		Email:          gofakeit.Email(),
		FirstName:      gofakeit.FirstName(),
		LastName:       gofakeit.LastName(),
		ImageURL:       fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Bio:            gofakeit.Sentence(8),
		Branch:         gofakeit.RandomString([]string{"CSE", "ECE", "ME", "CE", "EE"}),
		PassingOutYear: fmt.Sprintf("%d", gofakeit.Number(2024, 2030)),
	}
	if gofakeit.Number(0, 2) > 0 {
		username := strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(10, 99))
		user.Username = &username
	}
	for _, o := range overrides {
		o(user)
	}
	return user
}

// BuildTopic returns an unsaved topic created by the given user.
func (f *Factory) BuildTopic(creator uuid.UUID, name string) *models.Topic {
	return &models.Topic{
		Name:        name,
		Description: gofakeit.Sentence(12),
		CreatedBy:   creator,
	}
}

// BuildThread returns an unsaved thread under the given topic.
func (f *Factory) BuildThread(creator, topicID uuid.UUID, overrides ...func(*models.Thread)) *models.Thread {
	thread := &models.Thread{
		TopicID:   topicID,
		Title:     strings.TrimSuffix(gofakeit.Sentence(gofakeit.Number(4, 9)), "."),
		ViewCount: gofakeit.Number(0, 500),
		CreatedBy: creator,
	}
	for _, o := range overrides {
		o(thread)
	}
	return thread
}

// BuildPost returns an unsaved post under the given thread.
func (f *Factory) BuildPost(author, threadID uuid.UUID, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		ThreadID:   threadID,
		Content:    gofakeit.Paragraph(1, gofakeit.Number(1, 4), 8, "\n"),
		Vote:       gofakeit.Number(0, 40),
		IsApproved: true,
		CreatedBy:  author,
	}
	for _, o := range overrides {
		o(post)
	}
	return post
}

// CreateUsers persists n generated users.
func (f *Factory) CreateUsers(n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, *f.BuildUser())
	}
	if err := f.db.CreateInBatches(users, 100).Error; err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	return users, nil
}
