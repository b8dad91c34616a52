package repository

import (
	"context"
	"errors"

	"agora/internal/cache"
	"agora/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TopicRepository defines persistence operations for topics.
type TopicRepository interface {
	List(ctx context.Context) ([]models.Topic, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Topic, error)
	Create(ctx context.Context, topic *models.Topic) error
	Update(ctx context.Context, topic *models.Topic) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository returns a new TopicRepository implementation.
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

const topicSelect = "topics.*, " +
	"(SELECT COUNT(*) FROM threads WHERE threads.topic_id = topics.id) AS thread_count"

func (r *topicRepository) List(ctx context.Context) ([]models.Topic, error) {
	topics, err := cache.Aside(ctx, cache.TopicListKey, cache.TopicTTL, func() ([]models.Topic, error) {
		var out []models.Topic
		err := r.db.WithContext(ctx).
			Select(topicSelect).
			Order("topics.name ASC").
			Find(&out).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	if topics == nil {
		topics = []models.Topic{}
	}
	return topics, nil
}

func (r *topicRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.WithContext(ctx).
		Select(topicSelect).
		First(&topic, "topics.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Topic")
		}
		return nil, models.NewInternalError(err)
	}
	return &topic, nil
}

func (r *topicRepository) Create(ctx context.Context, topic *models.Topic) error {
	if err := r.db.WithContext(ctx).Create(topic).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("a topic with this name already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateTopics(ctx)
	cache.InvalidateStats(ctx)
	return nil
}

func (r *topicRepository) Update(ctx context.Context, topic *models.Topic) error {
	res := r.db.WithContext(ctx).Model(topic).
		Select("name", "description", "updated_by").
		Updates(topic)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("a topic with this name already exists")
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Topic")
	}
	cache.InvalidateTopics(ctx)
	return nil
}

func (r *topicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Topic{}, "id = ?", id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Topic")
	}
	cache.InvalidateTopics(ctx)
	cache.InvalidateStats(ctx)
	return nil
}
