package service

import (
	"context"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/google/uuid"
)

// TopicService implements topic CRUD with ownership checks.
type TopicService struct {
	topics repository.TopicRepository
}

// NewTopicService returns a new TopicService.
func NewTopicService(topics repository.TopicRepository) *TopicService {
	return &TopicService{topics: topics}
}

type CreateTopicInput struct {
	CallerID    uuid.UUID
	Name        string
	Description string
}

type UpdateTopicInput struct {
	CallerID    uuid.UUID
	TopicID     uuid.UUID
	Name        *string
	Description *string
}

const (
	maxTopicNameLen        = 255
	maxTopicDescriptionLen = 1024
)

func (s *TopicService) ListTopics(ctx context.Context) ([]models.Topic, error) {
	return s.topics.List(ctx)
}

func (s *TopicService) GetTopic(ctx context.Context, id uuid.UUID) (*models.Topic, error) {
	return s.topics.GetByID(ctx, id)
}

func (s *TopicService) CreateTopic(ctx context.Context, in CreateTopicInput) (*models.Topic, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("topic name is required")
	}
	if len(name) > maxTopicNameLen {
		return nil, models.NewValidationError("topic name too long (max 255 characters)")
	}
	if len(in.Description) > maxTopicDescriptionLen {
		return nil, models.NewValidationError("topic description too long (max 1024 characters)")
	}

	topic := &models.Topic{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   in.CallerID,
	}
	if err := s.topics.Create(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *TopicService) UpdateTopic(ctx context.Context, in UpdateTopicInput) (*models.Topic, error) {
	topic, err := s.topics.GetByID(ctx, in.TopicID)
	if err != nil {
		return nil, err
	}
	if topic.CreatedBy != in.CallerID {
		return nil, models.NewForbiddenError("only the topic creator can modify it")
	}

	changed := false
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("topic name cannot be empty")
		}
		if len(name) > maxTopicNameLen {
			return nil, models.NewValidationError("topic name too long (max 255 characters)")
		}
		topic.Name = name
		changed = true
	}
	if in.Description != nil {
		if len(*in.Description) > maxTopicDescriptionLen {
			return nil, models.NewValidationError("topic description too long (max 1024 characters)")
		}
		topic.Description = strings.TrimSpace(*in.Description)
		changed = true
	}
	if !changed {
		return nil, models.NewValidationError("no fields to update")
	}

	topic.UpdatedBy = &in.CallerID
	if err := s.topics.Update(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *TopicService) DeleteTopic(ctx context.Context, callerID, topicID uuid.UUID) error {
	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return err
	}
	if topic.CreatedBy != callerID {
		return models.NewForbiddenError("only the topic creator can delete it")
	}
	return s.topics.Delete(ctx, topicID)
}
