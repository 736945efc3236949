package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/pkg/eventbus"
)

// PublishService is the publish gate for courses. It is independent of the
// field-edit draft slot: a course can hold a pending publish request and a
// pending draft at the same time.
type PublishService struct {
	courses   governance.PublishStore
	publisher eventbus.EventBus
}

func NewPublishService(courses governance.PublishStore, publisher eventbus.EventBus) *PublishService {
	return &PublishService{courses: courses, publisher: publisher}
}

// RequestPublish parks a publish request on an unpublished course. Only the
// owning teacher or an admin may request; requesting an already published
// course fails.
func (s *PublishService) RequestPublish(
	ctx context.Context,
	actor governance.Actor,
	courseID uuid.UUID,
) (*governance.Entity, error) {
	entity, err := s.courses.GetForUpdate(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if actor.Role != governance.RoleAdmin && entity.OwnerID != actor.ID {
		return nil, governance.ErrUnauthorized
	}
	if entity.IsPublished {
		return nil, governance.ErrInvalidStatus.WithMessage("course is already published")
	}
	return s.courses.SetPublishRequest(ctx, courseID, actor.ID, time.Now())
}

// ApprovePublish flips the course live and clears the request.
func (s *PublishService) ApprovePublish(
	ctx context.Context,
	actor governance.Actor,
	courseID uuid.UUID,
) (*governance.Entity, error) {
	entity, err := s.lockRequested(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	updated, err := s.courses.ApprovePublish(ctx, entity.ID, now)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(governance.PublishDecided{
		TargetType: governance.TargetCourse,
		TargetID:   courseID,
		Status:     governance.ApprovalApproved,
		DecidedBy:  actor.ID,
		DecidedAt:  now,
	})
	return updated, nil
}

// RejectPublish clears the request and records the rejection; the course
// stays unpublished and may be resubmitted.
func (s *PublishService) RejectPublish(
	ctx context.Context,
	actor governance.Actor,
	courseID uuid.UUID,
) (*governance.Entity, error) {
	entity, err := s.lockRequested(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	updated, err := s.courses.RejectPublish(ctx, entity.ID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(governance.PublishDecided{
		TargetType: governance.TargetCourse,
		TargetID:   courseID,
		Status:     governance.ApprovalRejected,
		DecidedBy:  actor.ID,
		DecidedAt:  time.Now(),
	})
	return updated, nil
}

func (s *PublishService) lockRequested(
	ctx context.Context,
	actor governance.Actor,
	courseID uuid.UUID,
) (*governance.Entity, error) {
	if actor.Role != governance.RoleAdmin {
		return nil, governance.ErrUnauthorized.WithMessage("only admins decide publish requests")
	}
	entity, err := s.courses.GetForUpdate(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if entity.PublishRequestedAt == nil {
		return nil, governance.ErrInvalidStatus.WithMessage("course has no pending publish request")
	}
	return entity, nil
}
