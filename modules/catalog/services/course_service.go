package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vicedu/vicedu/modules/catalog/domain/aggregates/course"
	"github.com/vicedu/vicedu/pkg/eventbus"
)

// CourseService is the governance-free CRUD surface for courses. Field edits
// and deletions go through GovernanceService instead.
type CourseService struct {
	repo      course.Repository
	publisher eventbus.EventBus
}

func NewCourseService(repo course.Repository, publisher eventbus.EventBus) *CourseService {
	return &CourseService{repo: repo, publisher: publisher}
}

func (s *CourseService) GetByID(ctx context.Context, id uuid.UUID) (course.Course, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CourseService) GetBySlug(ctx context.Context, slug string) (course.Course, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *CourseService) GetPaginated(ctx context.Context, params *course.FindParams) ([]course.Course, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *CourseService) Count(ctx context.Context, params *course.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

func (s *CourseService) Create(ctx context.Context, c course.Course) (course.Course, error) {
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return course.Course{}, err
	}
	s.publisher.Publish(created)
	return created, nil
}
