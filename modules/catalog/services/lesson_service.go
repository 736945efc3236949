package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vicedu/vicedu/modules/catalog/domain/aggregates/course"
	"github.com/vicedu/vicedu/modules/catalog/domain/aggregates/lesson"
	"github.com/vicedu/vicedu/pkg/eventbus"
)

// LessonService is the governance-free CRUD surface for lessons.
type LessonService struct {
	repo      lesson.Repository
	courses   course.Repository
	publisher eventbus.EventBus
}

func NewLessonService(repo lesson.Repository, courses course.Repository, publisher eventbus.EventBus) *LessonService {
	return &LessonService{repo: repo, courses: courses, publisher: publisher}
}

func (s *LessonService) GetByID(ctx context.Context, id uuid.UUID) (lesson.Lesson, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *LessonService) GetPaginated(ctx context.Context, params *lesson.FindParams) ([]lesson.Lesson, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *LessonService) Count(ctx context.Context, params *lesson.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

// Create attaches the lesson to its parent course; governance ownership is
// inherited from the course's teacher, so the parent must exist first.
func (s *LessonService) Create(ctx context.Context, l lesson.Lesson) (lesson.Lesson, error) {
	if _, err := s.courses.GetByID(ctx, l.CourseID()); err != nil {
		return lesson.Lesson{}, err
	}
	created, err := s.repo.Create(ctx, l)
	if err != nil {
		return lesson.Lesson{}, err
	}
	s.publisher.Publish(created)
	return created, nil
}
