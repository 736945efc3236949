package lesson

import (
	"context"

	"github.com/google/uuid"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
)

var ErrNotFound = governance.ErrNotFound

type FindParams struct {
	CourseID *uuid.UUID
	Limit    int
	Offset   int
}

// Repository is the CRUD surface; governed field edits flow through the
// governance stores instead.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Lesson, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Lesson, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, l Lesson) (Lesson, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
