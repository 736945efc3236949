package course

import (
	"context"

	"github.com/google/uuid"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
)

// ErrNotFound is the shared governance sentinel so callers match one error
// for both the CRUD and the workflow surface.
var ErrNotFound = governance.ErrNotFound

type FindParams struct {
	TeacherID *uuid.UUID
	Published *bool
	Limit     int
	Offset    int
}

// Repository is the CRUD surface. Governed field edits never go through it;
// they flow through the governance stores so the draft and audit state stay
// consistent.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Course, error)
	GetBySlug(ctx context.Context, slug string) (Course, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Course, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, c Course) (Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
