package governance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TargetType string

const (
	TargetCourse TargetType = "course"
	TargetLesson TargetType = "lesson"
)

func (t TargetType) IsValid() bool {
	return t == TargetCourse || t == TargetLesson
}

// ApprovalStatus describes the publish-request outcome. It is independent of
// IsPublished: a rejected course stays unpublished but keeps the rejection.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// Entity is the governance view of a catalog record. The engine treats the
// field document as opaque except for the watched key set.
type Entity struct {
	Kind        TargetType
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	IsPublished bool
	Status      ApprovalStatus
	Fields      map[string]any

	Draft              *PendingChange
	HasPendingChanges  bool
	PendingSubmittedBy *uuid.UUID
	PendingSubmittedAt *time.Time

	PublishRequestedBy *uuid.UUID
	PublishRequestedAt *time.Time
}

// EntityStore is the per-target persistence boundary the engine consumes.
// Draft columns are mutated exclusively through PutDraft and ClearDraft.
type EntityStore interface {
	Kind() TargetType
	Get(ctx context.Context, id uuid.UUID) (*Entity, error)
	// GetForUpdate locks the entity row for the rest of the ambient
	// transaction so concurrent decisions serialize.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Entity, error)
	// ApplyPatch merges the field patch into the live record, recomputing
	// derived fields (the slug when the title changes).
	ApplyPatch(ctx context.Context, id uuid.UUID, fields map[string]any) (*Entity, error)
	PutDraft(ctx context.Context, id uuid.UUID, change PendingChange, submittedBy uuid.UUID, submittedAt time.Time) (*Entity, error)
	ClearDraft(ctx context.Context, id uuid.UUID) (*Entity, error)
	// Delete removes the entity and cascades to its dependents.
	Delete(ctx context.Context, id uuid.UUID) error
	ListPending(ctx context.Context) ([]*Entity, error)
}

// PublishStore is the extra surface of stores whose entities go through the
// publish gate.
type PublishStore interface {
	Get(ctx context.Context, id uuid.UUID) (*Entity, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Entity, error)
	SetPublishRequest(ctx context.Context, id uuid.UUID, requestedBy uuid.UUID, requestedAt time.Time) (*Entity, error)
	ApprovePublish(ctx context.Context, id uuid.UUID, publishedAt time.Time) (*Entity, error)
	RejectPublish(ctx context.Context, id uuid.UUID) (*Entity, error)
}
