package course

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/pkg/shared"
)

// Course is a teacher-owned catalog entry. Edits to its watched fields flow
// through the governance engine; the aggregate itself carries the draft and
// publish-request columns so a single read yields the full governance view.
type Course struct {
	id          uuid.UUID
	title       string
	slug        string
	description string
	price       decimal.Decimal
	thumbnailID *uuid.UUID
	categoryID  *uuid.UUID
	teacherID   uuid.UUID
	isPublished bool
	publishedAt *time.Time

	approvalStatus     governance.ApprovalStatus
	publishRequestedBy *uuid.UUID
	publishRequestedAt *time.Time

	draft            *governance.PendingChange
	draftSubmittedBy *uuid.UUID
	draftSubmittedAt *time.Time

	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Course)

func WithID(id uuid.UUID) Option {
	return func(c *Course) { c.id = id }
}

func WithDescription(description string) Option {
	return func(c *Course) { c.description = description }
}

func WithThumbnailID(id *uuid.UUID) Option {
	return func(c *Course) { c.thumbnailID = id }
}

func WithCategoryID(id *uuid.UUID) Option {
	return func(c *Course) { c.categoryID = id }
}

func WithPublishState(isPublished bool, publishedAt *time.Time) Option {
	return func(c *Course) {
		c.isPublished = isPublished
		c.publishedAt = publishedAt
	}
}

func WithApproval(status governance.ApprovalStatus, requestedBy *uuid.UUID, requestedAt *time.Time) Option {
	return func(c *Course) {
		c.approvalStatus = status
		c.publishRequestedBy = requestedBy
		c.publishRequestedAt = requestedAt
	}
}

func WithDraft(draft *governance.PendingChange, submittedBy *uuid.UUID, submittedAt *time.Time) Option {
	return func(c *Course) {
		c.draft = draft
		c.draftSubmittedBy = submittedBy
		c.draftSubmittedAt = submittedAt
	}
}

func WithTimestamps(createdAt, updatedAt time.Time) Option {
	return func(c *Course) {
		c.createdAt = createdAt
		c.updatedAt = updatedAt
	}
}

// New builds an unpublished course. The slug is derived from the title and
// recomputed whenever a governed edit changes the title.
func New(title string, price decimal.Decimal, teacherID uuid.UUID, opts ...Option) Course {
	c := Course{
		id:        uuid.New(),
		title:     strings.TrimSpace(title),
		price:     price,
		teacherID: teacherID,
	}
	for _, opt := range opts {
		opt(&c)
	}
	c.slug = shared.Slugify(c.title)
	return c
}

// Hydrate reconstructs a course from storage without recomputing anything.
func Hydrate(id uuid.UUID, title, slug string, price decimal.Decimal, teacherID uuid.UUID, opts ...Option) Course {
	c := Course{
		id:        id,
		title:     title,
		slug:      slug,
		price:     price,
		teacherID: teacherID,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c Course) ID() uuid.UUID            { return c.id }
func (c Course) Title() string            { return c.title }
func (c Course) Slug() string             { return c.slug }
func (c Course) Description() string      { return c.description }
func (c Course) Price() decimal.Decimal   { return c.price }
func (c Course) ThumbnailID() *uuid.UUID  { return c.thumbnailID }
func (c Course) CategoryID() *uuid.UUID   { return c.categoryID }
func (c Course) TeacherID() uuid.UUID     { return c.teacherID }
func (c Course) IsPublished() bool        { return c.isPublished }
func (c Course) PublishedAt() *time.Time  { return c.publishedAt }
func (c Course) CreatedAt() time.Time     { return c.createdAt }
func (c Course) UpdatedAt() time.Time     { return c.updatedAt }
func (c Course) IsZero() bool             { return c.id == uuid.Nil }
func (c Course) HasPendingChanges() bool  { return c.draft != nil }

func (c Course) ApprovalStatus() governance.ApprovalStatus { return c.approvalStatus }
func (c Course) PublishRequestedBy() *uuid.UUID            { return c.publishRequestedBy }
func (c Course) PublishRequestedAt() *time.Time            { return c.publishRequestedAt }

func (c Course) Draft() *governance.PendingChange { return c.draft }
func (c Course) DraftSubmittedBy() *uuid.UUID     { return c.draftSubmittedBy }
func (c Course) DraftSubmittedAt() *time.Time     { return c.draftSubmittedAt }

// Fields returns the watched-field document the diff engine compares. Values
// are plain JSON types so structural comparison is stable.
func (c Course) Fields() map[string]any {
	return map[string]any{
		"title":        c.title,
		"description":  c.description,
		"price":        c.price.String(),
		"thumbnail_id": uuidPtrValue(c.thumbnailID),
		"category_id":  uuidPtrValue(c.categoryID),
		"teacher_id":   c.teacherID.String(),
		"is_published": c.isPublished,
	}
}

// GovernanceEntity projects the course into the engine's target view.
func (c Course) GovernanceEntity() *governance.Entity {
	return &governance.Entity{
		Kind:               governance.TargetCourse,
		ID:                 c.id,
		OwnerID:            c.teacherID,
		Title:              c.title,
		IsPublished:        c.isPublished,
		Status:             c.approvalStatus,
		Fields:             c.Fields(),
		Draft:              c.draft,
		HasPendingChanges:  c.draft != nil,
		PendingSubmittedBy: c.draftSubmittedBy,
		PendingSubmittedAt: c.draftSubmittedAt,
		PublishRequestedBy: c.publishRequestedBy,
		PublishRequestedAt: c.publishRequestedAt,
	}
}

func uuidPtrValue(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
