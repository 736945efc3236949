package lesson

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/pkg/shared"
)

// Lesson belongs to exactly one course and is ordered by position within it.
// Governance ownership is inherited from the parent course's teacher.
type Lesson struct {
	id          uuid.UUID
	courseID    uuid.UUID
	ownerID     uuid.UUID
	title       string
	slug        string
	description string
	videoID     *uuid.UUID
	position    int
	isPublished bool

	draft            *governance.PendingChange
	draftSubmittedBy *uuid.UUID
	draftSubmittedAt *time.Time

	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Lesson)

func WithID(id uuid.UUID) Option {
	return func(l *Lesson) { l.id = id }
}

func WithDescription(description string) Option {
	return func(l *Lesson) { l.description = description }
}

func WithVideoID(id *uuid.UUID) Option {
	return func(l *Lesson) { l.videoID = id }
}

func WithPublished(published bool) Option {
	return func(l *Lesson) { l.isPublished = published }
}

func WithDraft(draft *governance.PendingChange, submittedBy *uuid.UUID, submittedAt *time.Time) Option {
	return func(l *Lesson) {
		l.draft = draft
		l.draftSubmittedBy = submittedBy
		l.draftSubmittedAt = submittedAt
	}
}

func WithTimestamps(createdAt, updatedAt time.Time) Option {
	return func(l *Lesson) {
		l.createdAt = createdAt
		l.updatedAt = updatedAt
	}
}

func New(courseID, ownerID uuid.UUID, title string, position int, opts ...Option) Lesson {
	l := Lesson{
		id:       uuid.New(),
		courseID: courseID,
		ownerID:  ownerID,
		title:    strings.TrimSpace(title),
		position: position,
	}
	for _, opt := range opts {
		opt(&l)
	}
	l.slug = shared.Slugify(l.title)
	return l
}

func Hydrate(id, courseID, ownerID uuid.UUID, title, slug string, position int, opts ...Option) Lesson {
	l := Lesson{
		id:       id,
		courseID: courseID,
		ownerID:  ownerID,
		title:    title,
		slug:     slug,
		position: position,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func (l Lesson) ID() uuid.UUID           { return l.id }
func (l Lesson) CourseID() uuid.UUID     { return l.courseID }
func (l Lesson) OwnerID() uuid.UUID      { return l.ownerID }
func (l Lesson) Title() string           { return l.title }
func (l Lesson) Slug() string            { return l.slug }
func (l Lesson) Description() string     { return l.description }
func (l Lesson) VideoID() *uuid.UUID     { return l.videoID }
func (l Lesson) Position() int           { return l.position }
func (l Lesson) IsPublished() bool       { return l.isPublished }
func (l Lesson) CreatedAt() time.Time    { return l.createdAt }
func (l Lesson) UpdatedAt() time.Time    { return l.updatedAt }
func (l Lesson) IsZero() bool            { return l.id == uuid.Nil }
func (l Lesson) HasPendingChanges() bool { return l.draft != nil }

func (l Lesson) Draft() *governance.PendingChange { return l.draft }
func (l Lesson) DraftSubmittedBy() *uuid.UUID     { return l.draftSubmittedBy }
func (l Lesson) DraftSubmittedAt() *time.Time     { return l.draftSubmittedAt }

// Fields returns the watched-field document the diff engine compares.
func (l Lesson) Fields() map[string]any {
	var videoID any
	if l.videoID != nil {
		videoID = l.videoID.String()
	}
	return map[string]any{
		"title":        l.title,
		"description":  l.description,
		"video_id":     videoID,
		"position":     l.position,
		"is_published": l.isPublished,
	}
}

// GovernanceEntity projects the lesson into the engine's target view.
func (l Lesson) GovernanceEntity() *governance.Entity {
	return &governance.Entity{
		Kind:               governance.TargetLesson,
		ID:                 l.id,
		OwnerID:            l.ownerID,
		Title:              l.title,
		IsPublished:        l.isPublished,
		Fields:             l.Fields(),
		Draft:              l.draft,
		HasPendingChanges:  l.draft != nil,
		PendingSubmittedBy: l.draftSubmittedBy,
		PendingSubmittedAt: l.draftSubmittedAt,
	}
}
