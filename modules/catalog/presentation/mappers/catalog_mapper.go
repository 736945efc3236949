package mappers

import (
	"time"

	"github.com/google/uuid"

	"github.com/vicedu/vicedu/modules/catalog/domain/aggregates/course"
	"github.com/vicedu/vicedu/modules/catalog/domain/aggregates/lesson"
	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/modules/catalog/presentation/viewmodels"
	"github.com/vicedu/vicedu/modules/catalog/services"
)

func CourseToViewModel(c course.Course) *viewmodels.Course {
	return &viewmodels.Course{
		ID:                c.ID().String(),
		Title:             c.Title(),
		Slug:              c.Slug(),
		Description:       c.Description(),
		Price:             c.Price().String(),
		ThumbnailID:       uuidString(c.ThumbnailID()),
		CategoryID:        uuidString(c.CategoryID()),
		TeacherID:         c.TeacherID().String(),
		IsPublished:       c.IsPublished(),
		PublishedAt:       timeString(c.PublishedAt()),
		ApprovalStatus:    string(c.ApprovalStatus()),
		HasPendingChanges: c.HasPendingChanges(),
		CreatedAt:         c.CreatedAt().Format(time.RFC3339),
		UpdatedAt:         c.UpdatedAt().Format(time.RFC3339),
	}
}

func LessonToViewModel(l lesson.Lesson) *viewmodels.Lesson {
	return &viewmodels.Lesson{
		ID:                l.ID().String(),
		CourseID:          l.CourseID().String(),
		Title:             l.Title(),
		Slug:              l.Slug(),
		Description:       l.Description(),
		VideoID:           uuidString(l.VideoID()),
		Position:          l.Position(),
		IsPublished:       l.IsPublished(),
		HasPendingChanges: l.HasPendingChanges(),
		CreatedAt:         l.CreatedAt().Format(time.RFC3339),
		UpdatedAt:         l.UpdatedAt().Format(time.RFC3339),
	}
}

func EntityToViewModel(e *governance.Entity) *viewmodels.GovernanceEntity {
	if e == nil {
		return nil
	}
	vm := &viewmodels.GovernanceEntity{
		Kind:               string(e.Kind),
		ID:                 e.ID.String(),
		Title:              e.Title,
		IsPublished:        e.IsPublished,
		ApprovalStatus:     string(e.Status),
		Fields:             e.Fields,
		HasPendingChanges:  e.HasPendingChanges,
		PendingSubmittedBy: uuidString(e.PendingSubmittedBy),
		PendingSubmittedAt: timeString(e.PendingSubmittedAt),
		PublishRequestedBy: uuidString(e.PublishRequestedBy),
		PublishRequestedAt: timeString(e.PublishRequestedAt),
	}
	if e.Draft != nil {
		vm.ChangeKind = string(e.Draft.Kind)
	}
	return vm
}

func EntryToViewModel(e *governance.Entry) *viewmodels.AuditEntry {
	if e == nil {
		return nil
	}
	vm := &viewmodels.AuditEntry{
		ID:            e.ID.String(),
		TargetType:    string(e.TargetType),
		TargetID:      e.TargetID.String(),
		SubmittedBy:   e.SubmittedBy.String(),
		SubmittedRole: string(e.SubmittedRole),
		Status:        string(e.Status),
		DecidedBy:     uuidString(e.DecidedBy),
		DecidedAt:     timeString(e.DecidedAt),
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
	if e.Reason != nil {
		vm.Reason = *e.Reason
	}
	if len(e.Changes) > 0 {
		vm.Changes = make(map[string]viewmodels.FieldChange, len(e.Changes))
		for field, change := range e.Changes {
			vm.Changes[field] = viewmodels.FieldChange{From: change.From, To: change.To}
		}
	}
	return vm
}

func RecentEntryToViewModel(e *services.RecentEntry) *viewmodels.AuditEntry {
	vm := EntryToViewModel(e.Entry)
	vm.TargetTitle = e.TargetTitle
	return vm
}

func uuidString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func timeString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
