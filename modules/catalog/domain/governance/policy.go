package governance

import (
	"sort"

	"github.com/google/uuid"
)

// Role is the submitter's role as recorded on ledger entries.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleSystem  Role = "system"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleSystem:
		return true
	}
	return false
}

// Actor is the authenticated user a decision is made for.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

type Decision int

const (
	DecisionDeny Decision = iota
	DecisionApply
	DecisionQueue
)

// Resolution is the outcome of policy resolution for a field edit. Fields is
// the direct-apply set; Dropped lists requested fields silently excluded by
// the post-publish allow-list.
type Resolution struct {
	Decision Decision
	Fields   map[string]any
	Dropped  []string
}

// Per-target field sets. All governance field knowledge lives here so call
// sites never re-derive authorization decisions.
var watchedFields = map[TargetType][]string{
	TargetCourse: {"title", "description", "price", "thumbnail_id", "category_id", "teacher_id", "is_published"},
	TargetLesson: {"title", "description", "video_id", "position", "is_published"},
}

var adminOnlyFields = map[TargetType]map[string]bool{
	TargetCourse: {"price": true, "teacher_id": true, "is_published": true},
	TargetLesson: {"is_published": true},
}

var postPublishAllowList = map[TargetType]map[string]bool{
	TargetCourse: {"title": true, "description": true, "thumbnail_id": true, "category_id": true},
	TargetLesson: {"title": true, "description": true},
}

// WatchedFields returns the editable key set the engine diffs and patches.
func WatchedFields(t TargetType) []string {
	return watchedFields[t]
}

func isWatched(t TargetType, field string) bool {
	for _, k := range watchedFields[t] {
		if k == field {
			return true
		}
	}
	return false
}

// Resolve decides how a field edit is handled. Rules, in order: unauthorized
// actors are denied; admins apply everything; a teacher touching an
// admin-only field is rejected; pre-publish teacher edits apply directly;
// post-publish teacher edits apply only the allow-listed fields and the rest
// are dropped. Field patches are never queued; the queue is reserved for
// publish requests and delete intents.
func Resolve(actor Actor, e *Entity, requested map[string]any) (Resolution, error) {
	if actor.Role == RoleAdmin {
		return Resolution{Decision: DecisionApply, Fields: restrictToWatched(e.Kind, requested)}, nil
	}
	if actor.Role != RoleTeacher || e.OwnerID != actor.ID {
		return Resolution{Decision: DecisionDeny}, ErrUnauthorized
	}

	for field := range requested {
		if adminOnlyFields[e.Kind][field] {
			return Resolution{Decision: DecisionDeny}, ErrFieldForbidden.WithMessage(
				"field " + field + " may only be changed by an admin",
			)
		}
	}

	if !e.IsPublished {
		return Resolution{Decision: DecisionApply, Fields: restrictToWatched(e.Kind, requested)}, nil
	}

	apply := make(map[string]any)
	var dropped []string
	for field, value := range requested {
		if !isWatched(e.Kind, field) {
			continue
		}
		if postPublishAllowList[e.Kind][field] {
			apply[field] = value
		} else {
			dropped = append(dropped, field)
		}
	}
	sort.Strings(dropped)
	return Resolution{Decision: DecisionApply, Fields: apply, Dropped: dropped}, nil
}

// ResolveDelete decides how a deletion request is handled: admins delete
// directly, the owning teacher's request is queued for approval, everyone
// else is denied.
func ResolveDelete(actor Actor, e *Entity) (Decision, error) {
	if actor.Role == RoleAdmin {
		return DecisionApply, nil
	}
	if actor.Role == RoleTeacher && e.OwnerID == actor.ID {
		return DecisionQueue, nil
	}
	return DecisionDeny, ErrUnauthorized
}

func restrictToWatched(t TargetType, requested map[string]any) map[string]any {
	out := make(map[string]any, len(requested))
	for field, value := range requested {
		if isWatched(t, field) {
			out[field] = value
		}
	}
	return out
}
