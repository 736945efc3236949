package governance

import "github.com/vicedu/vicedu/pkg/serrors"

var (
	// ErrNotFound covers both a missing entity and a missing ledger target.
	ErrNotFound = serrors.NewError("GOV_NOT_FOUND", "entity not found", "Governance.Errors.NotFound")
	// ErrUnauthorized is returned when the actor is neither the owning
	// teacher nor an admin.
	ErrUnauthorized = serrors.NewError("GOV_UNAUTHORIZED", "actor is not allowed to edit this entity", "Governance.Errors.Unauthorized")
	// ErrFieldForbidden is returned when a teacher touches an admin-only field.
	ErrFieldForbidden = serrors.NewError("GOV_FIELD_FORBIDDEN", "field may only be changed by an admin", "Governance.Errors.FieldForbidden")
	// ErrNoPendingChanges is returned by approve/reject when no draft exists.
	ErrNoPendingChanges = serrors.NewError("GOV_NO_PENDING_CHANGES", "entity has no pending changes", "Governance.Errors.NoPendingChanges")
	// ErrInvalidStatus is returned when a workflow value is outside its enum
	// or a publish transition is requested from the wrong state.
	ErrInvalidStatus = serrors.NewError("GOV_INVALID_STATUS", "invalid status for this operation", "Governance.Errors.InvalidStatus")
	// ErrAlreadyDecided signals a ledger integrity violation: the entry left
	// the pending state before this decision ran.
	ErrAlreadyDecided = serrors.NewError("GOV_ALREADY_DECIDED", "ledger entry has already been decided", "Governance.Errors.AlreadyDecided")
)
