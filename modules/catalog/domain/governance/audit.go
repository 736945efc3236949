package governance

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// EntryStatus is the audit entry state. An entry is created as applied
// (direct edit, terminal immediately) or pending (queued edit); the only
// valid transitions are pending to approved and pending to rejected.
type EntryStatus string

const (
	EntryPending  EntryStatus = "pending"
	EntryApplied  EntryStatus = "applied"
	EntryApproved EntryStatus = "approved"
	EntryRejected EntryStatus = "rejected"
)

func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryPending, EntryApplied, EntryApproved, EntryRejected:
		return true
	}
	return false
}

func (s EntryStatus) IsTerminal() bool {
	return s != EntryPending
}

// Entry is one ledger record: a single edit attempt and its outcome.
// Immutable once terminal.
type Entry struct {
	ID            uuid.UUID
	TargetType    TargetType
	TargetID      uuid.UUID
	SubmittedBy   uuid.UUID
	SubmittedRole Role
	Status        EntryStatus
	Before        map[string]any
	After         map[string]any
	Changes       map[string]Change
	Reason        *string
	DecidedBy     *uuid.UUID
	DecidedAt     *time.Time
	CreatedAt     time.Time
}

func (e *Entry) Validate() error {
	if !e.TargetType.IsValid() {
		return errors.Errorf("invalid audit target type: %q", e.TargetType)
	}
	if e.TargetID == uuid.Nil {
		return errors.New("audit entry target id is required")
	}
	if e.SubmittedBy == uuid.Nil {
		return errors.New("audit entry submitter is required")
	}
	if !e.SubmittedRole.IsValid() {
		return errors.Errorf("invalid audit submitter role: %q", e.SubmittedRole)
	}
	if !e.Status.IsValid() {
		return errors.Wrapf(ErrInvalidStatus, "audit entry status: %q", e.Status)
	}
	return nil
}

type AuditFindParams struct {
	TargetType  *TargetType
	TargetID    *uuid.UUID
	Status      *EntryStatus
	SubmittedBy *uuid.UUID
	Limit       int
}

// AuditRepository is the append-only ledger. Create assigns id and
// created_at; Transition moves a pending entry to approved or rejected and
// fails with ErrAlreadyDecided when the entry is already terminal.
type AuditRepository interface {
	Create(ctx context.Context, entry *Entry) (*Entry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	LatestPending(ctx context.Context, targetType TargetType, targetID uuid.UUID) (*Entry, error)
	Transition(ctx context.Context, entryID uuid.UUID, status EntryStatus, decidedBy uuid.UUID, reason *string) error
	List(ctx context.Context, params *AuditFindParams) ([]*Entry, error)
}

// ErrNoPendingEntry is returned by LatestPending when the target has no open
// ledger entry.
var ErrNoPendingEntry = errors.New("no pending audit entry for target")
