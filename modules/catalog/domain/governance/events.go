package governance

import (
	"time"

	"github.com/google/uuid"
)

// EditApplied is published after a direct edit or a direct admin delete has
// been written and its ledger entry recorded.
type EditApplied struct {
	Entry   *Entry
	Dropped []string
}

// DraftQueued is published when a change is parked in the draft slot awaiting
// an admin decision.
type DraftQueued struct {
	Entry  *Entry
	Change PendingChange
}

// DraftDecided is published after approve_changes or reject_changes.
type DraftDecided struct {
	Entry   *Entry
	Deleted bool
}

// PublishDecided is published after the publish gate resolves a request.
type PublishDecided struct {
	TargetType TargetType
	TargetID   uuid.UUID
	Status     ApprovalStatus
	DecidedBy  uuid.UUID
	DecidedAt  time.Time
}
