package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/pkg/eventbus"
)

// Outcome describes how a governed submission was handled.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeQueued  Outcome = "queued"
	OutcomeNoop    Outcome = "noop"
)

// EditResult is what submit_edit and request_delete hand back to callers.
type EditResult struct {
	Outcome Outcome
	Entity  *governance.Entity
	Entry   *governance.Entry
	Dropped []string
}

// DecisionResult is what approve_changes and reject_changes hand back.
// Entity is nil when the decision deleted the target.
type DecisionResult struct {
	Deleted bool
	Entity  *governance.Entity
	Entry   *governance.Entry
}

// RecentEntry is a ledger entry with its target's current title resolved.
// Title is empty when the target no longer exists.
type RecentEntry struct {
	*governance.Entry
	TargetTitle string
}

const supersededReason = "superseded by a newer submission"

// GovernanceService is the content-edit governance engine: it resolves policy
// for every edit, applies or queues the change, and keeps the audit ledger
// consistent with the draft slot. All writes rely on the transaction the
// request middleware put into ctx, so the draft write and the ledger insert
// commit or roll back together.
type GovernanceService struct {
	stores    map[governance.TargetType]governance.EntityStore
	audit     governance.AuditRepository
	publisher eventbus.EventBus
}

func NewGovernanceService(
	audit governance.AuditRepository,
	publisher eventbus.EventBus,
	stores ...governance.EntityStore,
) *GovernanceService {
	byKind := make(map[governance.TargetType]governance.EntityStore, len(stores))
	for _, store := range stores {
		byKind[store.Kind()] = store
	}
	return &GovernanceService{
		stores:    byKind,
		audit:     audit,
		publisher: publisher,
	}
}

func (s *GovernanceService) store(t governance.TargetType) (governance.EntityStore, error) {
	store, ok := s.stores[t]
	if !ok {
		return nil, governance.ErrInvalidStatus.WithMessage("unknown target type: " + string(t))
	}
	return store, nil
}

// SubmitEdit resolves policy for the requested fields and applies the
// surviving ones directly. Field patches are never queued; resubmitting
// values identical to the live record is a no-op that leaves no ledger trace.
func (s *GovernanceService) SubmitEdit(
	ctx context.Context,
	actor governance.Actor,
	targetType governance.TargetType,
	targetID uuid.UUID,
	requested map[string]any,
) (*EditResult, error) {
	store, err := s.store(targetType)
	if err != nil {
		return nil, err
	}
	entity, err := store.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	resolution, err := governance.Resolve(actor, entity, requested)
	if err != nil {
		return nil, err
	}
	if len(resolution.Fields) == 0 {
		return &EditResult{Outcome: OutcomeNoop, Entity: entity, Dropped: resolution.Dropped}, nil
	}

	candidate := make(map[string]any, len(entity.Fields))
	for k, v := range entity.Fields {
		candidate[k] = v
	}
	for k, v := range resolution.Fields {
		candidate[k] = v
	}
	changes, err := governance.Diff(entity.Fields, candidate, governance.WatchedFields(targetType))
	if err != nil {
		return nil, errors.Wrap(err, "diff requested fields")
	}
	if len(changes) == 0 {
		return &EditResult{Outcome: OutcomeNoop, Entity: entity, Dropped: resolution.Dropped}, nil
	}

	patch := make(map[string]any, len(changes))
	for field := range changes {
		patch[field] = resolution.Fields[field]
	}
	updated, err := store.ApplyPatch(ctx, targetID, patch)
	if err != nil {
		return nil, err
	}

	// Snapshots carry only the fields that actually changed; untouched
	// watched fields stay out of the ledger row.
	before := make(map[string]any, len(changes))
	after := make(map[string]any, len(changes))
	for field := range changes {
		before[field] = entity.Fields[field]
		after[field] = updated.Fields[field]
	}

	entry, err := s.record(ctx, &governance.Entry{
		TargetType:    targetType,
		TargetID:      targetID,
		SubmittedBy:   actor.ID,
		SubmittedRole: actor.Role,
		Status:        governance.EntryApplied,
		Before:        before,
		After:         after,
		Changes:       changes,
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(governance.EditApplied{Entry: entry, Dropped: resolution.Dropped})
	return &EditResult{Outcome: OutcomeApplied, Entity: updated, Entry: entry, Dropped: resolution.Dropped}, nil
}

// RequestDelete resolves the deletion policy: admins delete directly with
// cascade, the owning teacher's intent is parked in the draft slot. A draft
// overwritten by a newer submission leaves its ledger entry rejected with a
// superseded reason instead of dangling in pending.
func (s *GovernanceService) RequestDelete(
	ctx context.Context,
	actor governance.Actor,
	targetType governance.TargetType,
	targetID uuid.UUID,
) (*EditResult, error) {
	store, err := s.store(targetType)
	if err != nil {
		return nil, err
	}
	entity, err := store.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	decision, err := governance.ResolveDelete(actor, entity)
	if err != nil {
		return nil, err
	}

	if decision == governance.DecisionApply {
		if err := store.Delete(ctx, targetID); err != nil {
			return nil, err
		}
		entry, err := s.record(ctx, &governance.Entry{
			TargetType:    targetType,
			TargetID:      targetID,
			SubmittedBy:   actor.ID,
			SubmittedRole: actor.Role,
			Status:        governance.EntryApplied,
			Before:        entity.Fields,
		})
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(governance.EditApplied{Entry: entry})
		return &EditResult{Outcome: OutcomeApplied, Entry: entry}, nil
	}

	if err := s.supersedePending(ctx, targetType, targetID, actor.ID); err != nil {
		return nil, err
	}

	change := governance.NewDeleteIntent()
	updated, err := store.PutDraft(ctx, targetID, change, actor.ID, time.Now())
	if err != nil {
		return nil, err
	}
	entry, err := s.record(ctx, &governance.Entry{
		TargetType:    targetType,
		TargetID:      targetID,
		SubmittedBy:   actor.ID,
		SubmittedRole: actor.Role,
		Status:        governance.EntryPending,
		Before:        entity.Fields,
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(governance.DraftQueued{Entry: entry, Change: change})
	return &EditResult{Outcome: OutcomeQueued, Entity: updated, Entry: entry}, nil
}

// ApproveChanges merges or executes the parked draft. Delete intents cascade
// to dependents before removing the target; the ledger entry is transitioned
// to approved even when the target row is gone.
func (s *GovernanceService) ApproveChanges(
	ctx context.Context,
	actor governance.Actor,
	targetType governance.TargetType,
	targetID uuid.UUID,
) (*DecisionResult, error) {
	store, entity, err := s.lockPending(ctx, actor, targetType, targetID)
	if err != nil {
		return nil, err
	}

	result := &DecisionResult{}
	if entity.Draft.IsDelete() {
		if err := store.Delete(ctx, targetID); err != nil {
			return nil, err
		}
		result.Deleted = true
	} else {
		if _, err := store.ApplyPatch(ctx, targetID, entity.Draft.Fields); err != nil {
			return nil, err
		}
		updated, err := store.ClearDraft(ctx, targetID)
		if err != nil {
			return nil, err
		}
		result.Entity = updated
	}

	entry, err := s.decideLatest(ctx, targetType, targetID, governance.EntryApproved, actor.ID, nil)
	if err != nil {
		return nil, err
	}
	result.Entry = entry

	s.publisher.Publish(governance.DraftDecided{Entry: entry, Deleted: result.Deleted})
	return result, nil
}

// RejectChanges discards the parked draft without touching the live record.
func (s *GovernanceService) RejectChanges(
	ctx context.Context,
	actor governance.Actor,
	targetType governance.TargetType,
	targetID uuid.UUID,
	reason *string,
) (*DecisionResult, error) {
	store, _, err := s.lockPending(ctx, actor, targetType, targetID)
	if err != nil {
		return nil, err
	}

	updated, err := store.ClearDraft(ctx, targetID)
	if err != nil {
		return nil, err
	}
	entry, err := s.decideLatest(ctx, targetType, targetID, governance.EntryRejected, actor.ID, reason)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(governance.DraftDecided{Entry: entry})
	return &DecisionResult{Entity: updated, Entry: entry}, nil
}

// ListPending returns every entity with a parked draft, optionally narrowed
// to one target type.
func (s *GovernanceService) ListPending(
	ctx context.Context,
	targetType *governance.TargetType,
) ([]*governance.Entity, error) {
	kinds := []governance.TargetType{governance.TargetCourse, governance.TargetLesson}
	if targetType != nil {
		kinds = []governance.TargetType{*targetType}
	}

	var out []*governance.Entity
	for _, kind := range kinds {
		store, err := s.store(kind)
		if err != nil {
			return nil, err
		}
		entities, err := store.ListPending(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, entities...)
	}
	return out, nil
}

// ListHistory returns the full ledger for one target, newest first.
func (s *GovernanceService) ListHistory(
	ctx context.Context,
	targetType governance.TargetType,
	targetID uuid.UUID,
) ([]*governance.Entry, error) {
	if _, err := s.store(targetType); err != nil {
		return nil, err
	}
	return s.audit.List(ctx, &governance.AuditFindParams{
		TargetType: &targetType,
		TargetID:   &targetID,
	})
}

// ListRecent returns ledger entries across targets with each target's current
// title resolved. Deleted targets resolve to an empty title.
func (s *GovernanceService) ListRecent(
	ctx context.Context,
	params *governance.AuditFindParams,
) ([]*RecentEntry, error) {
	entries, err := s.audit.List(ctx, params)
	if err != nil {
		return nil, err
	}

	out := make([]*RecentEntry, 0, len(entries))
	titles := make(map[uuid.UUID]string)
	for _, entry := range entries {
		title, seen := titles[entry.TargetID]
		if !seen {
			store, err := s.store(entry.TargetType)
			if err != nil {
				return nil, err
			}
			entity, err := store.Get(ctx, entry.TargetID)
			switch {
			case err == nil:
				title = entity.Title
			case errors.Is(err, governance.ErrNotFound):
				title = ""
			default:
				return nil, err
			}
			titles[entry.TargetID] = title
		}
		out = append(out, &RecentEntry{Entry: entry, TargetTitle: title})
	}
	return out, nil
}

// lockPending is the shared front half of both decisions: admin check, row
// lock, draft presence check.
func (s *GovernanceService) lockPending(
	ctx context.Context,
	actor governance.Actor,
	targetType governance.TargetType,
	targetID uuid.UUID,
) (governance.EntityStore, *governance.Entity, error) {
	if actor.Role != governance.RoleAdmin {
		return nil, nil, governance.ErrUnauthorized.WithMessage("only admins decide pending changes")
	}
	store, err := s.store(targetType)
	if err != nil {
		return nil, nil, err
	}
	entity, err := store.GetForUpdate(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	if !entity.HasPendingChanges || entity.Draft == nil {
		return nil, nil, governance.ErrNoPendingChanges
	}
	return store, entity, nil
}

func (s *GovernanceService) decideLatest(
	ctx context.Context,
	targetType governance.TargetType,
	targetID uuid.UUID,
	status governance.EntryStatus,
	decidedBy uuid.UUID,
	reason *string,
) (*governance.Entry, error) {
	latest, err := s.audit.LatestPending(ctx, targetType, targetID)
	if errors.Is(err, governance.ErrNoPendingEntry) {
		// Draft slot occupied but its ledger row was already closed.
		return nil, governance.ErrAlreadyDecided
	}
	if err != nil {
		return nil, err
	}
	if err := s.audit.Transition(ctx, latest.ID, status, decidedBy, reason); err != nil {
		return nil, err
	}
	return s.audit.GetByID(ctx, latest.ID)
}

// supersedePending rejects the previous pending ledger entry before a newer
// submission overwrites the draft slot.
func (s *GovernanceService) supersedePending(
	ctx context.Context,
	targetType governance.TargetType,
	targetID uuid.UUID,
	decidedBy uuid.UUID,
) error {
	latest, err := s.audit.LatestPending(ctx, targetType, targetID)
	if errors.Is(err, governance.ErrNoPendingEntry) {
		return nil
	}
	if err != nil {
		return err
	}
	reason := supersededReason
	return s.audit.Transition(ctx, latest.ID, governance.EntryRejected, decidedBy, &reason)
}

func (s *GovernanceService) record(ctx context.Context, entry *governance.Entry) (*governance.Entry, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return s.audit.Create(ctx, entry)
}
