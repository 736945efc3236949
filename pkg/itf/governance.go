package itf

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
)

var (
	_ governance.EntityStore     = (*EntityStore)(nil)
	_ governance.PublishStore    = (*PublishStore)(nil)
	_ governance.AuditRepository = (*AuditLedger)(nil)
)

// EntityStore is an in-memory governance store for tests. Field patches are
// merged straight into the field document; OnDelete lets a course store
// cascade into a lesson store the way the SQL repository does.
type EntityStore struct {
	kind     governance.TargetType
	entities map[uuid.UUID]*governance.Entity

	OnDelete func(id uuid.UUID)
}

func NewEntityStore(kind governance.TargetType) *EntityStore {
	return &EntityStore{
		kind:     kind,
		entities: map[uuid.UUID]*governance.Entity{},
	}
}

func (s *EntityStore) Put(e *governance.Entity) {
	s.entities[e.ID] = e
}

func (s *EntityStore) Remove(id uuid.UUID) {
	delete(s.entities, id)
}

func (s *EntityStore) Kind() governance.TargetType {
	return s.kind
}

func (s *EntityStore) Get(_ context.Context, id uuid.UUID) (*governance.Entity, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, governance.ErrNotFound
	}
	return cloneEntity(e), nil
}

func (s *EntityStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*governance.Entity, error) {
	return s.Get(ctx, id)
}

func (s *EntityStore) ApplyPatch(ctx context.Context, id uuid.UUID, fields map[string]any) (*governance.Entity, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, governance.ErrNotFound
	}
	for k, v := range fields {
		e.Fields[k] = v
	}
	if title, ok := e.Fields["title"].(string); ok {
		e.Title = title
	}
	if published, ok := e.Fields["is_published"].(bool); ok {
		e.IsPublished = published
	}
	return s.Get(ctx, id)
}

func (s *EntityStore) PutDraft(
	ctx context.Context,
	id uuid.UUID,
	change governance.PendingChange,
	submittedBy uuid.UUID,
	submittedAt time.Time,
) (*governance.Entity, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, governance.ErrNotFound
	}
	e.Draft = &change
	e.HasPendingChanges = true
	e.PendingSubmittedBy = &submittedBy
	e.PendingSubmittedAt = &submittedAt
	return s.Get(ctx, id)
}

func (s *EntityStore) ClearDraft(ctx context.Context, id uuid.UUID) (*governance.Entity, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, governance.ErrNotFound
	}
	e.Draft = nil
	e.HasPendingChanges = false
	e.PendingSubmittedBy = nil
	e.PendingSubmittedAt = nil
	return s.Get(ctx, id)
}

func (s *EntityStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.entities[id]; !ok {
		return governance.ErrNotFound
	}
	delete(s.entities, id)
	if s.OnDelete != nil {
		s.OnDelete(id)
	}
	return nil
}

func (s *EntityStore) ListPending(_ context.Context) ([]*governance.Entity, error) {
	var out []*governance.Entity
	for _, e := range s.entities {
		if e.HasPendingChanges {
			out = append(out, cloneEntity(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func cloneEntity(e *governance.Entity) *governance.Entity {
	clone := *e
	clone.Fields = make(map[string]any, len(e.Fields))
	for k, v := range e.Fields {
		clone.Fields[k] = v
	}
	return &clone
}

// PublishStore layers the publish-request columns over an EntityStore.
type PublishStore struct {
	*EntityStore
}

func NewPublishStore(kind governance.TargetType) *PublishStore {
	return &PublishStore{EntityStore: NewEntityStore(kind)}
}

func (s *PublishStore) SetPublishRequest(
	ctx context.Context,
	id uuid.UUID,
	requestedBy uuid.UUID,
	requestedAt time.Time,
) (*governance.Entity, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, governance.ErrNotFound
	}
	e.Status = governance.ApprovalPending
	e.PublishRequestedBy = &requestedBy
	e.PublishRequestedAt = &requestedAt
	return s.Get(ctx, id)
}

func (s *PublishStore) ApprovePublish(ctx context.Context, id uuid.UUID, publishedAt time.Time) (*governance.Entity, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, governance.ErrNotFound
	}
	e.IsPublished = true
	e.Fields["is_published"] = true
	e.Status = governance.ApprovalApproved
	e.PublishRequestedBy = nil
	e.PublishRequestedAt = nil
	return s.Get(ctx, id)
}

func (s *PublishStore) RejectPublish(ctx context.Context, id uuid.UUID) (*governance.Entity, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, governance.ErrNotFound
	}
	e.Status = governance.ApprovalRejected
	e.PublishRequestedBy = nil
	e.PublishRequestedAt = nil
	return s.Get(ctx, id)
}

// AuditLedger is an in-memory ledger with the same transition guard as the
// SQL repository. Created entries get monotonically increasing timestamps so
// ordering assertions are deterministic.
type AuditLedger struct {
	entries []*governance.Entry
	clock   time.Time
}

func NewAuditLedger() *AuditLedger {
	return &AuditLedger{clock: time.Now()}
}

func (r *AuditLedger) Create(_ context.Context, entry *governance.Entry) (*governance.Entry, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	stored := *entry
	stored.ID = uuid.New()
	r.clock = r.clock.Add(time.Millisecond)
	stored.CreatedAt = r.clock
	r.entries = append(r.entries, &stored)
	copied := stored
	return &copied, nil
}

func (r *AuditLedger) GetByID(_ context.Context, id uuid.UUID) (*governance.Entry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			copied := *e
			return &copied, nil
		}
	}
	return nil, governance.ErrNotFound
}

func (r *AuditLedger) LatestPending(
	_ context.Context,
	targetType governance.TargetType,
	targetID uuid.UUID,
) (*governance.Entry, error) {
	var latest *governance.Entry
	for _, e := range r.entries {
		if e.TargetType != targetType || e.TargetID != targetID || e.Status != governance.EntryPending {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			latest = e
		}
	}
	if latest == nil {
		return nil, governance.ErrNoPendingEntry
	}
	copied := *latest
	return &copied, nil
}

func (r *AuditLedger) Transition(
	_ context.Context,
	entryID uuid.UUID,
	status governance.EntryStatus,
	decidedBy uuid.UUID,
	reason *string,
) error {
	for _, e := range r.entries {
		if e.ID != entryID {
			continue
		}
		if e.Status != governance.EntryPending {
			return governance.ErrAlreadyDecided
		}
		now := time.Now()
		e.Status = status
		e.DecidedBy = &decidedBy
		e.DecidedAt = &now
		if reason != nil {
			e.Reason = reason
		}
		return nil
	}
	return governance.ErrNotFound
}

func (r *AuditLedger) List(_ context.Context, params *governance.AuditFindParams) ([]*governance.Entry, error) {
	if params == nil {
		params = &governance.AuditFindParams{}
	}
	var out []*governance.Entry
	for _, e := range r.entries {
		if params.TargetType != nil && e.TargetType != *params.TargetType {
			continue
		}
		if params.TargetID != nil && e.TargetID != *params.TargetID {
			continue
		}
		if params.Status != nil && e.Status != *params.Status {
			continue
		}
		if params.SubmittedBy != nil && e.SubmittedBy != *params.SubmittedBy {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}
