package persistence

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/pkg/composables"
	"github.com/vicedu/vicedu/pkg/repo"
)

const auditTable = "content_audit_entries"

const auditFindQuery = `
	SELECT
		a.id,
		a.target_type,
		a.target_id,
		a.submitted_by,
		a.submitted_role,
		a.status,
		a.before_fields,
		a.after_fields,
		a.changes,
		a.reason,
		a.decided_by,
		a.decided_at,
		a.created_at
	FROM content_audit_entries a`

// PgAuditRepository is the append-only ledger. Rows are never updated except
// through Transition, which is guarded in SQL so a pending entry can be
// decided exactly once.
type PgAuditRepository struct{}

func NewAuditRepository() governance.AuditRepository {
	return &PgAuditRepository{}
}

func (r *PgAuditRepository) Create(ctx context.Context, entry *governance.Entry) (*governance.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	before, err := encodeJSONB(entry.Before)
	if err != nil {
		return nil, err
	}
	after, err := encodeJSONB(entry.After)
	if err != nil {
		return nil, err
	}
	changes, err := encodeJSONB(entry.Changes)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	fields := []string{
		"id", "target_type", "target_id", "submitted_by", "submitted_role",
		"status", "before_fields", "after_fields", "changes", "reason", "created_at",
	}
	query := repo.Insert(auditTable, fields, "id")
	if err := tx.QueryRow(ctx, query,
		id,
		string(entry.TargetType),
		entry.TargetID,
		entry.SubmittedBy,
		string(entry.SubmittedRole),
		string(entry.Status),
		before,
		after,
		changes,
		entry.Reason,
		time.Now().UTC(),
	).Scan(&id); err != nil {
		return nil, errors.Wrap(err, "insert audit entry")
	}
	return r.GetByID(ctx, id)
}

func (r *PgAuditRepository) GetByID(ctx context.Context, id uuid.UUID) (*governance.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanAuditEntry(tx.QueryRow(ctx, auditFindQuery+" WHERE a.id = $1", id))
}

func (r *PgAuditRepository) LatestPending(
	ctx context.Context,
	targetType governance.TargetType,
	targetID uuid.UUID,
) (*governance.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := repo.Join(
		auditFindQuery,
		"WHERE a.target_type = $1 AND a.target_id = $2 AND a.status = $3",
		"ORDER BY a.created_at DESC LIMIT 1",
	)
	entry, err := scanAuditEntry(tx.QueryRow(ctx, query, string(targetType), targetID, string(governance.EntryPending)))
	if errors.Is(err, governance.ErrNotFound) {
		return nil, governance.ErrNoPendingEntry
	}
	return entry, err
}

// Transition decides a pending entry. The status guard in the WHERE clause is
// the integrity backstop: when zero rows update, either the entry is gone or
// it already left pending.
func (r *PgAuditRepository) Transition(
	ctx context.Context,
	entryID uuid.UUID,
	status governance.EntryStatus,
	decidedBy uuid.UUID,
	reason *string,
) error {
	if status != governance.EntryApproved && status != governance.EntryRejected {
		return governance.ErrInvalidStatus.WithMessage("audit entries transition only to approved or rejected")
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE content_audit_entries
		SET status = $2, decided_by = $3, decided_at = $4, reason = COALESCE($5, reason)
		WHERE id = $1 AND status = $6`
	tag, err := tx.Exec(ctx, query,
		entryID,
		string(status),
		decidedBy,
		time.Now().UTC(),
		reason,
		string(governance.EntryPending),
	)
	if err != nil {
		return errors.Wrap(err, "transition audit entry")
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, entryID); err != nil {
			return err
		}
		return governance.ErrAlreadyDecided
	}
	return nil
}

func (r *PgAuditRepository) List(ctx context.Context, params *governance.AuditFindParams) ([]*governance.Entry, error) {
	if params == nil {
		params = &governance.AuditFindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where := []string{"1=1"}
	args := []any{}
	if params.TargetType != nil {
		args = append(args, string(*params.TargetType))
		where = append(where, "a.target_type = $"+itoa(len(args)))
	}
	if params.TargetID != nil {
		args = append(args, *params.TargetID)
		where = append(where, "a.target_id = $"+itoa(len(args)))
	}
	if params.Status != nil {
		args = append(args, string(*params.Status))
		where = append(where, "a.status = $"+itoa(len(args)))
	}
	if params.SubmittedBy != nil {
		args = append(args, *params.SubmittedBy)
		where = append(where, "a.submitted_by = $"+itoa(len(args)))
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	query := repo.Join(
		auditFindQuery,
		"WHERE", strings.Join(where, " AND "),
		"ORDER BY a.created_at DESC",
		repo.FormatLimitOffset(limit, 0),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list audit entries")
	}
	defer rows.Close()

	out := make([]*governance.Entry, 0, limit)
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func encodeJSONB(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode jsonb")
	}
	return raw, nil
}

func scanAuditEntry(row pgx.Row) (*governance.Entry, error) {
	var (
		entry                 governance.Entry
		targetType, role      string
		status                string
		before, after, change []byte
	)
	if err := row.Scan(
		&entry.ID,
		&targetType,
		&entry.TargetID,
		&entry.SubmittedBy,
		&role,
		&status,
		&before,
		&after,
		&change,
		&entry.Reason,
		&entry.DecidedBy,
		&entry.DecidedAt,
		&entry.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, governance.ErrNotFound
		}
		return nil, errors.Wrap(err, "scan audit entry")
	}

	entry.TargetType = governance.TargetType(targetType)
	entry.SubmittedRole = governance.Role(role)
	entry.Status = governance.EntryStatus(status)
	if len(before) > 0 {
		if err := json.Unmarshal(before, &entry.Before); err != nil {
			return nil, errors.Wrap(err, "decode before snapshot")
		}
	}
	if len(after) > 0 {
		if err := json.Unmarshal(after, &entry.After); err != nil {
			return nil, errors.Wrap(err, "decode after snapshot")
		}
	}
	if len(change) > 0 {
		if err := json.Unmarshal(change, &entry.Changes); err != nil {
			return nil, errors.Wrap(err, "decode changes")
		}
	}
	return &entry, nil
}
