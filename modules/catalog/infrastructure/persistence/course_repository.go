package persistence

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/vicedu/vicedu/modules/catalog/domain/aggregates/course"
	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/pkg/composables"
	"github.com/vicedu/vicedu/pkg/repo"
	"github.com/vicedu/vicedu/pkg/shared"
)

const coursesTable = "courses"

const courseFindQuery = `
	SELECT
		c.id,
		c.title,
		c.slug,
		c.description,
		c.price,
		c.thumbnail_id,
		c.category_id,
		c.teacher_id,
		c.is_published,
		c.published_at,
		c.approval_status,
		c.publish_requested_by,
		c.publish_requested_at,
		c.draft,
		c.has_pending_changes,
		c.pending_submitted_by,
		c.pending_submitted_at,
		c.created_at,
		c.updated_at
	FROM courses c`

// PgCourseRepository is the single persistence surface for courses: the CRUD
// repository plus the governance entity and publish stores. Draft columns are
// only touched by PutDraft and ClearDraft.
type PgCourseRepository struct{}

func NewCourseRepository() *PgCourseRepository {
	return &PgCourseRepository{}
}

var (
	_ course.Repository       = (*PgCourseRepository)(nil)
	_ governance.EntityStore  = (*PgCourseRepository)(nil)
	_ governance.PublishStore = (*PgCourseRepository)(nil)
)

func (r *PgCourseRepository) Kind() governance.TargetType {
	return governance.TargetCourse
}

func (r *PgCourseRepository) GetByID(ctx context.Context, id uuid.UUID) (course.Course, error) {
	return r.queryOne(ctx, courseFindQuery+" WHERE c.id = $1", id)
}

func (r *PgCourseRepository) GetBySlug(ctx context.Context, slug string) (course.Course, error) {
	return r.queryOne(ctx, courseFindQuery+" WHERE c.slug = $1", slug)
}

func (r *PgCourseRepository) GetPaginated(ctx context.Context, params *course.FindParams) ([]course.Course, error) {
	if params == nil {
		params = &course.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := courseFilters(params)
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	query := repo.Join(
		courseFindQuery,
		"WHERE", strings.Join(where, " AND "),
		"ORDER BY c.created_at DESC",
		repo.FormatLimitOffset(limit, params.Offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list courses")
	}
	defer rows.Close()

	out := make([]course.Course, 0, limit)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PgCourseRepository) Count(ctx context.Context, params *course.FindParams) (int64, error) {
	if params == nil {
		params = &course.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := courseFilters(params)
	query := repo.Join("SELECT COUNT(c.id) FROM courses c WHERE", strings.Join(where, " AND "))
	var total int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, errors.Wrap(err, "count courses")
	}
	return total, nil
}

func (r *PgCourseRepository) Create(ctx context.Context, c course.Course) (course.Course, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return course.Course{}, err
	}

	now := time.Now().UTC()
	fields := []string{
		"id", "title", "slug", "description", "price",
		"thumbnail_id", "category_id", "teacher_id",
		"is_published", "created_at", "updated_at",
	}
	query := repo.Insert(coursesTable, fields, "id")
	var id uuid.UUID
	if err := tx.QueryRow(ctx, query,
		c.ID(),
		c.Title(),
		c.Slug(),
		c.Description(),
		c.Price(),
		c.ThumbnailID(),
		c.CategoryID(),
		c.TeacherID(),
		c.IsPublished(),
		now,
		now,
	).Scan(&id); err != nil {
		return course.Course{}, errors.Wrap(err, "insert course")
	}
	return r.GetByID(ctx, id)
}

// Delete cascades to the course's lessons before removing the course row.
func (r *PgCourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM lessons WHERE course_id = $1", id); err != nil {
		return errors.Wrap(err, "delete course lessons")
	}
	tag, err := tx.Exec(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "delete course")
	}
	if tag.RowsAffected() == 0 {
		return governance.ErrNotFound
	}
	return nil
}

func (r *PgCourseRepository) Get(ctx context.Context, id uuid.UUID) (*governance.Entity, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.GovernanceEntity(), nil
}

func (r *PgCourseRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*governance.Entity, error) {
	c, err := r.queryOne(ctx, courseFindQuery+" WHERE c.id = $1 FOR UPDATE OF c", id)
	if err != nil {
		return nil, err
	}
	return c.GovernanceEntity(), nil
}

// courseFieldDoc is the typed form of the watched-field document after a
// merge patch. decimal handles both quoted and bare JSON numbers for price.
type courseFieldDoc struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ThumbnailID *string         `json:"thumbnail_id"`
	CategoryID  *string         `json:"category_id"`
	TeacherID   string          `json:"teacher_id"`
	IsPublished bool            `json:"is_published"`
}

// ApplyPatch folds the field patch into the live record with an RFC 7386
// merge, so an explicit null clears a nullable reference. The slug is
// recomputed from the merged title.
func (r *PgCourseRepository) ApplyPatch(ctx context.Context, id uuid.UUID, fields map[string]any) (*governance.Entity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current, err := json.Marshal(c.Fields())
	if err != nil {
		return nil, errors.Wrap(err, "encode course fields")
	}
	patch, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "encode course patch")
	}
	merged, err := jsonpatch.MergePatch(current, patch)
	if err != nil {
		return nil, errors.Wrap(err, "merge course patch")
	}
	var doc courseFieldDoc
	if err := json.Unmarshal(merged, &doc); err != nil {
		return nil, errors.Wrap(err, "decode merged course fields")
	}

	thumbnailID, err := parseUUIDRef(doc.ThumbnailID, "thumbnail_id")
	if err != nil {
		return nil, err
	}
	categoryID, err := parseUUIDRef(doc.CategoryID, "category_id")
	if err != nil {
		return nil, err
	}
	teacherID, err := uuid.Parse(doc.TeacherID)
	if err != nil {
		return nil, governance.ErrInvalidStatus.WithMessage("teacher_id is not a valid uuid")
	}

	query := repo.Update(coursesTable,
		[]string{"title", "slug", "description", "price", "thumbnail_id", "category_id", "teacher_id", "is_published", "updated_at"},
		"id = $10",
	)
	if _, err := tx.Exec(ctx, query,
		doc.Title,
		shared.Slugify(doc.Title),
		doc.Description,
		doc.Price,
		thumbnailID,
		categoryID,
		teacherID,
		doc.IsPublished,
		time.Now().UTC(),
		id,
	); err != nil {
		return nil, errors.Wrap(err, "patch course")
	}
	return r.Get(ctx, id)
}

func (r *PgCourseRepository) PutDraft(
	ctx context.Context,
	id uuid.UUID,
	change governance.PendingChange,
	submittedBy uuid.UUID,
	submittedAt time.Time,
) (*governance.Entity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(change)
	if err != nil {
		return nil, errors.Wrap(err, "encode draft")
	}
	query := repo.Update(coursesTable,
		[]string{"draft", "has_pending_changes", "pending_submitted_by", "pending_submitted_at"},
		"id = $5",
	)
	tag, err := tx.Exec(ctx, query, raw, true, submittedBy, submittedAt.UTC(), id)
	if err != nil {
		return nil, errors.Wrap(err, "put course draft")
	}
	if tag.RowsAffected() == 0 {
		return nil, governance.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *PgCourseRepository) ClearDraft(ctx context.Context, id uuid.UUID) (*governance.Entity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := repo.Update(coursesTable,
		[]string{"draft", "has_pending_changes", "pending_submitted_by", "pending_submitted_at"},
		"id = $5",
	)
	tag, err := tx.Exec(ctx, query, nil, false, nil, nil, id)
	if err != nil {
		return nil, errors.Wrap(err, "clear course draft")
	}
	if tag.RowsAffected() == 0 {
		return nil, governance.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *PgCourseRepository) ListPending(ctx context.Context) ([]*governance.Entity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := repo.Join(
		courseFindQuery,
		"WHERE c.has_pending_changes = true",
		"ORDER BY c.pending_submitted_at ASC",
	)
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "list pending courses")
	}
	defer rows.Close()

	var out []*governance.Entity
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c.GovernanceEntity())
	}
	return out, rows.Err()
}

func (r *PgCourseRepository) SetPublishRequest(
	ctx context.Context,
	id uuid.UUID,
	requestedBy uuid.UUID,
	requestedAt time.Time,
) (*governance.Entity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := repo.Update(coursesTable,
		[]string{"approval_status", "publish_requested_by", "publish_requested_at"},
		"id = $4",
	)
	tag, err := tx.Exec(ctx, query, string(governance.ApprovalPending), requestedBy, requestedAt.UTC(), id)
	if err != nil {
		return nil, errors.Wrap(err, "set publish request")
	}
	if tag.RowsAffected() == 0 {
		return nil, governance.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *PgCourseRepository) ApprovePublish(ctx context.Context, id uuid.UUID, publishedAt time.Time) (*governance.Entity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := repo.Update(coursesTable,
		[]string{"is_published", "published_at", "approval_status", "publish_requested_by", "publish_requested_at"},
		"id = $6",
	)
	tag, err := tx.Exec(ctx, query, true, publishedAt.UTC(), string(governance.ApprovalApproved), nil, nil, id)
	if err != nil {
		return nil, errors.Wrap(err, "approve publish")
	}
	if tag.RowsAffected() == 0 {
		return nil, governance.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *PgCourseRepository) RejectPublish(ctx context.Context, id uuid.UUID) (*governance.Entity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := repo.Update(coursesTable,
		[]string{"approval_status", "publish_requested_by", "publish_requested_at"},
		"id = $4",
	)
	tag, err := tx.Exec(ctx, query, string(governance.ApprovalRejected), nil, nil, id)
	if err != nil {
		return nil, errors.Wrap(err, "reject publish")
	}
	if tag.RowsAffected() == 0 {
		return nil, governance.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *PgCourseRepository) queryOne(ctx context.Context, query string, args ...any) (course.Course, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return course.Course{}, err
	}
	return scanCourse(tx.QueryRow(ctx, query, args...))
}

func courseFilters(params *course.FindParams) ([]string, []any) {
	where := []string{"1=1"}
	args := []any{}
	if params.TeacherID != nil {
		args = append(args, *params.TeacherID)
		where = append(where, "c.teacher_id = $"+itoa(len(args)))
	}
	if params.Published != nil {
		args = append(args, *params.Published)
		where = append(where, "c.is_published = $"+itoa(len(args)))
	}
	return where, args
}

func scanCourse(row pgx.Row) (course.Course, error) {
	var (
		id, teacherID            uuid.UUID
		title, slug, description string
		price                    decimal.Decimal
		thumbnailID, categoryID  *uuid.UUID
		isPublished              bool
		publishedAt              *time.Time
		approvalStatus           *string
		publishRequestedBy       *uuid.UUID
		publishRequestedAt       *time.Time
		draftRaw                 []byte
		hasPendingChanges        bool
		pendingSubmittedBy       *uuid.UUID
		pendingSubmittedAt       *time.Time
		createdAt, updatedAt     time.Time
	)
	if err := row.Scan(
		&id,
		&title,
		&slug,
		&description,
		&price,
		&thumbnailID,
		&categoryID,
		&teacherID,
		&isPublished,
		&publishedAt,
		&approvalStatus,
		&publishRequestedBy,
		&publishRequestedAt,
		&draftRaw,
		&hasPendingChanges,
		&pendingSubmittedBy,
		&pendingSubmittedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return course.Course{}, governance.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "scan course")
	}

	draft, err := decodeDraft(draftRaw, hasPendingChanges)
	if err != nil {
		return course.Course{}, err
	}
	var status governance.ApprovalStatus
	if approvalStatus != nil {
		status = governance.ApprovalStatus(*approvalStatus)
	}

	return course.Hydrate(id, title, slug, price, teacherID,
		course.WithDescription(description),
		course.WithThumbnailID(thumbnailID),
		course.WithCategoryID(categoryID),
		course.WithPublishState(isPublished, publishedAt),
		course.WithApproval(status, publishRequestedBy, publishRequestedAt),
		course.WithDraft(draft, pendingSubmittedBy, pendingSubmittedAt),
		course.WithTimestamps(createdAt, updatedAt),
	), nil
}
