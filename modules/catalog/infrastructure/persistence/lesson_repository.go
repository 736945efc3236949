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

	"github.com/vicedu/vicedu/modules/catalog/domain/aggregates/lesson"
	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/pkg/composables"
	"github.com/vicedu/vicedu/pkg/repo"
	"github.com/vicedu/vicedu/pkg/shared"
)

const lessonsTable = "lessons"

// Lessons inherit governance ownership from the parent course's teacher, so
// every read joins courses for the owner column.
const lessonFindQuery = `
	SELECT
		l.id,
		l.course_id,
		c.teacher_id,
		l.title,
		l.slug,
		l.description,
		l.video_id,
		l.position,
		l.is_published,
		l.draft,
		l.has_pending_changes,
		l.pending_submitted_by,
		l.pending_submitted_at,
		l.created_at,
		l.updated_at
	FROM lessons l
	JOIN courses c ON c.id = l.course_id`

type PgLessonRepository struct{}

func NewLessonRepository() *PgLessonRepository {
	return &PgLessonRepository{}
}

var (
	_ lesson.Repository      = (*PgLessonRepository)(nil)
	_ governance.EntityStore = (*PgLessonRepository)(nil)
)

func (r *PgLessonRepository) Kind() governance.TargetType {
	return governance.TargetLesson
}

func (r *PgLessonRepository) GetByID(ctx context.Context, id uuid.UUID) (lesson.Lesson, error) {
	return r.queryOne(ctx, lessonFindQuery+" WHERE l.id = $1", id)
}

func (r *PgLessonRepository) GetPaginated(ctx context.Context, params *lesson.FindParams) ([]lesson.Lesson, error) {
	if params == nil {
		params = &lesson.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := lessonFilters(params)
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	query := repo.Join(
		lessonFindQuery,
		"WHERE", strings.Join(where, " AND "),
		"ORDER BY l.position ASC, l.created_at ASC",
		repo.FormatLimitOffset(limit, params.Offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list lessons")
	}
	defer rows.Close()

	out := make([]lesson.Lesson, 0, limit)
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PgLessonRepository) Count(ctx context.Context, params *lesson.FindParams) (int64, error) {
	if params == nil {
		params = &lesson.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := lessonFilters(params)
	query := repo.Join("SELECT COUNT(l.id) FROM lessons l WHERE", strings.Join(where, " AND "))
	var total int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, errors.Wrap(err, "count lessons")
	}
	return total, nil
}

func (r *PgLessonRepository) Create(ctx context.Context, l lesson.Lesson) (lesson.Lesson, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return lesson.Lesson{}, err
	}

	now := time.Now().UTC()
	fields := []string{
		"id", "course_id", "title", "slug", "description",
		"video_id", "position", "is_published", "created_at", "updated_at",
	}
	query := repo.Insert(lessonsTable, fields, "id")
	var id uuid.UUID
	if err := tx.QueryRow(ctx, query,
		l.ID(),
		l.CourseID(),
		l.Title(),
		l.Slug(),
		l.Description(),
		l.VideoID(),
		l.Position(),
		l.IsPublished(),
		now,
		now,
	).Scan(&id); err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "insert lesson")
	}
	return r.GetByID(ctx, id)
}

func (r *PgLessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, "DELETE FROM lessons WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "delete lesson")
	}
	if tag.RowsAffected() == 0 {
		return governance.ErrNotFound
	}
	return nil
}

func (r *PgLessonRepository) Get(ctx context.Context, id uuid.UUID) (*governance.Entity, error) {
	l, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.GovernanceEntity(), nil
}

func (r *PgLessonRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*governance.Entity, error) {
	l, err := r.queryOne(ctx, lessonFindQuery+" WHERE l.id = $1 FOR UPDATE OF l", id)
	if err != nil {
		return nil, err
	}
	return l.GovernanceEntity(), nil
}

type lessonFieldDoc struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	VideoID     *string `json:"video_id"`
	Position    int     `json:"position"`
	IsPublished bool    `json:"is_published"`
}

func (r *PgLessonRepository) ApplyPatch(ctx context.Context, id uuid.UUID, fields map[string]any) (*governance.Entity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	l, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current, err := json.Marshal(l.Fields())
	if err != nil {
		return nil, errors.Wrap(err, "encode lesson fields")
	}
	patch, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "encode lesson patch")
	}
	merged, err := jsonpatch.MergePatch(current, patch)
	if err != nil {
		return nil, errors.Wrap(err, "merge lesson patch")
	}
	var doc lessonFieldDoc
	if err := json.Unmarshal(merged, &doc); err != nil {
		return nil, errors.Wrap(err, "decode merged lesson fields")
	}

	videoID, err := parseUUIDRef(doc.VideoID, "video_id")
	if err != nil {
		return nil, err
	}

	query := repo.Update(lessonsTable,
		[]string{"title", "slug", "description", "video_id", "position", "is_published", "updated_at"},
		"id = $8",
	)
	if _, err := tx.Exec(ctx, query,
		doc.Title,
		shared.Slugify(doc.Title),
		doc.Description,
		videoID,
		doc.Position,
		doc.IsPublished,
		time.Now().UTC(),
		id,
	); err != nil {
		return nil, errors.Wrap(err, "patch lesson")
	}
	return r.Get(ctx, id)
}

func (r *PgLessonRepository) PutDraft(
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
	query := repo.Update(lessonsTable,
		[]string{"draft", "has_pending_changes", "pending_submitted_by", "pending_submitted_at"},
		"id = $5",
	)
	tag, err := tx.Exec(ctx, query, raw, true, submittedBy, submittedAt.UTC(), id)
	if err != nil {
		return nil, errors.Wrap(err, "put lesson draft")
	}
	if tag.RowsAffected() == 0 {
		return nil, governance.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *PgLessonRepository) ClearDraft(ctx context.Context, id uuid.UUID) (*governance.Entity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := repo.Update(lessonsTable,
		[]string{"draft", "has_pending_changes", "pending_submitted_by", "pending_submitted_at"},
		"id = $5",
	)
	tag, err := tx.Exec(ctx, query, nil, false, nil, nil, id)
	if err != nil {
		return nil, errors.Wrap(err, "clear lesson draft")
	}
	if tag.RowsAffected() == 0 {
		return nil, governance.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *PgLessonRepository) ListPending(ctx context.Context) ([]*governance.Entity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := repo.Join(
		lessonFindQuery,
		"WHERE l.has_pending_changes = true",
		"ORDER BY l.pending_submitted_at ASC",
	)
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "list pending lessons")
	}
	defer rows.Close()

	var out []*governance.Entity
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l.GovernanceEntity())
	}
	return out, rows.Err()
}

func (r *PgLessonRepository) queryOne(ctx context.Context, query string, args ...any) (lesson.Lesson, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return lesson.Lesson{}, err
	}
	return scanLesson(tx.QueryRow(ctx, query, args...))
}

func lessonFilters(params *lesson.FindParams) ([]string, []any) {
	where := []string{"1=1"}
	args := []any{}
	if params.CourseID != nil {
		args = append(args, *params.CourseID)
		where = append(where, "l.course_id = $"+itoa(len(args)))
	}
	return where, args
}

func scanLesson(row pgx.Row) (lesson.Lesson, error) {
	var (
		id, courseID, ownerID    uuid.UUID
		title, slug, description string
		videoID                  *uuid.UUID
		position                 int
		isPublished              bool
		draftRaw                 []byte
		hasPendingChanges        bool
		pendingSubmittedBy       *uuid.UUID
		pendingSubmittedAt       *time.Time
		createdAt, updatedAt     time.Time
	)
	if err := row.Scan(
		&id,
		&courseID,
		&ownerID,
		&title,
		&slug,
		&description,
		&videoID,
		&position,
		&isPublished,
		&draftRaw,
		&hasPendingChanges,
		&pendingSubmittedBy,
		&pendingSubmittedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lesson.Lesson{}, governance.ErrNotFound
		}
		return lesson.Lesson{}, errors.Wrap(err, "scan lesson")
	}

	draft, err := decodeDraft(draftRaw, hasPendingChanges)
	if err != nil {
		return lesson.Lesson{}, err
	}

	return lesson.Hydrate(id, courseID, ownerID, title, slug, position,
		lesson.WithDescription(description),
		lesson.WithVideoID(videoID),
		lesson.WithPublished(isPublished),
		lesson.WithDraft(draft, pendingSubmittedBy, pendingSubmittedAt),
		lesson.WithTimestamps(createdAt, updatedAt),
	), nil
}
