package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vicedu/vicedu/modules/core/domain/aggregates/user"
	"github.com/vicedu/vicedu/pkg/composables"
	"github.com/vicedu/vicedu/pkg/repo"
)

const usersTable = "users"

const userFindQuery = `
	SELECT
		u.id,
		u.first_name,
		u.last_name,
		u.email,
		u.role,
		u.created_at,
		u.updated_at
	FROM users u`

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, userFindQuery+" WHERE u.id = $1", id)
	return scanUser(row)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, userFindQuery+" WHERE u.email = $1", strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

func (r *PgUserRepository) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	if params == nil {
		params = &user.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := []string{"1=1"}
	args := []any{}
	if params.Role != "" {
		args = append(args, string(params.Role))
		where = append(where, "u.role = $1")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query := repo.Join(
		userFindQuery,
		"WHERE", strings.Join(where, " AND "),
		"ORDER BY u.created_at DESC",
		repo.FormatLimitOffset(limit, offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list users")
	}
	defer rows.Close()

	out := make([]user.User, 0, limit)
	for rows.Next() {
		usr, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, usr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := repo.Join("SELECT COUNT(u.id) FROM users u WHERE", strings.Join(where, " AND "))
	var total int64
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}
	return out, total, nil
}

func (r *PgUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id := u.ID()
	if id == uuid.Nil {
		id = uuid.New()
	}

	fields := []string{"id", "first_name", "last_name", "email", "role", "created_at", "updated_at"}
	query := repo.Insert(usersTable, fields, "id")
	if err := tx.QueryRow(ctx, query,
		id,
		u.FirstName(),
		u.LastName(),
		u.Email(),
		string(u.Role()),
		now,
		now,
	).Scan(&id); err != nil {
		return nil, errors.Wrap(err, "insert user")
	}

	return user.New(
		u.FirstName(),
		u.LastName(),
		u.Email(),
		u.Role(),
		user.WithID(id),
		user.WithTimestamps(now, now),
	), nil
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		id                   uuid.UUID
		firstName, lastName  string
		email, role          string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &firstName, &lastName, &email, &role, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrap(err, "scan user")
	}
	return user.New(
		firstName,
		lastName,
		email,
		user.Role(role),
		user.WithID(id),
		user.WithTimestamps(createdAt, updatedAt),
	), nil
}
