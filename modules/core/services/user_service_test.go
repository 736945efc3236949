package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vicedu/vicedu/modules/core/domain/aggregates/user"
)

type fakeUserRepo struct {
	users map[uuid.UUID]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]user.User{}}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *fakeUserRepo) GetPaginated(_ context.Context, params *user.FindParams) ([]user.User, int64, error) {
	var out []user.User
	for _, u := range r.users {
		if params.Role != "" && u.Role() != params.Role {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	created := user.New(u.FirstName(), u.LastName(), u.Email(), u.Role(), user.WithID(uuid.New()))
	r.users[created.ID()] = created
	return created, nil
}

func TestUserServiceCreate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	created, err := svc.Create(context.Background(), "Ada", "Lovelace", "Ada@Example.com", user.RoleTeacher)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID())
	require.Equal(t, "ada@example.com", created.Email())

	found, err := svc.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID(), found.ID())
}

func TestUserServiceCreateInvalidRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	_, err := svc.Create(context.Background(), "Ada", "Lovelace", "ada@example.com", user.Role("student"))
	require.Error(t, err)
}

func TestUserServiceGetByIDNotFound(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	_, err := svc.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, user.ErrNotFound)
}
