package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vicedu/vicedu/modules/core/domain/aggregates/user"
)

type UserService struct {
	repo user.Repository
}

func NewUserService(repo user.Repository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *UserService) Create(ctx context.Context, firstName, lastName, email string, role user.Role) (user.User, error) {
	if !role.IsValid() {
		return nil, errors.Errorf("invalid user role: %q", role)
	}
	return s.repo.Create(ctx, user.New(firstName, lastName, email, role))
}
