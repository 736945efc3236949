package composables

import (
	"context"
	"errors"

	"github.com/vicedu/vicedu/modules/core/domain/aggregates/user"
	"github.com/vicedu/vicedu/pkg/constants"
)

var ErrNoUser = errors.New("no user found in context")

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, constants.UserKey, u)
}

// UseUser returns the acting user resolved by the auth middleware.
func UseUser(ctx context.Context) (user.User, error) {
	u, ok := ctx.Value(constants.UserKey).(user.User)
	if !ok || u == nil {
		return nil, ErrNoUser
	}
	return u, nil
}
