package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizesFields(t *testing.T) {
	id := uuid.New()
	u := New("  Ada ", " Lovelace ", " Ada@Example.COM ", RoleTeacher, WithID(id))

	require.Equal(t, id, u.ID())
	require.Equal(t, "Ada", u.FirstName())
	require.Equal(t, "Lovelace", u.LastName())
	require.Equal(t, "Ada Lovelace", u.FullName())
	require.Equal(t, "ada@example.com", u.Email())
	require.True(t, u.IsTeacher())
	require.False(t, u.IsAdmin())
}

func TestRoleValidity(t *testing.T) {
	require.True(t, RoleAdmin.IsValid())
	require.True(t, RoleTeacher.IsValid())
	require.True(t, RoleSystem.IsValid())
	require.False(t, Role("student").IsValid())
	require.False(t, Role("").IsValid())
}
