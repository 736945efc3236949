package governance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func courseEntity(owner uuid.UUID, published bool) *Entity {
	return &Entity{
		Kind:        TargetCourse,
		ID:          uuid.New(),
		OwnerID:     owner,
		IsPublished: published,
	}
}

func TestResolveAdminAlwaysApplies(t *testing.T) {
	admin := Actor{ID: uuid.New(), Role: RoleAdmin}
	e := courseEntity(uuid.New(), true)

	res, err := Resolve(admin, e, map[string]any{"price": 99, "is_published": false})
	require.NoError(t, err)
	require.Equal(t, DecisionApply, res.Decision)
	require.Equal(t, map[string]any{"price": 99, "is_published": false}, res.Fields)
}

func TestResolveDeniesNonOwner(t *testing.T) {
	teacher := Actor{ID: uuid.New(), Role: RoleTeacher}
	e := courseEntity(uuid.New(), false)

	res, err := Resolve(teacher, e, map[string]any{"title": "B"})
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, DecisionDeny, res.Decision)
}

func TestResolveOwnerPrePublishAppliesAnyWatchedField(t *testing.T) {
	owner := uuid.New()
	teacher := Actor{ID: owner, Role: RoleTeacher}
	e := courseEntity(owner, false)

	res, err := Resolve(teacher, e, map[string]any{"title": "B", "category_id": "c-2", "bogus": 1})
	require.NoError(t, err)
	require.Equal(t, DecisionApply, res.Decision)
	require.Equal(t, map[string]any{"title": "B", "category_id": "c-2"}, res.Fields)
}

func TestResolveOwnerCannotTouchAdminOnlyFields(t *testing.T) {
	owner := uuid.New()
	teacher := Actor{ID: owner, Role: RoleTeacher}

	for _, field := range []string{"price", "teacher_id", "is_published"} {
		_, err := Resolve(teacher, courseEntity(owner, false), map[string]any{field: "x"})
		require.ErrorIs(t, err, ErrFieldForbidden, "field %s", field)
	}
}

func TestResolveOwnerPostPublishDropsNonAllowListedFields(t *testing.T) {
	owner := uuid.New()
	teacher := Actor{ID: owner, Role: RoleTeacher}
	e := &Entity{Kind: TargetLesson, ID: uuid.New(), OwnerID: owner, IsPublished: true}

	res, err := Resolve(teacher, e, map[string]any{
		"title":       "B",
		"description": "longer",
		"video_id":    "v-2",
		"position":    3,
	})
	require.NoError(t, err)
	require.Equal(t, DecisionApply, res.Decision)
	require.Equal(t, map[string]any{"title": "B", "description": "longer"}, res.Fields)
	require.Equal(t, []string{"position", "video_id"}, res.Dropped)
}

func TestResolveOwnerPostPublishCourseAllowList(t *testing.T) {
	owner := uuid.New()
	teacher := Actor{ID: owner, Role: RoleTeacher}
	e := courseEntity(owner, true)

	res, err := Resolve(teacher, e, map[string]any{
		"title":        "B",
		"description":  "d",
		"thumbnail_id": "t-2",
		"category_id":  "c-2",
	})
	require.NoError(t, err)
	require.Equal(t, DecisionApply, res.Decision)
	require.Len(t, res.Fields, 4)
	require.Empty(t, res.Dropped)
}

func TestResolveDelete(t *testing.T) {
	owner := uuid.New()
	e := courseEntity(owner, true)

	d, err := ResolveDelete(Actor{ID: uuid.New(), Role: RoleAdmin}, e)
	require.NoError(t, err)
	require.Equal(t, DecisionApply, d)

	d, err = ResolveDelete(Actor{ID: owner, Role: RoleTeacher}, e)
	require.NoError(t, err)
	require.Equal(t, DecisionQueue, d)

	_, err = ResolveDelete(Actor{ID: uuid.New(), Role: RoleTeacher}, e)
	require.ErrorIs(t, err, ErrUnauthorized)
}
