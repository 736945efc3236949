package governance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffDetectsChangedFields(t *testing.T) {
	before := map[string]any{"title": "A", "description": "same", "price": 10}
	after := map[string]any{"title": "B", "description": "same", "price": 10}

	changes, err := Diff(before, after, []string{"title", "description", "price"})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, Change{From: "A", To: "B"}, changes["title"])
}

func TestDiffIdempotence(t *testing.T) {
	doc := map[string]any{
		"title": "A",
		"tags":  []any{"go", "sql"},
		"meta":  map[string]any{"level": 1},
	}
	changes, err := Diff(doc, doc, []string{"title", "tags", "meta"})
	require.NoError(t, err)
	require.Empty(t, changes)
}

func TestDiffUsesStructuralEquality(t *testing.T) {
	before := map[string]any{"meta": map[string]any{"a": 1, "b": 2}}
	after := map[string]any{"meta": map[string]any{"b": 2, "a": 1}}

	changes, err := Diff(before, after, []string{"meta"})
	require.NoError(t, err)
	require.Empty(t, changes, "maps with identical content must compare equal")
}

func TestDiffIgnoresKeysOutsideTheSet(t *testing.T) {
	before := map[string]any{"title": "A", "secret": "x"}
	after := map[string]any{"title": "A", "secret": "y"}

	changes, err := Diff(before, after, []string{"title"})
	require.NoError(t, err)
	require.Empty(t, changes)
}

func TestDiffHandlesMissingKeys(t *testing.T) {
	before := map[string]any{}
	after := map[string]any{"thumbnail_id": "t-1"}

	changes, err := Diff(before, after, []string{"thumbnail_id", "category_id"})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, Change{From: nil, To: "t-1"}, changes["thumbnail_id"])
}
