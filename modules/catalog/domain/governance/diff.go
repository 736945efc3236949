package governance

import (
	"github.com/go-faster/errors"
	"github.com/wI2L/jsondiff"
)

// Change records one field's movement for diff rendering.
type Change struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// Diff compares two field documents over the given key set and returns the
// keys whose values differ structurally. Equality is decided on the canonical
// JSON form, so maps and slices with identical content compare equal
// regardless of identity. Keys outside the set are ignored. An empty result
// means the edit is a no-op and must not reach the ledger.
func Diff(before, after map[string]any, keys []string) (map[string]Change, error) {
	out := make(map[string]Change)
	for _, k := range keys {
		fromVal, inBefore := before[k]
		toVal, inAfter := after[k]
		if !inBefore && !inAfter {
			continue
		}
		equal, err := structurallyEqual(fromVal, toVal)
		if err != nil {
			return nil, errors.Wrapf(err, "diff field %q", k)
		}
		if equal {
			continue
		}
		out[k] = Change{From: fromVal, To: toVal}
	}
	return out, nil
}

func structurallyEqual(a, b any) (bool, error) {
	patch, err := jsondiff.Compare(a, b)
	if err != nil {
		return false, err
	}
	return len(patch) == 0, nil
}
