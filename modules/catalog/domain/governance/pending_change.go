package governance

import (
	"encoding/json"

	"github.com/go-faster/errors"
)

type ChangeKind string

const (
	KindFieldPatch ChangeKind = "field_patch"
	KindDelete     ChangeKind = "delete"
)

// PendingChange is the single outstanding proposed mutation for an entity:
// either a patch over a subset of editable fields or a delete intent.
type PendingChange struct {
	Kind   ChangeKind     `json:"kind"`
	Fields map[string]any `json:"fields,omitempty"`
}

func NewFieldPatch(fields map[string]any) PendingChange {
	return PendingChange{Kind: KindFieldPatch, Fields: fields}
}

func NewDeleteIntent() PendingChange {
	return PendingChange{Kind: KindDelete}
}

func (c PendingChange) IsDelete() bool {
	return c.Kind == KindDelete
}

func (c PendingChange) Validate() error {
	switch c.Kind {
	case KindFieldPatch:
		if len(c.Fields) == 0 {
			return errors.New("field patch must contain at least one field")
		}
		return nil
	case KindDelete:
		if len(c.Fields) != 0 {
			return errors.New("delete intent carries no fields")
		}
		return nil
	default:
		return errors.Errorf("unknown pending change kind: %q", c.Kind)
	}
}

// UnmarshalPendingChange decodes the jsonb draft column.
func UnmarshalPendingChange(raw []byte) (PendingChange, error) {
	var c PendingChange
	if err := json.Unmarshal(raw, &c); err != nil {
		return PendingChange{}, errors.Wrap(err, "decode pending change")
	}
	if err := c.Validate(); err != nil {
		return PendingChange{}, err
	}
	return c, nil
}
