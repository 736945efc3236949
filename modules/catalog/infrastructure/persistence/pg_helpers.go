package persistence

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

// decodeDraft turns the jsonb draft column back into the tagged variant. A
// row claiming pending changes without a draft payload is corrupt.
func decodeDraft(raw []byte, hasPendingChanges bool) (*governance.PendingChange, error) {
	if len(raw) == 0 {
		if hasPendingChanges {
			return nil, governance.ErrInvalidStatus.WithMessage("pending changes flagged without a draft payload")
		}
		return nil, nil
	}
	change, err := governance.UnmarshalPendingChange(raw)
	if err != nil {
		return nil, err
	}
	return &change, nil
}

func parseUUIDRef(s *string, field string) (*uuid.UUID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, governance.ErrInvalidStatus.WithMessage(field + " is not a valid uuid")
	}
	return &id, nil
}
