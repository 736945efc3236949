package course

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vicedu/vicedu/pkg/constants"
	"github.com/vicedu/vicedu/pkg/serrors"
)

type CreateDTO struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"omitempty,numeric"`
	ThumbnailID string `json:"thumbnail_id" validate:"omitempty,uuid"`
	CategoryID  string `json:"category_id" validate:"omitempty,uuid"`
}

func (d *CreateDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Price = strings.TrimSpace(d.Price)
}

func (d *CreateDTO) Ok(_ context.Context) (map[string]string, bool) {
	d.Normalize()

	errs := constants.Validate.Struct(d)
	if errs == nil {
		return map[string]string{}, true
	}

	fieldErrors := serrors.ProcessValidatorErrors(
		errs.(validator.ValidationErrors),
		func(field string) string { return "Course.Fields." + field },
	)
	return fieldErrors.Messages(), false
}

// ToEntity builds the aggregate owned by teacherID. Price defaults to zero
// when omitted.
func (d *CreateDTO) ToEntity(teacherID uuid.UUID) (Course, error) {
	price := decimal.Zero
	if d.Price != "" {
		parsed, err := decimal.NewFromString(d.Price)
		if err != nil {
			return Course{}, err
		}
		price = parsed
	}

	opts := []Option{WithDescription(d.Description)}
	if d.ThumbnailID != "" {
		id, err := uuid.Parse(d.ThumbnailID)
		if err != nil {
			return Course{}, err
		}
		opts = append(opts, WithThumbnailID(&id))
	}
	if d.CategoryID != "" {
		id, err := uuid.Parse(d.CategoryID)
		if err != nil {
			return Course{}, err
		}
		opts = append(opts, WithCategoryID(&id))
	}
	return New(d.Title, price, teacherID, opts...), nil
}
