package lesson

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vicedu/vicedu/pkg/constants"
	"github.com/vicedu/vicedu/pkg/serrors"
)

type CreateDTO struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	VideoID     string `json:"video_id" validate:"omitempty,uuid"`
	Position    int    `json:"position" validate:"min=0"`
}

func (d *CreateDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.VideoID = strings.TrimSpace(d.VideoID)
}

func (d *CreateDTO) Ok(_ context.Context) (map[string]string, bool) {
	d.Normalize()

	errs := constants.Validate.Struct(d)
	if errs == nil {
		return map[string]string{}, true
	}

	fieldErrors := serrors.ProcessValidatorErrors(
		errs.(validator.ValidationErrors),
		func(field string) string { return "Lesson.Fields." + field },
	)
	return fieldErrors.Messages(), false
}

// ToEntity builds the aggregate under courseID; ownerID is the parent
// course's teacher.
func (d *CreateDTO) ToEntity(courseID, ownerID uuid.UUID) (Lesson, error) {
	opts := []Option{WithDescription(d.Description)}
	if d.VideoID != "" {
		id, err := uuid.Parse(d.VideoID)
		if err != nil {
			return Lesson{}, err
		}
		opts = append(opts, WithVideoID(&id))
	}
	return New(courseID, ownerID, d.Title, d.Position, opts...), nil
}
