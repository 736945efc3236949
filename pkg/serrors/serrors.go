package serrors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Base is a coded error. Code is stable and machine-readable, Message is the
// default human-readable text, LocaleKey is an optional translation key for
// presentation layers that localize messages.
type Base struct {
	Code      string
	Message   string
	LocaleKey string
}

func NewError(code, message, localeKey string) *Base {
	return &Base{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *Base) Error() string {
	return e.Message
}

// WithMessage returns a copy carrying a more specific message while keeping
// the code, so errors.Is against the original still matches via Is.
func (e *Base) WithMessage(message string) *Base {
	return &Base{
		Code:      e.Code,
		Message:   message,
		LocaleKey: e.LocaleKey,
	}
}

func (e *Base) Is(target error) bool {
	other, ok := target.(*Base)
	if !ok {
		return false
	}
	return other.Code == e.Code
}

// ValidationError describes a single failed field validation.
type ValidationError struct {
	Field     string
	Tag       string
	LocaleKey string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s failed on %s", e.Field, e.Tag)
}

type ValidationErrors map[string]*ValidationError

// ProcessValidatorErrors maps validator.ValidationErrors into per-field
// errors. localeKeyFn may return "" when the field has no translation.
func ProcessValidatorErrors(
	errs validator.ValidationErrors,
	localeKeyFn func(field string) string,
) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, err := range errs {
		out[err.Field()] = &ValidationError{
			Field:     err.Field(),
			Tag:       err.Tag(),
			LocaleKey: localeKeyFn(err.Field()),
		}
	}
	return out
}

// Messages flattens validation errors into plain field -> message pairs.
func (v ValidationErrors) Messages() map[string]string {
	out := make(map[string]string, len(v))
	for field, err := range v {
		switch err.Tag {
		case "required":
			out[field] = fmt.Sprintf("%s is required", field)
		default:
			out[field] = err.Error()
		}
	}
	return out
}
