package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidFields lists every field that failed validation.
type ErrInvalidFields struct {
	error
	Fields []string
}

func NewErrInvalidFields(validationErrors validator.ValidationErrors) *ErrInvalidFields {
	fields := make([]string, 0, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fe.Namespace())
		messages = append(messages, describe(fe))
	}
	return &ErrInvalidFields{
		error:  fmt.Errorf("%s", strings.Join(messages, "; ")),
		Fields: fields,
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "httpurl":
		return fmt.Sprintf("%s must be a valid http or https URL", fe.Namespace())
	case "color":
		return fmt.Sprintf("%s must be a color in the form 0xRRGGBB", fe.Namespace())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Namespace(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Namespace(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Namespace(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", fe.Namespace(), fe.Tag())
	}
}
