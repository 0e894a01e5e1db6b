// Package validation wraps go-playground/validator behind a single call that
// yields domain errors, so handlers never deal with validator internals.
package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	dErrors "assent/pkg/domain-errors"
	s "assent/pkg/string"
)

var defaultValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and returns a CodeValidation domain error
// naming the first offending field in snake_case.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, errorMessage(err))
	}
	return nil
}

func errorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request"
	}

	fe := validationErrs[0]
	fieldName := fe.Field()
	if fieldName == "" {
		fieldName = fe.StructField()
	}
	field := s.ToSnakeCase(fieldName)

	// Only the tags the consent query structs actually carry get a tailored
	// message.
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid uuid", field)
	default:
		if field == "" {
			return "invalid request"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}
