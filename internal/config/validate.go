package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fedutinova/tlexport/internal/common"
	"github.com/go-playground/validator/v10"
)

// RequiredFields must be part of the requested test case fields; the
// exporter rewrites or reads each of them.
var RequiredFields = []string{"steps", "preconditions", "summary", "version", "testsuite_id", "full_tc_external_id"}

type ValidationErrors []common.ValidationError

func (e ValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

func (e ValidationErrors) Is(target error) bool {
	return target == common.ErrValidation
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings needed to run an export.
func (c Config) Validate() error {
	var errs ValidationErrors

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, common.ValidationError{
				Field:   fe.Field(),
				Message: describe(fe),
			})
		}
	}

	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if seen[f] {
			errs = append(errs, common.ValidationError{Field: "Fields", Message: fmt.Sprintf("duplicate field %q", f)})
		}
		seen[f] = true
	}
	for _, f := range RequiredFields {
		if !seen[f] {
			errs = append(errs, common.ValidationError{Field: "Fields", Message: fmt.Sprintf("missing required field %q", f)})
		}
	}
	for _, f := range c.CustomFields {
		if seen[f] {
			errs = append(errs, common.ValidationError{Field: "CustomFields", Message: fmt.Sprintf("%q collides with a test case field", f)})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return fmt.Sprintf("%q is not a valid URL", fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		return fmt.Sprintf("needs at least %s entries", fe.Param())
	default:
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
}
