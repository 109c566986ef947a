package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError describes the first request field that failed validation.
type ValidationError struct {
	Field string
	Rule  string
	Param string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s failed %s validation", e.Field, e.Rule)
}

// Message returns a client-facing description of the failure.
func (e *ValidationError) Message() string {
	switch e.Rule {
	case "required":
		return e.Field + " is required"
	case "email":
		return e.Field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.Field, e.Param)
	default:
		return e.Field + " is invalid"
	}
}

// Validate checks req against its validate tags.
// It returns a *ValidationError for the first failing field.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
	}
	return err
}
