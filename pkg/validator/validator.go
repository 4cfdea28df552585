// Package validator wraps go-playground/validator for checking decoded
// response models against their `validate` struct tags. Field names in
// reported errors follow the json tag, matching what was actually on the
// wire.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	gvalidator "github.com/go-playground/validator/v10"
)

// FieldError describes a single field validation problem.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
	Param   string `json:"param,omitempty"`
}

// ValidationError aggregates the field problems found in one struct.
type ValidationError struct {
	Fields []FieldError
	cause  error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return e.cause }

// Validator wraps the go-playground engine with json-tag field naming.
type Validator struct {
	v *gvalidator.Validate
}

// New creates a Validator. Field names resolve through the json tag, falling
// back to the Go field name.
func New() *Validator {
	v := gvalidator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Default is the shared instance used when no explicit validator is wired.
var Default = New()

// RegisterValidation registers a custom validation tag.
func (vi *Validator) RegisterValidation(tag string, fn gvalidator.Func) error {
	return vi.v.RegisterValidation(tag, fn)
}

// ValidateStruct checks s (a struct or pointer to struct) against its
// `validate` tags. It returns nil on success or for values that carry no
// tags to check (slices, maps, scalars); otherwise a *ValidationError.
func (vi *Validator) ValidateStruct(s any) error {
	err := vi.v.Struct(s)
	if err == nil {
		return nil
	}

	var invalid *gvalidator.InvalidValidationError
	if errors.As(err, &invalid) {
		// Not a struct; nothing to validate.
		return nil
	}

	return vi.parse(err)
}

func (vi *Validator) parse(err error) *ValidationError {
	var ferrs gvalidator.ValidationErrors
	if !errors.As(err, &ferrs) {
		return &ValidationError{
			Fields: []FieldError{{Message: err.Error()}},
			cause:  err,
		}
	}

	ve := &ValidationError{cause: err}
	for _, fe := range ferrs {
		ve.Fields = append(ve.Fields, FieldError{
			Field:   fe.Field(),
			Message: buildMessage(fe),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
		})
	}
	return ve
}

func buildMessage(fe gvalidator.FieldError) string {
	if fe.Param() != "" {
		return fmt.Sprintf("field %s failed on '%s' validation (param=%s)", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("field %s failed on '%s' validation", fe.Field(), fe.Tag())
}
