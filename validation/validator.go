package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Error is returned when one or more fields fail validation. Fields keep
// the order in which checks ran.
type Error struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *Error) Error() string {
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation: " + strings.Join(messages, "; ")
}

// First returns the earliest failing field.
func (e *Error) First() FieldError {
	if len(e.Fields) == 0 {
		return FieldError{}
	}
	return e.Fields[0]
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag,omitempty"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, tag string, value any, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Tag:     tag,
		Value:   value,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an *Error if any check failed, nil otherwise.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}
	return &Error{Fields: v.errors}
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "required", value, "is required")
	}
	return v
}

// Pattern checks that a non-empty string matches re.
func (v *Validator) Pattern(field, value string, re *regexp.Regexp) *Validator {
	if value == "" {
		return v
	}
	if !re.MatchString(value) {
		v.AddError(field, "pattern", value, "does not match required format")
	}
	return v
}

// DurationRange checks that a non-zero duration lies within [minVal, maxVal].
func (v *Validator) DurationRange(field string, value, minVal, maxVal time.Duration) *Validator {
	if value == 0 {
		return v
	}
	if value < minVal || value > maxVal {
		v.AddError(field, "range", value, fmt.Sprintf("must be between %s and %s", minVal, maxVal))
	}
	return v
}

// OneOf checks if a non-empty value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, "oneof", value, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field string, value any, message string) *Validator {
	if !condition {
		v.AddError(field, "custom", value, message)
	}
	return v
}
