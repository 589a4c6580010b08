package config

import (
	"fmt"
	"strings"
)

// FieldError is one invalid value, named by its dotted config path.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Reason
}

// ValidationError is every problem Validate found. Errors returned by a
// section's own Validate (local, memory, engine) are kept as they are, so
// errors.Is and errors.As reach them through Unwrap.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "config validation failed"
	case 1:
		return "config validation failed: " + e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("config validation failed with %d errors:\n  - %s",
		len(e.Errors), strings.Join(msgs, "\n  - "))
}

// Unwrap returns the collected errors.
func (e *ValidationError) Unwrap() []error {
	return e.Errors
}

// Field records an invalid value at path.
func (e *ValidationError) Field(path, format string, args ...any) {
	e.Errors = append(e.Errors, &FieldError{Field: path, Reason: fmt.Sprintf(format, args...)})
}

// Section records the result of a section's Validate. nil is ignored.
func (e *ValidationError) Section(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors reports whether anything was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns e, or nil when nothing was recorded.
func (e *ValidationError) ToError() error {
	if e.HasErrors() {
		return e
	}
	return nil
}
