package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrLayoutNotFound is returned when a layout file does not exist in the store.
var ErrLayoutNotFound = errors.New("layout not found")

// ErrInvalidFilename is returned for filenames that could escape the layout directory.
var ErrInvalidFilename = errors.New("invalid layout filename")

// ValidationError carries field-level messages for rejected input.
type ValidationError struct {
	Fields map[string][]string
	Cause  error
}

// NewValidationError creates a ValidationError with a single message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
