package platewise

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("platewise: validation failed")

	// ErrNotFound is returned when an operation targets an entity that doesn't exist.
	ErrNotFound = errors.New("platewise: entity not found")

	// ErrInvalidCursor is returned when a pagination token is malformed.
	ErrInvalidCursor = errors.New("platewise: invalid cursor")

	// ErrConflict is returned when a create collides with an existing entity id.
	ErrConflict = errors.New("platewise: conflicting write")
)

// ValidationError describes rejected caller input.
type ValidationError struct {
	// Field is the offending input field, empty when the error spans several fields.
	Field string

	// Reason is a human-readable explanation.
	Reason string

	// Fields maps field names to messages when more than one field failed.
	Fields map[string]string
}

// Invalid returns a ValidationError for a single field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	switch {
	case len(e.Fields) > 0:
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		msgs := make([]string, 0, len(names))
		for _, name := range names {
			msgs = append(msgs, fmt.Sprintf("%s %s", name, e.Fields[name]))
		}
		return "platewise: invalid input: " + strings.Join(msgs, "; ")
	case e.Field != "":
		return fmt.Sprintf("platewise: invalid %s: %s", e.Field, e.Reason)
	default:
		return "platewise: invalid input: " + e.Reason
	}
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// CascadeError reports a cascade delete that stopped before the parent was removed.
// Some children may already be gone; re-running the same delete resumes the cascade.
type CascadeError struct {
	ParentType string
	ParentID   string
	Err        error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("platewise: cascade delete of %s %s interrupted: %v", e.ParentType, e.ParentID, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an error returned by this module to an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidCursor):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
