// Package store defines the error taxonomy shared by every accessor of the
// prompt and catalog tables.
//
// Callers match on the sentinels with errors.Is and extract details with
// errors.As. The accessors never retry: ErrUnavailable marks a transient fault
// the caller may retry on its own.
package store

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when no active row matches a lookup key.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is returned on connectivity failures and other
	// transient database faults.
	ErrUnavailable = errors.New("store unavailable")
	// ErrConstraintViolation is returned when a write collides with a unique
	// key or primary key.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// NotFoundError identifies the missing row.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError describes a malformed write payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConstraintError reports a uniqueness or primary key collision.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint == "" {
		return "constraint violation"
	}
	return fmt.Sprintf("constraint %q violated", e.Constraint)
}

// Is reports whether target is ErrConstraintViolation.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// UnavailableError wraps a transient database fault with the operation that
// hit it.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: store unavailable: %v", e.Op, e.Err)
}

// Is reports whether target is ErrUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Required returns a ValidationError for a missing field.
func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "required"}
}
