package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// Validation errors
	ErrValidation       = errors.New("validation failed")
	ErrNameCollision    = errors.New("column name already exists")
	ErrWrongKind        = errors.New("column has wrong kind")
	ErrLengthMismatch   = errors.New("column length does not match row count")
	ErrUnknownOperator  = errors.New("unknown comparison operator")
	ErrCoercion         = errors.New("value cannot be coerced to column kind")
	ErrDomainViolation  = errors.New("input outside operator domain")
	ErrIncompleteLabels = fmt.Errorf("%w: unmapped categorical value", ErrDomainViolation)

	// Data errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrComputation      = errors.New("computation failed")

	// State errors
	ErrInvalidState = errors.New("procedure not in a valid state for this step")
	ErrStale        = errors.New("inputs changed since the result was computed")
)

// Error constructors with context
func NewNotFoundError(resource string, name string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, resource, name)
}

func NewColumnNotFoundError(name string) error {
	return fmt.Errorf("%w %q", ErrColumnNotFound, name)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w for %s: %s", ErrValidation, field, reason)
}

func NewCollisionError(name string) error {
	return fmt.Errorf("%w: %q", ErrNameCollision, name)
}

func NewInsufficientDataError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInsufficientData, reason)
}

func NewDomainError(reason string) error {
	return fmt.Errorf("%w: %s", ErrDomainViolation, reason)
}

func NewComputationError(step string, err error) error {
	return fmt.Errorf("%w in %s: %v", ErrComputation, step, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrWrongKind) ||
		errors.Is(err, ErrUnknownOperator) ||
		errors.Is(err, ErrCoercion) ||
		errors.Is(err, ErrLengthMismatch)
}

func IsCollisionError(err error) bool {
	return errors.Is(err, ErrNameCollision)
}
