package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration validation failures.
var (
	ErrNegativeCut    = errors.New("cut must be positive")
	ErrBadSectorCount = errors.New("sector count must be positive")
	ErrBadEtaRange    = errors.New("eta range must be ascending")
	ErrNegativePtMin  = errors.New("pt_min must not be negative")
)

// ValidationError wraps a sentinel with the offending field and value.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%s)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
