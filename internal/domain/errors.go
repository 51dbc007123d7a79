package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed or out-of-range query parameters.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound signals a missing resource or an unresolvable geocode input.
	ErrNotFound = errors.New("not found")
	// ErrProviderUnavailable signals that every geocoding provider failed or timed out.
	ErrProviderUnavailable = errors.New("geocode providers unavailable")
	// ErrStore signals a failed query against the persisted store.
	ErrStore = errors.New("store query failed")
)

// ValidationError wraps ErrValidation with the offending field and reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for a named parameter.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StoreError wraps ErrStore with the underlying cause.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return ErrStore.Error() + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return ErrStore }

// WrapStore converts a persistence failure into a domain store error.
// A nil error passes through unchanged.
func WrapStore(err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Err: err}
}
