package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt marks a settings document that could not be parsed.
	// Callers fall back to defaults instead of propagating it.
	ErrCorrupt = errors.New("settings file is corrupt")

	// ErrValidation marks a record rejected before any write happened.
	ErrValidation = errors.New("settings validation failed")

	// ErrIO marks an underlying filesystem failure. The in-memory record
	// stays live and the next save retries naturally.
	ErrIO = errors.New("settings io failure")
)

// ValidationError reports the field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
