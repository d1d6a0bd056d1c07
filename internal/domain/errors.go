package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"deskbook/internal/models"
)

var (
	// ErrNotFound means the referenced identifier has no record.
	ErrNotFound = errors.New("desk not found")

	// ErrBackendUnavailable means the physical store could not be reached
	// or timed out. Drivers log the underlying cause and return only this
	// sentinel, so connection strings and driver internals never reach
	// callers.
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)

// ValidationError carries field-level detail for malformed or missing
// input on create/update.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// PartialBulkError reports a bulk update that mutated a strict subset of
// the matching records before failing. Updated holds the records already
// persisted, in listing order, so callers can decide whether to retry the
// remainder.
type PartialBulkError struct {
	Updated []models.Desk
	Err     error
}

func (e *PartialBulkError) Error() string {
	return fmt.Sprintf("bulk update failed after %d records: %v", len(e.Updated), e.Err)
}

func (e *PartialBulkError) Unwrap() error {
	return e.Err
}
