// Package apperrors defines the error kinds shared by every bounded context.
// Callers branch on kinds with errors.Is and extract details with errors.As.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrSelection         = errors.New("invalid selection")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("conflict")
	ErrPersistence       = errors.New("persistence failure")
)

// ValidationError reports malformed or out-of-range input for a single field.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// NewValidation builds a ValidationError whose reason is taken from cause.
func NewValidation(field string, cause error) *ValidationError {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return &ValidationError{Field: field, Reason: reason, Err: cause}
}

// Invalid builds a ValidationError from a formatted reason.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// SelectionError rejects an empty or out-of-range basket selection.
type SelectionError struct {
	Reason string
}

func (e *SelectionError) Error() string { return "invalid selection: " + e.Reason }

func (e *SelectionError) Is(target error) bool { return target == ErrSelection }

// NotFoundError reports an entity that is absent or not owned by the caller.
type NotFoundError struct {
	Entity string
	ID     any
}

func NotFound(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Shortage describes one line that cannot be served from stock.
type Shortage struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

func (s Shortage) String() string {
	return fmt.Sprintf("%q requested %d, %d available", s.Name, s.Requested, s.Available)
}

// InsufficientStockError lists every line that failed the stock check.
type InsufficientStockError struct {
	Shortages []Shortage
}

func NewInsufficientStock(shortages ...Shortage) *InsufficientStockError {
	return &InsufficientStockError{Shortages: shortages}
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, s.String())
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ConflictError reports a uniqueness violation or a restricted delete.
type ConflictError struct {
	Entity string
	Field  string
	Value  any
	Reason string
}

// Duplicate builds a uniqueness conflict for entity.field = value.
func Duplicate(entity, field string, value any) *ConflictError {
	return &ConflictError{Entity: entity, Field: field, Value: value, Reason: "already exists"}
}

func (e *ConflictError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s with %s %v %s", e.Entity, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s %s: %s", e.Entity, e.Field, e.Reason)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// PersistenceError wraps an underlying storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func Persistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("persistence failure during %s", e.Op)
	}
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// IsKnown reports whether err already carries one of the kinds above.
func IsKnown(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrSelection) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrPersistence)
}

// Wrap tags unknown failures as persistence errors and passes known kinds through.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsKnown(err) {
		return err
	}
	return Persistence(op, err)
}
