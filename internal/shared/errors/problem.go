// Package errors provides RFC 7807 Problem Details for HTTP APIs.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is the application/problem+json body every failed request
// returns (https://www.rfc-editor.org/rfc/rfc7807). Instance defaults to the
// request path; Extensions carry per-problem members such as field errors or
// the shortfall of an insufficient-stock failure.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy carrying key. The extension map is cloned so
// shared templates are never mutated.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	extensions := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		extensions[k] = v
	}
	extensions[key] = value
	p.Extensions = extensions
	return p
}

// Problem type URIs reported in the "type" member.
const (
	TypeValidation        = "/problems/validation-error"
	TypeSelection         = "/problems/invalid-selection"
	TypeNotFound          = "/problems/not-found"
	TypeConflict          = "/problems/conflict"
	TypeInsufficientStock = "/problems/insufficient-stock"
	TypeInternal          = "/problems/internal-error"
	TypeForbidden         = "/problems/forbidden"
	TypeBadRequest        = "/problems/bad-request"
)

func template(problemType string, status int) ProblemDetail {
	return ProblemDetail{Type: problemType, Title: titles[problemType], Status: status}
}

var titles = map[string]string{
	TypeValidation:        "Validation Error",
	TypeSelection:         "Invalid Selection",
	TypeNotFound:          "Resource Not Found",
	TypeConflict:          "Conflict",
	TypeInsufficientStock: "Insufficient Stock",
	TypeInternal:          "Internal Server Error",
	TypeForbidden:         "Forbidden",
	TypeBadRequest:        "Bad Request",
}

// Templates copied by FromAppError and the handlers.
var (
	ErrNotFound   = template(TypeNotFound, http.StatusNotFound)
	ErrValidation = template(TypeValidation, http.StatusBadRequest)
	ErrBadRequest = template(TypeBadRequest, http.StatusBadRequest)
	ErrConflict   = template(TypeConflict, http.StatusConflict)
	ErrInternal   = template(TypeInternal, http.StatusInternalServerError)
	ErrForbidden  = template(TypeForbidden, http.StatusForbidden)

	// ErrSelection rejects an empty or out-of-range basket selection.
	ErrSelection = template(TypeSelection, http.StatusBadRequest)
	// ErrInsufficientStock is returned when a line asks for more than is on hand.
	ErrInsufficientStock = template(TypeInsufficientStock, http.StatusConflict)
)

// NewValidationProblem creates a validation error with field-level details.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}

// NewFieldProblem rejects a single request field.
func NewFieldProblem(field, reason string) ProblemDetail {
	return NewValidationProblem(map[string]string{field: reason}).
		WithDetail(fmt.Sprintf("%s %s", field, reason))
}

// NewNotFoundProblem creates a not found error for a specific resource.
func NewNotFoundProblem(resourceType string, identifier any) ProblemDetail {
	return ErrNotFound.
		WithDetail(fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier)).
		WithExtension("resourceType", resourceType).
		WithExtension("identifier", identifier)
}
