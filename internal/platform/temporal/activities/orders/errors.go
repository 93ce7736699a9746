package orders

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

// Application error types carried across the workflow boundary.
const (
	ErrTypeValidation        = "Validation"
	ErrTypeSelection         = "Selection"
	ErrTypeNotFound          = "NotFound"
	ErrTypeInsufficientStock = "InsufficientStock"
	ErrTypeConflict          = "Conflict"
)

type validationDetails struct {
	Field  string
	Reason string
}

type notFoundDetails struct {
	Entity string
	ID     string
}

type conflictDetails struct {
	Entity string
	Field  string
	Value  string
	Reason string
}

// EncodeError turns rejections into non-retryable application errors so
// Temporal stops retrying. Persistence failures stay retryable.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	var (
		validation *apperrors.ValidationError
		stock      *apperrors.InsufficientStockError
		selection  *apperrors.SelectionError
		notFound   *apperrors.NotFoundError
		conflict   *apperrors.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeValidation, err, validationDetails{validation.Field, validation.Reason})
	case errors.As(err, &stock):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInsufficientStock, err, stock.Shortages)
	case errors.As(err, &selection):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeSelection, err, selection.Reason)
	case errors.As(err, &notFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNotFound, err, notFoundDetails{notFound.Entity, fmt.Sprint(notFound.ID)})
	case errors.As(err, &conflict):
		value := ""
		if conflict.Value != nil {
			value = fmt.Sprint(conflict.Value)
		}
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeConflict, err, conflictDetails{conflict.Entity, conflict.Field, value, conflict.Reason})
	}
	return err
}

// DecodeError restores the typed error carried by a failed workflow. Errors it
// does not recognize are reported as persistence failures.
func DecodeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) || !appErr.HasDetails() {
		return apperrors.Wrap(op, err)
	}
	switch appErr.Type() {
	case ErrTypeValidation:
		var d validationDetails
		if appErr.Details(&d) == nil {
			return &apperrors.ValidationError{Field: d.Field, Reason: d.Reason}
		}
	case ErrTypeInsufficientStock:
		var shortages []apperrors.Shortage
		if appErr.Details(&shortages) == nil {
			return apperrors.NewInsufficientStock(shortages...)
		}
	case ErrTypeSelection:
		var reason string
		if appErr.Details(&reason) == nil {
			return &apperrors.SelectionError{Reason: reason}
		}
	case ErrTypeNotFound:
		var d notFoundDetails
		if appErr.Details(&d) == nil {
			return apperrors.NotFound(d.Entity, d.ID)
		}
	case ErrTypeConflict:
		var d conflictDetails
		if appErr.Details(&d) == nil {
			conflict := &apperrors.ConflictError{Entity: d.Entity, Field: d.Field, Reason: d.Reason}
			if d.Value != "" {
				conflict.Value = d.Value
			}
			return conflict
		}
	}
	return apperrors.Wrap(op, err)
}
