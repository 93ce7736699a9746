package errors

import (
	"errors"

	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

// FromAppError maps the shared error kinds onto problem details. A quantity
// rejected for lack of stock stays a validation problem and also carries the
// shortages.
func FromAppError(err error) (ProblemDetail, bool) {
	var (
		stock      *apperrors.InsufficientStockError
		validation *apperrors.ValidationError
		selection  *apperrors.SelectionError
		notFound   *apperrors.NotFoundError
		conflict   *apperrors.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		field := validation.Field
		if field == "" {
			field = "request"
		}
		problem := NewValidationProblem(map[string]string{field: validation.Reason}).WithDetail(validation.Error())
		if errors.As(err, &stock) {
			problem = problem.WithExtension("shortages", stock.Shortages)
		}
		return problem, true
	case errors.As(err, &stock):
		return ErrInsufficientStock.WithDetail(stock.Error()).WithExtension("shortages", stock.Shortages), true
	case errors.As(err, &selection):
		return ErrSelection.WithDetail(selection.Reason), true
	case errors.As(err, &notFound):
		return NewNotFoundProblem(notFound.Entity, notFound.ID), true
	case errors.As(err, &conflict):
		problem := ErrConflict.WithDetail(conflict.Error()).WithExtension("entity", conflict.Entity)
		if conflict.Field != "" {
			problem = problem.WithExtension("field", conflict.Field)
		}
		return problem, true
	case errors.Is(err, apperrors.ErrPersistence):
		return ErrInternal.WithDetail("the store could not complete the request"), true
	}
	return ProblemDetail{}, false
}
