package application

import (
	"errors"

	"github.com/Apurer/storekeeper/internal/domains/catalog/domain"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

var fieldErrors = []struct {
	err   error
	field domain.Field
}{
	{domain.ErrNameTooShort, domain.FieldName},
	{domain.ErrNameTooLong, domain.FieldName},
	{domain.ErrEmptyCategoryName, domain.FieldName},
	{domain.ErrNegativePurchasePrice, domain.FieldPurchasePrice},
	{domain.ErrNegativeSalePrice, domain.FieldSalePrice},
	{domain.ErrInvalidPrice, domain.FieldSalePrice},
	{domain.ErrNegativeQuantity, domain.FieldQuantity},
	{domain.ErrInvalidQuantity, domain.FieldQuantity},
	{domain.ErrSKUTooLong, domain.FieldSKU},
	{domain.ErrInvalidCategoryID, domain.FieldCategory},
	{domain.ErrUnknownField, "field"},
	{domain.ErrInvalidOwner, "ownerId"},
}

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var priceErr *domain.PriceError
	if errors.As(err, &priceErr) {
		return apperrors.NewValidation(string(priceErr.Field), priceErr.Err)
	}
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			return apperrors.NewValidation(string(fe.field), err)
		}
	}
	return apperrors.Wrap(op, err)
}

// mapEditError keeps the field of the edit that failed, which matters for
// price errors shared by both price fields.
func mapEditError(edit domain.Edit, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsKnown(err) {
		return err
	}
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			return apperrors.NewValidation(string(edit.Field()), err)
		}
	}
	return mapError("update product", err)
}
