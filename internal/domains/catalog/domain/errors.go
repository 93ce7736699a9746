package domain

import "errors"

var (
	ErrInvalidOwner          = errors.New("owner id must be greater than zero")
	ErrNameTooShort          = errors.New("name must be at least 2 characters")
	ErrNameTooLong           = errors.New("name must be at most 255 characters")
	ErrNegativePurchasePrice = errors.New("purchase price must not be negative")
	ErrNegativeSalePrice     = errors.New("sale price must not be negative")
	ErrNegativeQuantity      = errors.New("quantity must not be negative")
	ErrSKUTooLong            = errors.New("sku must be at most 64 characters")
	ErrEmptyCategoryName     = errors.New("category name is required")
	ErrInvalidCategoryID     = errors.New("category id must be greater than zero")
	ErrInvalidPrice          = errors.New("price must be a non-negative number")
	ErrInvalidQuantity       = errors.New("quantity must be a non-negative integer")
	ErrUnknownField          = errors.New("field is not editable")
	ErrQuantityOverflow      = errors.New("quantity change exceeds the supported range")
)
