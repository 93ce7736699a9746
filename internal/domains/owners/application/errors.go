package application

import (
	"errors"

	"github.com/Apurer/storekeeper/internal/domains/owners/domain"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrInvalidChatID):
		return apperrors.NewValidation("chatId", err)
	case errors.Is(err, domain.ErrInvalidEmail):
		return apperrors.NewValidation("email", err)
	case errors.Is(err, domain.ErrEmptyStoreName), errors.Is(err, domain.ErrStoreNameTooLong):
		return apperrors.NewValidation("storeName", err)
	case errors.Is(err, domain.ErrInvalidLanguage):
		return apperrors.NewValidation("language", err)
	}
	return apperrors.Wrap(op, err)
}
