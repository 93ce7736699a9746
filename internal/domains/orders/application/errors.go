package application

import (
	"errors"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case apperrors.IsKnown(err):
		return err
	case errors.Is(err, domain.ErrInvalidTransition):
		return apperrors.NewValidation("basket", err)
	case errors.Is(err, domain.ErrEmptyConversation):
		return apperrors.NewValidation("conversationId", err)
	}
	return apperrors.Wrap(op, err)
}
