package application

import "github.com/Apurer/storekeeper/internal/shared/apperrors"

func mapError(op string, err error) error {
	if err == nil || apperrors.IsKnown(err) {
		return err
	}
	return apperrors.Wrap(op, err)
}
