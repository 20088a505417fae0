package auth

import (
	"errors"
	"fmt"

	apperrors "github.com/spec-kit/gym-access/pkg/util/errorutil"
)

func markStoreUnavailable(err error) error {
	if errors.Is(err, apperrors.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
}
