package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/spec-kit/gym-access/pkg/util/errorutil"
)

// storeErr keeps pgx.ErrNoRows as-is and marks every other failure as an
// unavailable store.
func storeErr(err error) error {
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
}

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolation = "23505"

var errNoPool = fmt.Errorf("%w: postgres pool not configured", apperrors.ErrStoreUnavailable)
