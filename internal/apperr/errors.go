package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrAlreadyPaid          = errors.New("job already paid")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrDepositLimitExceeded = errors.New("deposit exceeds maximum allowed amount")
	ErrInternal             = errors.New("internal error")
)

// Internal wraps an unexpected persistence or infrastructure failure.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

// IsBusiness reports whether err is one of the typed failures other than ErrInternal.
func IsBusiness(err error) bool {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAlreadyPaid),
		errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrDepositLimitExceeded):
		return true
	default:
		return false
	}
}
