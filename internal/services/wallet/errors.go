package wallet

import (
	"context"
	"errors"

	apperrors "ledgerpay/internal/errors"
	"ledgerpay/internal/repositories"
)

// translate maps storage errors onto domain errors. Domain errors and
// context errors pass through untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, repositories.ErrWalletNotFound):
		return apperrors.Wrap(apperrors.CodeWalletNotFound, apperrors.ErrWalletNotFound.Message, err)
	case errors.Is(err, repositories.ErrNegativeBalance):
		return apperrors.Wrap(apperrors.CodeInsufficientFunds, apperrors.ErrInsufficientFunds.Message, err)
	case errors.Is(err, repositories.ErrBalanceOverflow):
		return apperrors.Wrap(apperrors.CodeInvalidAmount, "amount would overflow the receiving balance", err)
	case errors.Is(err, repositories.ErrConflict):
		return apperrors.Wrap(apperrors.CodeStorageConflict, apperrors.ErrStorageConflict.Message, err)
	case errors.Is(err, repositories.ErrDuplicateWallet):
		return apperrors.Wrap(apperrors.CodeWalletExists, apperrors.ErrWalletExists.Message, err)
	case errors.Is(err, repositories.ErrTransactionNotFound):
		return apperrors.Wrap(apperrors.CodeTransactionNotFound, apperrors.ErrTransactionNotFound.Message, err)
	default:
		return apperrors.Wrap(apperrors.CodeInternal, "internal error", err)
	}
}

// errorType is the metrics label for err.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	default:
		return string(apperrors.CodeOf(err))
	}
}
