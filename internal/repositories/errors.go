package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrConflict means the database aborted the work because of concurrent
	// access: serialization failure, deadlock, or a lock wait timeout.
	ErrConflict = errors.New("storage conflict")
	// ErrNoActiveScope is returned by operations that must run inside
	// Store.WithinTransaction.
	ErrNoActiveScope = errors.New("operation requires an active transaction")
)

// Postgres SQLSTATE codes the repositories care about.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
)

const balanceCheckConstraint = "chk_wallets_balance_non_negative"

func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

func pgCode(err error) string {
	if pgErr := pgError(err); pgErr != nil {
		return pgErr.Code
	}
	return ""
}

// classifyError maps driver errors onto repository sentinels, keeping the
// original error in the chain.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConflict) {
		return err
	}
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case pgCheckViolation:
		if pgError(err).ConstraintName == balanceCheckConstraint {
			return fmt.Errorf("%w: %w", ErrNegativeBalance, err)
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}
