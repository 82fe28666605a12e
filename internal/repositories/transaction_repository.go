package repositories

import (
	"context"
	"errors"

	"ledgerpay/internal/models"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateReference  = errors.New("transaction reference already exists")
	ErrInvalidTransaction  = errors.New("invalid transaction")
)

// TransactionRepository is the append-only ledger. There is deliberately no
// update or delete.
type TransactionRepository interface {
	// Append persists a pending record and marks it completed. On a reference
	// collision it returns ErrDuplicateReference and leaves the record
	// pending; any other failure marks it failed.
	Append(ctx context.Context, tx *models.Transaction) error

	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)

	// ListByUser returns entries where the user is sender or receiver,
	// newest first, together with the total count.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, int64, error)
}
