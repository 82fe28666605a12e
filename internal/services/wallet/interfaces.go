package wallet

import (
	"context"

	"ledgerpay/internal/models"
)

// Service defines the ledger engine
type Service interface {
	// Balance-affecting operations. Each returns the settled transaction.
	Fund(ctx context.Context, userID string, amount int64) (*models.Transaction, error)
	Withdraw(ctx context.Context, userID string, amount int64) (*models.Transaction, error)
	Transfer(ctx context.Context, senderUserID, receiverAddress string, amount int64) (*models.Transaction, error)

	// Wallet management
	CreateWallet(ctx context.Context, userID string) (*models.Wallet, error)
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)

	// Ledger lookups
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, int64, error)
}

// WalletCache is the read-side cache. It is never consulted for arithmetic.
type WalletCache interface {
	GetWallet(ctx context.Context, userID string) (*models.Wallet, bool, error)
	CacheWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, userIDs ...string) error
}

// EventPublisher receives every committed transaction.
type EventPublisher interface {
	PublishTransaction(ctx context.Context, tx *models.Transaction) error
}

// ReferenceGenerator yields candidate transaction references. Uniqueness is
// enforced by storage; the generator only has to make collisions unlikely.
type ReferenceGenerator interface {
	Next() string
}
