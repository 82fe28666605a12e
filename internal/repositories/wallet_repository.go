package repositories

import (
	"context"
	"errors"

	"ledgerpay/internal/models"
)

var (
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrDuplicateWallet = errors.New("wallet already exists")
	ErrNegativeBalance = errors.New("balance would become negative")
	ErrBalanceOverflow = errors.New("balance would overflow")
)

// WalletRepository defines the interface for wallet-related database operations.
// Every lookup ignores soft-deleted wallets.
type WalletRepository interface {
	GetByID(ctx context.Context, id string) (*models.Wallet, error)
	GetByUserID(ctx context.Context, userID string) (*models.Wallet, error)
	GetByAddress(ctx context.Context, address string) (*models.Wallet, error)
	Create(ctx context.Context, wallet *models.Wallet) error
	SoftDelete(ctx context.Context, id string) error

	// LockByIDs takes a row lock on each wallet, in ascending id order, and
	// holds it until the surrounding scope ends. Scope only.
	LockByIDs(ctx context.Context, ids ...string) (map[string]*models.Wallet, error)

	// ApplyBalanceDelta adds delta to the locked row and returns the updated
	// wallet. The row lock is taken if not already held. Scope only.
	ApplyBalanceDelta(ctx context.Context, id string, delta int64) (*models.Wallet, error)
}
