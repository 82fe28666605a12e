package wallet

import (
	"context"

	"ledgerpay/internal/models"
)

// noopCache is used when no cache is configured: every read is a miss.
type noopCache struct{}

func (noopCache) GetWallet(context.Context, string) (*models.Wallet, bool, error) {
	return nil, false, nil
}
func (noopCache) CacheWallet(context.Context, *models.Wallet) error     { return nil }
func (noopCache) InvalidateWallet(context.Context, ...string) error     { return nil }

type noopPublisher struct{}

func (noopPublisher) PublishTransaction(context.Context, *models.Transaction) error { return nil }

// participants returns the distinct users whose cached wallet views a
// transaction makes stale.
func participants(tx *models.Transaction) []string {
	if tx.SenderID == tx.ReceiverID {
		return []string{tx.SenderID}
	}
	return []string{tx.SenderID, tx.ReceiverID}
}
