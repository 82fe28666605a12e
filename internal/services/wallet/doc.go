/*
Package wallet implements the ledger engine: fund, withdraw and transfer
against per-user wallets, each recorded as one immutable transaction entry.

Every operation runs in a single atomic scope obtained from
repositories.Store:

  - wallet rows are locked (SELECT ... FOR UPDATE) before the balance is
    checked, so the check and the write see the same value
  - transfers lock both wallets in ascending wallet id order
  - the balance change and the ledger append commit together or not at all

Usage:

	store := repositories.NewStore(db, repositories.StoreOptions{LockTimeout: 5 * time.Second})
	svc := wallet.NewService(store, wallet.Config{}, wallet.Dependencies{Logger: log})

	tx, err := svc.Fund(ctx, userID, 50000)
	tx, err = svc.Withdraw(ctx, userID, 30000)
	tx, err = svc.Transfer(ctx, userID, receiverAddress, 10000)

Amounts are int64 minor units and must be positive.

Error Handling:

Failures are *errors.DomainError values, except context cancellation and
deadline errors which are returned unchanged. Match them with errors.Is
against the sentinels in ledgerpay/internal/errors, or read the Code.
REFERENCE_COLLISION and STORAGE_CONFLICT are transient; the operation had
no effect and may be retried by the caller.

Side effects:

Cache invalidation, event publishing and metrics run only after commit.
Their failures are logged and never change the result of the operation.
*/
package wallet
