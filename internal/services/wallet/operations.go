package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "ledgerpay/internal/errors"
	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
)

// Fund credits amount to the user's wallet and records a deposit.
func (s *service) Fund(ctx context.Context, userID string, amount int64) (*models.Transaction, error) {
	start := time.Now()
	tx, err := s.fund(ctx, userID, amount)
	s.finish(ctx, OpFund, start, tx, err)
	return tx, err
}

// Withdraw debits amount from the user's wallet and records a withdrawal.
func (s *service) Withdraw(ctx context.Context, userID string, amount int64) (*models.Transaction, error) {
	start := time.Now()
	tx, err := s.withdraw(ctx, userID, amount)
	s.finish(ctx, OpWithdraw, start, tx, err)
	return tx, err
}

// Transfer moves amount from the sender's wallet to the wallet at
// receiverAddress and records one transfer entry.
func (s *service) Transfer(ctx context.Context, senderUserID, receiverAddress string, amount int64) (*models.Transaction, error) {
	start := time.Now()
	tx, err := s.transfer(ctx, senderUserID, receiverAddress, amount)
	s.finish(ctx, OpTransfer, start, tx, err)
	return tx, err
}

func (s *service) fund(ctx context.Context, userID string, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	wallet, err := s.store.Wallets().GetByUserID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}

	record := models.NewTransaction(models.TransactionTypeDeposit, userID, userID, wallet.WalletAddress, amount)
	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.Wallets().ApplyBalanceDelta(ctx, wallet.ID, amount); err != nil {
			return err
		}
		return s.appendEntry(ctx, tx, record, OpFund)
	})
	return s.settle(record, err)
}

func (s *service) withdraw(ctx context.Context, userID string, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	wallet, err := s.store.Wallets().GetByUserID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}

	record := models.NewTransaction(models.TransactionTypeWithdraw, userID, userID, wallet.WalletAddress, amount)
	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		locked, err := tx.Wallets().LockByIDs(ctx, wallet.ID)
		if err != nil {
			return err
		}
		if err := ensureCovers(locked[wallet.ID], amount); err != nil {
			return err
		}
		if _, err := tx.Wallets().ApplyBalanceDelta(ctx, wallet.ID, -amount); err != nil {
			return err
		}
		return s.appendEntry(ctx, tx, record, OpWithdraw)
	})
	return s.settle(record, err)
}

func (s *service) transfer(ctx context.Context, senderUserID, receiverAddress string, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	sender, err := s.store.Wallets().GetByUserID(ctx, senderUserID)
	if err != nil {
		return nil, translate(err)
	}
	if sender.WalletAddress == receiverAddress {
		return nil, apperrors.ErrSelfTransfer
	}

	receiver, err := s.store.Wallets().GetByAddress(ctx, receiverAddress)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeWalletNotFound, "no wallet with that address", err)
		}
		return nil, translate(err)
	}
	if receiver.ID == sender.ID {
		return nil, apperrors.ErrSelfTransfer
	}

	record := models.NewTransaction(models.TransactionTypeTransfer, senderUserID, receiver.UserID, receiver.WalletAddress, amount)
	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		// LockByIDs sorts, so two opposite transfers cannot deadlock.
		locked, err := tx.Wallets().LockByIDs(ctx, sender.ID, receiver.ID)
		if err != nil {
			return err
		}
		if err := ensureCovers(locked[sender.ID], amount); err != nil {
			return err
		}
		if _, err := tx.Wallets().ApplyBalanceDelta(ctx, sender.ID, -amount); err != nil {
			return err
		}
		if _, err := tx.Wallets().ApplyBalanceDelta(ctx, receiver.ID, amount); err != nil {
			return err
		}
		return s.appendEntry(ctx, tx, record, OpTransfer)
	})
	return s.settle(record, err)
}

func ensureCovers(wallet *models.Wallet, amount int64) error {
	if wallet.CanCover(amount) {
		return nil
	}
	return apperrors.Wrap(apperrors.CodeInsufficientFunds, apperrors.ErrInsufficientFunds.Message,
		fmt.Errorf("balance %d cannot cover %d", wallet.Balance, amount))
}

// appendEntry writes the ledger record, drawing a fresh reference for each
// attempt that collides with an existing one.
func (s *service) appendEntry(ctx context.Context, tx repositories.Store, record *models.Transaction, op string) error {
	for attempt := 1; attempt <= s.config.MaxReferenceAttempts; attempt++ {
		record.Reference = s.refs.Next()

		err := tx.Transactions().Append(ctx, record)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repositories.ErrDuplicateReference):
			s.metrics.RecordReferenceRetry(op)
			s.log.Warn("transaction reference collision",
				zap.String("reference", record.Reference),
				zap.Int("attempt", attempt))
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
			errors.Is(err, repositories.ErrConflict):
			return err
		default:
			return apperrors.Wrap(apperrors.CodeLedgerAppendFailed, apperrors.ErrLedgerAppendFailed.Message, err)
		}
	}
	return apperrors.Wrap(apperrors.CodeReferenceCollision, apperrors.ErrReferenceCollision.Message,
		fmt.Errorf("%d attempts exhausted", s.config.MaxReferenceAttempts))
}

// settle turns the outcome of the scope into the engine result. On failure
// the record is marked failed; it was never persisted.
func (s *service) settle(record *models.Transaction, err error) (*models.Transaction, error) {
	if err != nil {
		record.Fail()
		return record, translate(err)
	}
	return record, nil
}
