package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "ledgerpay/internal/errors"
	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/services/wallet"
)

// openTestDB connects to TEST_DATABASE_URL and recreates the ledger tables.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres integration test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, repositories.DropAll(db))
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() {
		_ = repositories.DropAll(db)
		_ = repositories.Close(db)
	})
	return db
}

func newAccount(t *testing.T, store repositories.Store, svc wallet.Service, balance int64) (*models.User, *models.Wallet) {
	t.Helper()
	ctx := context.Background()
	u := &models.User{Email: fmt.Sprintf("%d@example.com", time.Now().UnixNano()), PasswordHash: "x"}
	require.NoError(t, store.Users().Create(ctx, u))
	w, err := svc.CreateWallet(ctx, u.ID)
	require.NoError(t, err)
	if balance > 0 {
		_, err = svc.Fund(ctx, u.ID, balance)
		require.NoError(t, err)
	}
	return u, w
}

func balanceOf(t *testing.T, store repositories.Store, userID string) int64 {
	t.Helper()
	w, err := store.Wallets().GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	return w.Balance
}

func TestPostgres_Scenarios(t *testing.T) {
	db := openTestDB(t)
	store := repositories.NewStore(db, repositories.StoreOptions{LockTimeout: 2 * time.Second})
	svc := wallet.NewService(store, wallet.Config{}, wallet.Dependencies{})
	ctx := context.Background()

	alice, _ := newAccount(t, store, svc, 500)
	bob, bobWallet := newAccount(t, store, svc, 200)

	_, err := svc.Withdraw(ctx, alice.ID, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(200), balanceOf(t, store, alice.ID))

	_, err = svc.Withdraw(ctx, alice.ID, 300)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.Equal(t, int64(200), balanceOf(t, store, alice.ID))

	tx, err := svc.Transfer(ctx, alice.ID, bobWallet.WalletAddress, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balanceOf(t, store, alice.ID))
	assert.Equal(t, int64(300), balanceOf(t, store, bob.ID))

	stored, err := store.Transactions().GetByReference(ctx, tx.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, stored.Status)
	assert.Equal(t, bob.ID, stored.ReceiverID)
}

func TestPostgres_DuplicateReferenceKeepsScopeUsable(t *testing.T) {
	db := openTestDB(t)
	store := repositories.NewStore(db, repositories.StoreOptions{})
	svc := wallet.NewService(store, wallet.Config{}, wallet.Dependencies{})
	ctx := context.Background()

	alice, aliceWallet := newAccount(t, store, svc, 0)

	first := models.NewTransaction(models.TransactionTypeDeposit, alice.ID, alice.ID, aliceWallet.WalletAddress, 1)
	first.Reference = "TX-FIXED"
	require.NoError(t, store.Transactions().Append(ctx, first))

	err := store.WithinTransaction(ctx, func(tx repositories.Store) error {
		dup := models.NewTransaction(models.TransactionTypeDeposit, alice.ID, alice.ID, aliceWallet.WalletAddress, 1)
		dup.Reference = "TX-FIXED"
		if err := tx.Transactions().Append(ctx, dup); !errors.Is(err, repositories.ErrDuplicateReference) {
			return fmt.Errorf("expected duplicate reference, got %v", err)
		}
		assert.Equal(t, models.TransactionStatusPending, dup.Status)

		dup.Reference = "TX-FRESH"
		return tx.Transactions().Append(ctx, dup)
	})
	require.NoError(t, err)

	_, err = store.Transactions().GetByReference(ctx, "TX-FRESH")
	assert.NoError(t, err)
}

func TestPostgres_NegativeBalanceRejectedByStorage(t *testing.T) {
	db := openTestDB(t)
	store := repositories.NewStore(db, repositories.StoreOptions{})
	svc := wallet.NewService(store, wallet.Config{}, wallet.Dependencies{})
	ctx := context.Background()

	alice, aliceWallet := newAccount(t, store, svc, 50)

	err := store.WithinTransaction(ctx, func(tx repositories.Store) error {
		_, err := tx.Wallets().ApplyBalanceDelta(ctx, aliceWallet.ID, -100)
		return err
	})
	assert.ErrorIs(t, err, repositories.ErrNegativeBalance)
	assert.Equal(t, int64(50), balanceOf(t, store, alice.ID))
}

func TestPostgres_ConcurrentWithdrawals(t *testing.T) {
	db := openTestDB(t)
	store := repositories.NewStore(db, repositories.StoreOptions{LockTimeout: 5 * time.Second})
	svc := wallet.NewService(store, wallet.Config{}, wallet.Dependencies{})

	alice, _ := newAccount(t, store, svc, 500)

	const n = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(context.Background(), alice.ID, 100)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, int64(0), balanceOf(t, store, alice.ID))
}

func TestPostgres_OppositeTransfers(t *testing.T) {
	db := openTestDB(t)
	store := repositories.NewStore(db, repositories.StoreOptions{LockTimeout: 5 * time.Second})
	svc := wallet.NewService(store, wallet.Config{}, wallet.Dependencies{})

	alice, aliceWallet := newAccount(t, store, svc, 1000)
	bob, bobWallet := newAccount(t, store, svc, 1000)

	const rounds = 25
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), alice.ID, bobWallet.WalletAddress, 10)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), bob.ID, aliceWallet.WalletAddress, 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(2000), balanceOf(t, store, alice.ID)+balanceOf(t, store, bob.ID))
	assert.Equal(t, int64(1000), balanceOf(t, store, alice.ID))
}
