package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"ledgerpay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db   *gorm.DB
	inTx bool
}

// NewWalletRepository returns an unscoped repository. LockByIDs and
// ApplyBalanceDelta are only usable through Store.WithinTransaction.
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("is_deleted = ?", false)
}

func (r *walletRepository) first(ctx context.Context, query string, arg interface{}) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.active(ctx).Where(query, arg).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", classifyError(err))
	}
	return &wallet, nil
}

func (r *walletRepository) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *walletRepository) GetByAddress(ctx context.Context, address string) (*models.Wallet, error) {
	return r.first(ctx, "wallet_address = ?", address)
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateWallet
		}
		return fmt.Errorf("failed to create wallet: %w", classifyError(err))
	}
	return nil
}

func (r *walletRepository) SoftDelete(ctx context.Context, id string) error {
	result := r.active(ctx).Model(&models.Wallet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_deleted": true, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("failed to delete wallet: %w", classifyError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (r *walletRepository) lockOne(ctx context.Context, id string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.active(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", classifyError(err))
	}
	return &wallet, nil
}

func (r *walletRepository) LockByIDs(ctx context.Context, ids ...string) (map[string]*models.Wallet, error) {
	if !r.inTx {
		return nil, ErrNoActiveScope
	}

	ordered := append([]string(nil), ids...)
	sort.Strings(ordered)

	locked := make(map[string]*models.Wallet, len(ordered))
	for _, id := range ordered {
		if _, ok := locked[id]; ok {
			continue
		}
		wallet, err := r.lockOne(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = wallet
	}
	return locked, nil
}

func (r *walletRepository) ApplyBalanceDelta(ctx context.Context, id string, delta int64) (*models.Wallet, error) {
	if !r.inTx {
		return nil, ErrNoActiveScope
	}

	wallet, err := r.lockOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if delta > 0 && wallet.Balance > math.MaxInt64-delta {
		return nil, ErrBalanceOverflow
	}
	if wallet.Balance+delta < 0 {
		return nil, ErrNegativeBalance
	}

	result := r.db.WithContext(ctx).Model(wallet).
		Clauses(clause.Returning{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update balance: %w", classifyError(result.Error))
	}
	if result.RowsAffected == 0 {
		return nil, ErrWalletNotFound
	}
	return wallet, nil
}
