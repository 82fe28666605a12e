package memory

import (
	"context"
	"math"
	"sort"
	"time"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
)

type walletRepo struct {
	s  *Store
	sc *scope
}

// view returns the scope's working copy when the row is locked, otherwise
// the last committed version.
func (r *walletRepo) view(id string) (*models.Wallet, error) {
	if r.sc != nil {
		if w, ok := r.sc.staged[id]; ok {
			if w.IsDeleted {
				return nil, repositories.ErrWalletNotFound
			}
			cp := *w
			return &cp, nil
		}
		for _, w := range r.sc.created {
			if w.ID == id {
				cp := w
				return &cp, nil
			}
		}
	}

	w, _, ok := r.s.committedWallet(id)
	if !ok || w.IsDeleted {
		return nil, repositories.ErrWalletNotFound
	}
	return &w, nil
}

func (r *walletRepo) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.view(id)
}

func (r *walletRepo) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.sc != nil {
		for _, w := range r.sc.created {
			if w.UserID == userID {
				cp := w
				return &cp, nil
			}
		}
	}
	r.s.mu.Lock()
	id, ok := r.s.byUser[userID]
	r.s.mu.Unlock()
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	return r.view(id)
}

func (r *walletRepo) GetByAddress(ctx context.Context, address string) (*models.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.sc != nil {
		for _, w := range r.sc.created {
			if w.WalletAddress == address {
				cp := w
				return &cp, nil
			}
		}
	}
	r.s.mu.Lock()
	id, ok := r.s.byAddress[address]
	r.s.mu.Unlock()
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	return r.view(id)
}

func (r *walletRepo) Create(ctx context.Context, wallet *models.Wallet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wallet.Prepare()
	wallet.Balance = 0
	wallet.IsDeleted = false
	now := time.Now()
	wallet.CreatedAt = now
	wallet.UpdatedAt = now

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.byUser[wallet.UserID]; ok {
		return repositories.ErrDuplicateWallet
	}
	if _, ok := r.s.byAddress[wallet.WalletAddress]; ok {
		return repositories.ErrDuplicateWallet
	}
	if r.sc != nil {
		for _, w := range r.sc.created {
			if w.UserID == wallet.UserID || w.WalletAddress == wallet.WalletAddress {
				return repositories.ErrDuplicateWallet
			}
		}
		r.sc.created = append(r.sc.created, *wallet)
		return nil
	}
	r.s.putWalletLocked(*wallet)
	return nil
}

func (r *walletRepo) SoftDelete(ctx context.Context, id string) error {
	if r.sc == nil {
		return r.s.WithinTransaction(ctx, func(tx repositories.Store) error {
			return tx.Wallets().SoftDelete(ctx, id)
		})
	}
	w, err := r.sc.lock(ctx, id)
	if err != nil {
		return err
	}
	w.IsDeleted = true
	w.UpdatedAt = time.Now()
	return nil
}

func (r *walletRepo) LockByIDs(ctx context.Context, ids ...string) (map[string]*models.Wallet, error) {
	if r.sc == nil {
		return nil, repositories.ErrNoActiveScope
	}

	ordered := append([]string(nil), ids...)
	sort.Strings(ordered)

	locked := make(map[string]*models.Wallet, len(ordered))
	for _, id := range ordered {
		if _, ok := locked[id]; ok {
			continue
		}
		w, err := r.sc.lock(ctx, id)
		if err != nil {
			return nil, err
		}
		cp := *w
		locked[id] = &cp
	}
	return locked, nil
}

func (r *walletRepo) ApplyBalanceDelta(ctx context.Context, id string, delta int64) (*models.Wallet, error) {
	if r.sc == nil {
		return nil, repositories.ErrNoActiveScope
	}
	w, err := r.sc.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	if delta > 0 && w.Balance > math.MaxInt64-delta {
		return nil, repositories.ErrBalanceOverflow
	}
	if w.Balance+delta < 0 {
		return nil, repositories.ErrNegativeBalance
	}
	w.Balance += delta
	w.UpdatedAt = time.Now()
	cp := *w
	return &cp, nil
}
