// Package memory provides an in-process repositories.Store. It keeps the
// same guarantees as the database store: per-wallet row locks held until the
// scope ends, writes staged and applied atomically on commit, and references
// reserved while a scope is open so two scopes can never commit the same one.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
)

type Options struct {
	// LockTimeout bounds the wait for a row lock. Zero waits until the
	// context is done.
	LockTimeout time.Duration
}

type Store struct {
	opts Options

	mu        sync.Mutex
	wallets   map[string]models.Wallet
	byUser    map[string]string
	byAddress map[string]string
	rowLocks  map[string]chan struct{}
	txns      map[string]models.Transaction
	byRef     map[string]string
	txOrder   []string
	reserved  map[string]struct{}
	users     map[string]models.User
	byEmail   map[string]string
}

var _ repositories.Store = (*Store)(nil)

func New(opts Options) *Store {
	return &Store{
		opts:      opts,
		wallets:   make(map[string]models.Wallet),
		byUser:    make(map[string]string),
		byAddress: make(map[string]string),
		rowLocks:  make(map[string]chan struct{}),
		txns:      make(map[string]models.Transaction),
		byRef:     make(map[string]string),
		reserved:  make(map[string]struct{}),
		users:     make(map[string]models.User),
		byEmail:   make(map[string]string),
	}
}

func (s *Store) Wallets() repositories.WalletRepository {
	return &walletRepo{s: s}
}

func (s *Store) Transactions() repositories.TransactionRepository {
	return &transactionRepo{s: s}
}

func (s *Store) Users() repositories.UserRepository {
	return &userRepo{s: s}
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sc := newScope(s)
	committed := false
	defer func() {
		if !committed {
			sc.rollback()
		}
		sc.unlockAll()
	}()

	if err := fn(&scopedStore{s: s, sc: sc}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sc.commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// PutWallet inserts or replaces a committed wallet as is. Fixtures only.
func (s *Store) PutWallet(w models.Wallet) {
	w.Prepare()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putWalletLocked(w)
}

// TransactionCount returns the number of committed ledger entries.
func (s *Store) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txns)
}

func (s *Store) putWalletLocked(w models.Wallet) {
	s.wallets[w.ID] = w
	s.byUser[w.UserID] = w.ID
	s.byAddress[w.WalletAddress] = w.ID
	if _, ok := s.rowLocks[w.ID]; !ok {
		s.rowLocks[w.ID] = make(chan struct{}, 1)
	}
}

func (s *Store) committedWallet(id string) (models.Wallet, chan struct{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	return w, s.rowLocks[id], ok
}

type scopedStore struct {
	s  *Store
	sc *scope
}

func (ss *scopedStore) Wallets() repositories.WalletRepository {
	return &walletRepo{s: ss.s, sc: ss.sc}
}

func (ss *scopedStore) Transactions() repositories.TransactionRepository {
	return &transactionRepo{s: ss.s, sc: ss.sc}
}

// Users are not staged; writes apply immediately.
func (ss *scopedStore) Users() repositories.UserRepository {
	return &userRepo{s: ss.s}
}

func (ss *scopedStore) WithinTransaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return fn(ss)
}

// scope is one open unit of work.
type scope struct {
	s        *Store
	held     []string
	staged   map[string]*models.Wallet
	created  []models.Wallet
	appended []models.Transaction
}

func newScope(s *Store) *scope {
	return &scope{s: s, staged: make(map[string]*models.Wallet)}
}

// lock acquires the row lock for id and stages a working copy of the row.
func (sc *scope) lock(ctx context.Context, id string) (*models.Wallet, error) {
	if w, ok := sc.staged[id]; ok {
		if w.IsDeleted {
			return nil, repositories.ErrWalletNotFound
		}
		return w, nil
	}

	w, ch, ok := sc.s.committedWallet(id)
	if !ok || w.IsDeleted {
		return nil, repositories.ErrWalletNotFound
	}

	var timeout <-chan time.Time
	if sc.s.opts.LockTimeout > 0 {
		timer := time.NewTimer(sc.s.opts.LockTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, fmt.Errorf("%w: lock wait timeout on wallet %s", repositories.ErrConflict, id)
	}
	sc.held = append(sc.held, id)

	// Re-read: the row may have changed while we waited.
	w, _, _ = sc.s.committedWallet(id)
	staged := w
	sc.staged[id] = &staged
	if staged.IsDeleted {
		return nil, repositories.ErrWalletNotFound
	}
	return &staged, nil
}

func (sc *scope) unlockAll() {
	sc.s.mu.Lock()
	locks := make([]chan struct{}, 0, len(sc.held))
	for _, id := range sc.held {
		locks = append(locks, sc.s.rowLocks[id])
	}
	sc.s.mu.Unlock()

	for _, ch := range locks {
		<-ch
	}
	sc.held = nil
}

func (sc *scope) rollback() {
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	for _, tx := range sc.appended {
		delete(sc.s.reserved, tx.Reference)
	}
	sc.appended = nil
	sc.created = nil
	sc.staged = make(map[string]*models.Wallet)
}

func (sc *scope) commit() error {
	s := sc.s
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make(map[string]struct{}, len(sc.created))
	for _, w := range sc.created {
		if _, ok := s.byUser[w.UserID]; ok {
			return repositories.ErrDuplicateWallet
		}
		if _, ok := s.byAddress[w.WalletAddress]; ok {
			return repositories.ErrDuplicateWallet
		}
		if _, ok := users[w.UserID]; ok {
			return repositories.ErrDuplicateWallet
		}
		users[w.UserID] = struct{}{}
	}

	ids := make([]string, 0, len(sc.staged))
	for id := range sc.staged {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s.wallets[id] = *sc.staged[id]
	}
	for _, w := range sc.created {
		s.putWalletLocked(w)
	}
	for _, tx := range sc.appended {
		delete(s.reserved, tx.Reference)
		s.txns[tx.ID] = tx
		s.byRef[tx.Reference] = tx.ID
		s.txOrder = append(s.txOrder, tx.ID)
	}
	return nil
}
