package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Store is the unit of work handed to services. Outside WithinTransaction
// every call runs on its own; inside, every repository obtained from the
// scoped Store shares one database transaction.
type Store interface {
	Wallets() WalletRepository
	Transactions() TransactionRepository
	Users() UserRepository

	// WithinTransaction runs fn in one atomic scope. The scope commits when fn
	// returns nil and rolls back on error, panic or context cancellation.
	// Calling it on an already scoped Store joins the outer scope.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

type StoreOptions struct {
	// LockTimeout bounds how long a statement waits for a row lock.
	// Zero leaves the server default.
	LockTimeout time.Duration
	Isolation   sql.IsolationLevel
}

type gormStore struct {
	db   *gorm.DB
	opts StoreOptions
	inTx bool
}

// NewStore returns a Store backed by gorm. Isolation defaults to READ COMMITTED.
func NewStore(db *gorm.DB, opts StoreOptions) Store {
	if opts.Isolation == sql.LevelDefault {
		opts.Isolation = sql.LevelReadCommitted
	}
	return &gormStore{db: db, opts: opts}
}

func (s *gormStore) Wallets() WalletRepository {
	if !s.inTx {
		return NewWalletRepository(s.db)
	}
	return &walletRepository{db: s.db, inTx: true}
}

func (s *gormStore) Transactions() TransactionRepository {
	return NewTransactionRepository(s.db)
}

func (s *gormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *gormStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.opts.LockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.opts.LockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}
		return fn(&gormStore{db: tx, opts: s.opts, inTx: true})
	}, &sql.TxOptions{Isolation: s.opts.Isolation})

	return classifyError(err)
}
