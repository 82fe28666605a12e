package wallet

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	apperrors "ledgerpay/internal/errors"
	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type service struct {
	store     repositories.Store
	cache     WalletCache
	publisher EventPublisher
	refs      ReferenceGenerator
	config    Config
	metrics   MetricsCollector
	log       *zap.Logger
	loads     singleflight.Group
}

// NewService creates a new ledger service
func NewService(store repositories.Store, config Config, deps Dependencies) Service {
	if store == nil {
		panic("store is required")
	}

	// Set default configuration values if not provided
	if config.MaxReferenceAttempts <= 0 {
		config.MaxReferenceAttempts = DefaultMaxReferenceAttempts
	}
	if config.SideEffectTimeout <= 0 {
		config.SideEffectTimeout = DefaultSideEffectTimeout
	}

	if deps.Cache == nil {
		deps.Cache = noopCache{}
	}
	if deps.Publisher == nil {
		deps.Publisher = noopPublisher{}
	}
	if deps.References == nil {
		deps.References = NewULIDReferences()
	}
	// Metrics is optional, create no-op collector if nil
	if deps.Metrics == nil {
		deps.Metrics = &NoopMetricsCollector{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &service{
		store:     store,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		refs:      deps.References,
		config:    config,
		metrics:   deps.Metrics,
		log:       deps.Logger.Named("ledger"),
	}
}

func (s *service) CreateWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	wallet := &models.Wallet{UserID: userID}
	if err := s.store.Wallets().Create(ctx, wallet); err != nil {
		return nil, translate(err)
	}
	s.log.Info("wallet created",
		zap.String("user_id", userID),
		zap.String("wallet_address", wallet.WalletAddress))
	return wallet, nil
}

// GetWallet serves the read view of a wallet, from cache when possible.
// Concurrent misses for one user share a single database read.
func (s *service) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	cached, found, err := s.cache.GetWallet(ctx, userID)
	if err != nil {
		s.log.Debug("wallet cache read failed", zap.String("user_id", userID), zap.Error(err))
	}
	if found {
		s.metrics.RecordCacheHit("wallet")
		return cached, nil
	}
	s.metrics.RecordCacheMiss("wallet")

	v, err, _ := s.loads.Do(userID, func() (interface{}, error) {
		wallet, err := s.store.Wallets().GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.CacheWallet(ctx, wallet); err != nil {
			s.log.Warn("failed to cache wallet", zap.String("user_id", userID), zap.Error(err))
		}
		return wallet, nil
	})
	if err != nil {
		return nil, translate(err)
	}

	wallet := *v.(*models.Wallet)
	return &wallet, nil
}

func (s *service) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	tx, err := s.store.Transactions().GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return tx, nil
}

func (s *service) GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	tx, err := s.store.Transactions().GetByReference(ctx, reference)
	if err != nil {
		return nil, translate(err)
	}
	return tx, nil
}

func (s *service) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, int64, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	txs, total, err := s.store.Transactions().ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, translate(err)
	}
	return txs, total, nil
}

// finish records metrics for an engine call and, on success, runs the
// post-commit side effects.
func (s *service) finish(ctx context.Context, op string, start time.Time, tx *models.Transaction, err error) {
	s.metrics.RecordOperationDuration(op, time.Since(start))

	if err != nil {
		s.metrics.RecordOperationResult(op, ResultFailure)
		s.metrics.RecordError(op, errorType(err))

		fields := []zap.Field{zap.String("operation", op), zap.Error(err)}
		if tx != nil {
			fields = append(fields, zap.String("sender_id", tx.SenderID), zap.Int64("amount", tx.Amount))
		}
		if apperrors.CodeOf(err) == apperrors.CodeInternal {
			s.log.Error("ledger operation failed", fields...)
		} else {
			s.log.Info("ledger operation rejected", fields...)
		}
		return
	}

	s.metrics.RecordOperationResult(op, ResultSuccess)
	s.metrics.RecordTransaction(tx.Type.String(), tx.Amount)
	s.log.Info("ledger operation completed",
		zap.String("operation", op),
		zap.String("reference", tx.Reference),
		zap.Int64("amount", tx.Amount))

	s.afterCommit(ctx, op, tx)
}

// afterCommit runs even if the caller's context was cancelled right after
// commit; the work it does is bounded by SideEffectTimeout.
func (s *service) afterCommit(ctx context.Context, op string, tx *models.Transaction) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.SideEffectTimeout)
	defer cancel()

	if err := s.cache.InvalidateWallet(ctx, participants(tx)...); err != nil {
		s.log.Warn("failed to invalidate wallet cache",
			zap.String("reference", tx.Reference), zap.Error(err))
	}

	if err := s.publisher.PublishTransaction(ctx, tx); err != nil {
		s.metrics.RecordPublishFailure(op)
		s.log.Warn("failed to publish transaction event",
			zap.String("reference", tx.Reference), zap.Error(err))
	}
}
