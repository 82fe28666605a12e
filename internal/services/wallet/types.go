package wallet

import (
	"time"

	"go.uber.org/zap"
)

// Config holds configuration for ledger operations
type Config struct {
	// MaxReferenceAttempts bounds reference regeneration on collision.
	MaxReferenceAttempts int
	// SideEffectTimeout bounds post-commit cache and publish calls.
	SideEffectTimeout time.Duration
}

// Dependencies are the optional collaborators of the service. Nil values
// are replaced with no-op implementations.
type Dependencies struct {
	Cache      WalletCache
	Publisher  EventPublisher
	References ReferenceGenerator
	Metrics    MetricsCollector
	Logger     *zap.Logger
}

// MetricsCollector defines the interface for collecting ledger metrics
type MetricsCollector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	// Cache metrics
	RecordCacheHit(key string)
	RecordCacheMiss(key string)

	// Error metrics
	RecordError(operation, errType string)

	// Transaction metrics
	RecordTransaction(txType string, amount int64)
	RecordReferenceRetry(operation string)
	RecordPublishFailure(operation string)
}
