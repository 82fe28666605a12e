package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ledgerpay"

// Collector records ledger engine metrics in Prometheus.
type Collector struct {
	operationDuration *prometheus.HistogramVec
	operationResults  *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	errors            *prometheus.CounterVec
	transactions      *prometheus.CounterVec
	volume            *prometheus.CounterVec
	referenceRetries  *prometheus.CounterVec
	publishFailures   *prometheus.CounterVec
}

// NewCollector builds the collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of ledger operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		operationResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Ledger operations by result",
			},
			[]string{"operation", "result"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Cache hits",
			},
			[]string{"cache"},
		),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Cache misses",
			},
			[]string{"cache"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Failed ledger operations by error code",
			},
			[]string{"operation", "code"},
		),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Committed ledger entries",
			},
			[]string{"type"},
		),
		volume: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transaction_volume_minor_total",
				Help:      "Committed amount in minor units",
			},
			[]string{"type"},
		),
		referenceRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reference_retries_total",
				Help:      "Reference collisions that triggered a retry",
			},
			[]string{"operation"},
		),
		publishFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publish_failures_total",
				Help:      "Transaction events that could not be published",
			},
			[]string{"operation"},
		),
	}

	reg.MustRegister(
		c.operationDuration,
		c.operationResults,
		c.cacheHits,
		c.cacheMisses,
		c.errors,
		c.transactions,
		c.volume,
		c.referenceRetries,
		c.publishFailures,
	)
	return c
}

func (c *Collector) RecordOperationDuration(operation string, d time.Duration) {
	c.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (c *Collector) RecordOperationResult(operation, result string) {
	c.operationResults.WithLabelValues(operation, result).Inc()
}

func (c *Collector) RecordCacheHit(cache string) {
	c.cacheHits.WithLabelValues(cache).Inc()
}

func (c *Collector) RecordCacheMiss(cache string) {
	c.cacheMisses.WithLabelValues(cache).Inc()
}

func (c *Collector) RecordError(operation, code string) {
	c.errors.WithLabelValues(operation, code).Inc()
}

func (c *Collector) RecordTransaction(txType string, amount int64) {
	c.transactions.WithLabelValues(txType).Inc()
	c.volume.WithLabelValues(txType).Add(float64(amount))
}

func (c *Collector) RecordReferenceRetry(operation string) {
	c.referenceRetries.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordPublishFailure(operation string) {
	c.publishFailures.WithLabelValues(operation).Inc()
}
