package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/davidleathers/dependable-verification-backend/internal/service/dispatch"
)

// Registry holds all domain-specific metrics for the verification backend.
type Registry struct {
	meter metric.Meter

	// Verification Metrics
	AttemptCounter     metric.Int64Counter
	AttemptsPerSecond  metric.Float64ObservableGauge
	VerifiedCounter    metric.Int64Counter
	UnreachableCounter metric.Int64Counter
	NoCarriersCounter  metric.Int64Counter

	// Dispatch Metrics
	DispatchLatency metric.Float64Histogram

	// Ledger Metrics
	LedgerSize      metric.Int64ObservableGauge
	RankingDuration metric.Float64Histogram

	// API Metrics
	APIRequestDuration metric.Float64Histogram
	APIRequestCounter  metric.Int64Counter

	// State for observable metrics
	mu                sync.RWMutex
	ledgerSize        int64
	attemptsProcessed int64
	lastAttemptCount  int64
	lastAttemptTime   time.Time
}

var _ dispatch.MetricsCollector = (*Registry)(nil)

// NewRegistry creates a new metrics registry with all domain metrics.
func NewRegistry(meterName string) (*Registry, error) {
	meter := otel.Meter(meterName)
	r := &Registry{
		meter:           meter,
		lastAttemptTime: time.Now(),
	}

	if err := r.initVerificationMetrics(); err != nil {
		return nil, err
	}

	if err := r.initDispatchMetrics(); err != nil {
		return nil, err
	}

	if err := r.initLedgerMetrics(); err != nil {
		return nil, err
	}

	if err := r.initAPIMetrics(); err != nil {
		return nil, err
	}

	return r, nil
}

// initVerificationMetrics initializes verification attempt metrics
func (r *Registry) initVerificationMetrics() error {
	var err error

	r.AttemptCounter, err = r.meter.Int64Counter(
		"dvb.verification.attempt_total",
		metric.WithDescription("Total number of dispatched verification attempts"),
	)
	if err != nil {
		return err
	}

	r.AttemptsPerSecond, err = r.meter.Float64ObservableGauge(
		"dvb.verification.throughput_per_second",
		metric.WithDescription("Current verification attempt throughput per second"),
		metric.WithFloat64Callback(func(ctx context.Context, o metric.Float64Observer) error {
			// The callback advances the sampling window, so it takes the
			// write lock.
			r.mu.Lock()
			defer r.mu.Unlock()

			now := time.Now()
			elapsed := now.Sub(r.lastAttemptTime).Seconds()
			if elapsed > 0 {
				rate := float64(r.attemptsProcessed-r.lastAttemptCount) / elapsed
				o.Observe(rate)
				r.lastAttemptCount = r.attemptsProcessed
				r.lastAttemptTime = now
			}
			return nil
		}),
	)
	if err != nil {
		return err
	}

	r.VerifiedCounter, err = r.meter.Int64Counter(
		"dvb.verification.verified_total",
		metric.WithDescription("Total number of attempts that produced a token"),
	)
	if err != nil {
		return err
	}

	r.UnreachableCounter, err = r.meter.Int64Counter(
		"dvb.verification.unreachable_total",
		metric.WithDescription("Total number of attempts where every step failed"),
	)
	if err != nil {
		return err
	}

	r.NoCarriersCounter, err = r.meter.Int64Counter(
		"dvb.verification.no_carriers_total",
		metric.WithDescription("Total number of attempts rejected for lack of carriers"),
	)

	return err
}

// initDispatchMetrics initializes dispatch decision metrics
func (r *Registry) initDispatchMetrics() error {
	var err error

	r.DispatchLatency, err = r.meter.Float64Histogram(
		"dvb.dispatch.latency",
		metric.WithDescription("End-to-end dispatch latency in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500),
	)

	return err
}

// initLedgerMetrics initializes attempt ledger metrics
func (r *Registry) initLedgerMetrics() error {
	var err error

	r.LedgerSize, err = r.meter.Int64ObservableGauge(
		"dvb.ledger.size",
		metric.WithDescription("Current number of entries in the attempt ledger"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.ledgerSize)
			return nil
		}),
	)
	if err != nil {
		return err
	}

	r.RankingDuration, err = r.meter.Float64Histogram(
		"dvb.ledger.ranking_duration",
		metric.WithDescription("Carrier ranking computation duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50),
	)

	return err
}

// initAPIMetrics initializes HTTP API metrics
func (r *Registry) initAPIMetrics() error {
	var err error

	r.APIRequestDuration, err = r.meter.Float64Histogram(
		"dvb.api.request_duration",
		metric.WithDescription("API request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	r.APIRequestCounter, err = r.meter.Int64Counter(
		"dvb.api.request_total",
		metric.WithDescription("Total number of API requests"),
	)

	return err
}

// Helper methods for updating observable metric values

// SetLedgerSize sets the observed ledger size.
func (r *Registry) SetLedgerSize(size int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledgerSize = size
}

func (r *Registry) incrementAttemptsProcessed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attemptsProcessed++
}

// Helper methods for recording metrics with common attribute patterns

// RecordDispatchDecision records the outcome of one dispatched attempt.
func (r *Registry) RecordDispatchDecision(ctx context.Context, result *dispatch.AttemptResult) {
	attrs := []attribute.KeyValue{
		attribute.String("status", result.Status.String()),
	}
	if result.Carrier != "" {
		attrs = append(attrs,
			attribute.String("carrier", result.Carrier),
			attribute.String("step", result.Step.String()),
		)
	}

	r.AttemptCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	switch result.Status {
	case dispatch.StatusVerified:
		r.VerifiedCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	case dispatch.StatusFailed:
		r.UnreachableCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	case dispatch.StatusNoCarriers:
		r.NoCarriersCounter.Add(ctx, 1)
	}

	r.incrementAttemptsProcessed()
}

// RecordDispatchLatency records end-to-end dispatch latency for a strategy.
func (r *Registry) RecordDispatchLatency(ctx context.Context, strategy string, latency time.Duration) {
	r.DispatchLatency.Record(ctx, float64(latency.Microseconds())/1000.0,
		metric.WithAttributes(attribute.String("strategy", strategy)))
}

// RecordRanking records one carrier ranking computation.
func (r *Registry) RecordRanking(ctx context.Context, duration time.Duration, carriers int) {
	r.RankingDuration.Record(ctx, float64(duration.Microseconds())/1000.0,
		metric.WithAttributes(attribute.Int("carriers", carriers)))
}

// RecordAPIRequest records API request metrics.
func (r *Registry) RecordAPIRequest(ctx context.Context, duration float64, method, path string, statusCode int) {
	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status_code", statusCode),
	}

	r.APIRequestDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	r.APIRequestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
