package dispatch

import (
	"context"
	"time"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/verification"
)

// Balancer defines the interface for carrier selection strategies
type Balancer interface {
	// NextIndex picks which pool index serves the next attempt;
	// 0 <= index < poolSize for every poolSize >= 1
	NextIndex(poolSize int) int
	// Strategy returns the name of the selection strategy
	Strategy() string
}

// Service defines the dispatch service interface
type Service interface {
	// HandleAttempt dispatches one verification attempt to a carrier and
	// records its outcome
	HandleAttempt(ctx context.Context, req verification.AttemptRequest) (*AttemptResult, error)
	// CarrierRanking returns carriers ordered best-first by mean step weight
	CarrierRanking(ctx context.Context) ([]verification.CarrierRank, error)
}

// AttemptLedger defines the interface for attempt storage
type AttemptLedger interface {
	// RecordAttempt appends one completed attempt
	RecordAttempt(ctx context.Context, entry verification.Entry) error
	// RankCarriers aggregates every recorded attempt into a ranking,
	// ascending by mean step weight
	RankCarriers(ctx context.Context) ([]verification.CarrierRank, error)
}

// TokenIssuer mints the opaque token handed back on a verified attempt
type TokenIssuer interface {
	// Issue binds a token to a phone number and its submission time
	Issue(ctx context.Context, number string, submittedAt time.Time) (string, error)
}

// MetricsCollector defines the interface for collecting dispatch metrics
type MetricsCollector interface {
	// RecordDispatchDecision records one dispatched attempt outcome
	RecordDispatchDecision(ctx context.Context, result *AttemptResult)
	// RecordDispatchLatency records end-to-end dispatch latency per strategy
	RecordDispatchLatency(ctx context.Context, strategy string, latency time.Duration)
}

// Status classifies the caller-facing result of an attempt
type Status int

const (
	StatusVerified Status = iota
	StatusFailed
	StatusNoCarriers
)

func (s Status) String() string {
	switch s {
	case StatusVerified:
		return "verified"
	case StatusFailed:
		return "failed"
	case StatusNoCarriers:
		return "no_carriers"
	default:
		return "unknown"
	}
}

// AttemptResult represents the outcome of one dispatched attempt. Carrier
// and Step are meaningful only when a carrier actually ran, and Token only
// when Status is StatusVerified.
type AttemptResult struct {
	Status    Status
	Token     string
	Carrier   string
	Step      verification.Step
	Timestamp time.Time
	Latency   time.Duration
}
