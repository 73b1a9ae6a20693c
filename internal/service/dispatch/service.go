package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/errors"
	"github.com/davidleathers/dependable-verification-backend/internal/domain/verification"
	"github.com/davidleathers/dependable-verification-backend/internal/service/carrier"
)

// service implements the Service interface
type service struct {
	pool     []carrier.Carrier
	balancer Balancer
	ledger   AttemptLedger
	tokens   TokenIssuer
	metrics  MetricsCollector
	logger   *slog.Logger
}

// NewService creates a new dispatch service over a fixed carrier pool. The
// pool may be empty; attempts against an empty pool resolve to
// StatusNoCarriers instead of failing.
func NewService(
	pool []carrier.Carrier,
	balancer Balancer,
	ledger AttemptLedger,
	tokens TokenIssuer,
	metrics MetricsCollector,
	logger *slog.Logger,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		pool:     pool,
		balancer: balancer,
		ledger:   ledger,
		tokens:   tokens,
		metrics:  metrics,
		logger:   logger.With("component", "dispatch"),
	}
}

// HandleAttempt dispatches one verification attempt
func (s *service) HandleAttempt(ctx context.Context, req verification.AttemptRequest) (*AttemptResult, error) {
	start := time.Now()

	// An empty pool is an expected operational state. Report it without
	// touching balancer, carrier, ledger, or token issuer.
	if len(s.pool) == 0 {
		result := &AttemptResult{
			Status:    StatusNoCarriers,
			Timestamp: start.UTC(),
			Latency:   time.Since(start),
		}
		if s.metrics != nil {
			s.metrics.RecordDispatchDecision(ctx, result)
		}
		s.logger.WarnContext(ctx, "attempt received with no carriers configured")
		return result, nil
	}

	idx := s.balancer.NextIndex(len(s.pool))
	selected := s.pool[idx]

	entry := selected.Verify(ctx, req.Number)

	if err := s.ledger.RecordAttempt(ctx, entry); err != nil {
		// An attempt that ran but could not be recorded must not be
		// reported as successful.
		return nil, errors.NewPersistenceError("failed to record verification attempt").WithCause(err)
	}

	result := &AttemptResult{
		Status:    StatusFailed,
		Carrier:   entry.Carrier,
		Step:      entry.Step,
		Timestamp: entry.ConcludedAt,
		Latency:   time.Since(start),
	}

	if entry.Step.Succeeded() {
		token, err := s.tokens.Issue(ctx, req.Number, req.SubmittedAt)
		if err != nil {
			return nil, errors.NewInternalError("failed to issue verification token").WithCause(err)
		}
		result.Status = StatusVerified
		result.Token = token
	}

	if s.metrics != nil {
		s.metrics.RecordDispatchDecision(ctx, result)
		s.metrics.RecordDispatchLatency(ctx, s.balancer.Strategy(), result.Latency)
	}

	s.logger.InfoContext(ctx, "verification attempt dispatched",
		"carrier", entry.Carrier,
		"step", entry.Step.String(),
		"status", result.Status.String(),
		"latency_ms", result.Latency.Milliseconds(),
	)

	return result, nil
}

// CarrierRanking returns the current ranking snapshot, best carrier first
func (s *service) CarrierRanking(ctx context.Context) ([]verification.CarrierRank, error) {
	ranks, err := s.ledger.RankCarriers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to rank carriers")
	}
	return ranks, nil
}
