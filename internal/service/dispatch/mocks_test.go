package dispatch

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/verification"
)

// Balancer mock for tests
type MockBalancer struct {
	mock.Mock
}

func (m *MockBalancer) NextIndex(poolSize int) int {
	args := m.Called(poolSize)
	return args.Int(0)
}

func (m *MockBalancer) Strategy() string {
	args := m.Called()
	return args.String(0)
}

// AttemptLedger mock for tests
type MockAttemptLedger struct {
	mock.Mock
}

func (m *MockAttemptLedger) RecordAttempt(ctx context.Context, entry verification.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAttemptLedger) RankCarriers(ctx context.Context) ([]verification.CarrierRank, error) {
	args := m.Called(ctx)
	if ranks := args.Get(0); ranks != nil {
		return ranks.([]verification.CarrierRank), args.Error(1)
	}
	return nil, args.Error(1)
}

// TokenIssuer mock for tests
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(ctx context.Context, number string, submittedAt time.Time) (string, error) {
	args := m.Called(ctx, number, submittedAt)
	return args.String(0), args.Error(1)
}

// MetricsCollector mock for tests
type MockMetricsCollector struct {
	mock.Mock
}

func (m *MockMetricsCollector) RecordDispatchDecision(ctx context.Context, result *AttemptResult) {
	m.Called(ctx, result)
}

func (m *MockMetricsCollector) RecordDispatchLatency(ctx context.Context, strategy string, latency time.Duration) {
	m.Called(ctx, strategy, latency)
}

// Carrier mock for tests
type MockCarrier struct {
	mock.Mock
}

func (m *MockCarrier) Verify(ctx context.Context, number string) verification.Entry {
	args := m.Called(ctx, number)
	return args.Get(0).(verification.Entry)
}

func (m *MockCarrier) Name() string {
	args := m.Called()
	return args.String(0)
}
