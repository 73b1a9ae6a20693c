package dispatch

import (
	"fmt"
	"sync"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/errors"
)

// Strategy tags accepted by NewBalancer. The short forms mirror the CLI
// spelling.
const (
	StrategyRoundRobin      = "round-robin"
	StrategyRoundRobinShort = "rr"
	StrategyBest            = "best"
	StrategyBestShort       = "b"
)

// NewBalancer constructs the balancer for a strategy tag. "best" names the
// ranking-aware strategy reserved as an extension point; it is rejected as
// unimplemented rather than silently falling back to round-robin.
func NewBalancer(strategy string) (Balancer, error) {
	switch strategy {
	case StrategyRoundRobin, StrategyRoundRobinShort:
		return NewRoundRobinBalancer(), nil
	case StrategyBest, StrategyBestShort:
		return nil, errors.NewUnsupportedStrategyError(strategy)
	default:
		return nil, errors.NewConfigurationError(
			"UNKNOWN_STRATEGY",
			fmt.Sprintf("unknown balancer strategy %q", strategy),
		)
	}
}

// RoundRobinBalancer hands out pool indexes in strict cyclic order: over any
// window of poolSize consecutive calls every index comes back exactly once,
// ascending. The read-and-advance of the counter is a single critical
// section so concurrent callers can neither share nor skip an index.
type RoundRobinBalancer struct {
	mu   sync.Mutex
	next int
}

// NewRoundRobinBalancer creates a new round-robin balancer
func NewRoundRobinBalancer() *RoundRobinBalancer {
	return &RoundRobinBalancer{}
}

// NextIndex returns the counter value and advances it modulo the pool size.
// The dispatcher guarantees poolSize >= 1 before calling.
func (b *RoundRobinBalancer) NextIndex(poolSize int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.next
	b.next = (idx + 1) % poolSize
	return idx
}

// Strategy returns the strategy name
func (b *RoundRobinBalancer) Strategy() string {
	return StrategyRoundRobin
}
