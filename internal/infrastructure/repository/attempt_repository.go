package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/values"
	"github.com/davidleathers/dependable-verification-backend/internal/domain/verification"
	"github.com/davidleathers/dependable-verification-backend/internal/service/dispatch"
)

// AttemptRepository is the in-memory ledger of verification attempts. One
// mutex guards both the append and the full-scan ranking pass; ranking is
// O(n) over all recorded entries, which holds up fine at process-lifetime
// scale. Entries are never mutated after append.
type AttemptRepository struct {
	mu      sync.Mutex
	weights values.StepWeights
	entries []verification.Entry
}

var _ dispatch.AttemptLedger = (*AttemptRepository)(nil)

// NewAttemptRepository creates an empty ledger that ranks with the given
// weight table. The table snapshot is fixed for the repository's lifetime;
// entries store steps, not weights, so scores are computed against this
// table at ranking time.
func NewAttemptRepository(weights values.StepWeights) *AttemptRepository {
	return &AttemptRepository{weights: weights}
}

// RecordAttempt appends one completed attempt
func (r *AttemptRepository) RecordAttempt(ctx context.Context, entry verification.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	return nil
}

// RankCarriers groups every recorded entry by carrier and returns the mean
// step weight per carrier, ascending. Carriers with no entries do not
// appear. Ties keep first-seen order, which makes the result deterministic
// within a call.
func (r *AttemptRepository) RankCarriers(ctx context.Context) ([]verification.CarrierRank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	type group struct {
		sum   uint64
		count uint64
	}

	order := make([]string, 0)
	groups := make(map[string]*group)

	for _, entry := range r.entries {
		g, ok := groups[entry.Carrier]
		if !ok {
			g = &group{}
			groups[entry.Carrier] = g
			order = append(order, entry.Carrier)
		}
		g.sum += uint64(r.weights.For(entry.Step))
		g.count++
	}

	ranks := make([]verification.CarrierRank, 0, len(order))
	for _, name := range order {
		g := groups[name]
		ranks = append(ranks, verification.CarrierRank{
			Carrier: name,
			Score:   float64(g.sum) / float64(g.count),
		})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Score < ranks[j].Score
	})

	return ranks, nil
}

// Size reports how many attempts have been recorded.
func (r *AttemptRepository) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}
