package carrier

import (
	"context"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/verification"
)

// Carrier defines one telecom carrier in the dispatch pool
type Carrier interface {
	// Verify runs the challenge cascade against a phone number and reports
	// the terminal step reached
	Verify(ctx context.Context, number string) verification.Entry
	// Name returns the carrier's pool identifier
	Name() string
}

// TrialSource supplies the uniform draws behind each challenge trial.
// Implementations must be safe for concurrent use.
type TrialSource interface {
	// IntN returns a uniform draw from [0, n)
	IntN(n int) int
}
