package values

import (
	"fmt"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/errors"
	"github.com/davidleathers/dependable-verification-backend/internal/domain/verification"
)

// StepWeights is a value object assigning a ranking cost to each terminal
// verification step. Read in step order the weights must be non-decreasing:
// cheap successes score low, total failure scores highest. The table is
// immutable after construction.
type StepWeights struct {
	weights [verification.StepCount]uint32
}

// NewStepWeights creates a StepWeights value object with validation.
func NewStepWeights(weights [verification.StepCount]uint32) (StepWeights, error) {
	for i := 1; i < len(weights); i++ {
		if weights[i] < weights[i-1] {
			return StepWeights{}, errors.NewConfigurationError(
				"INVALID_STEP_WEIGHTS",
				fmt.Sprintf("step weights must be non-decreasing in step order: weight[%d]=%d < weight[%d]=%d",
					i, weights[i], i-1, weights[i-1]),
			)
		}
	}
	return StepWeights{weights: weights}, nil
}

// NewStepWeightsFromSlice creates StepWeights from a configuration slice,
// which must hold exactly one weight per step.
func NewStepWeightsFromSlice(weights []uint32) (StepWeights, error) {
	if len(weights) != verification.StepCount {
		return StepWeights{}, errors.NewConfigurationError(
			"INVALID_STEP_WEIGHTS",
			fmt.Sprintf("step weight table must hold %d values, got %d", verification.StepCount, len(weights)),
		)
	}
	var table [verification.StepCount]uint32
	copy(table[:], weights)
	return NewStepWeights(table)
}

// MustNewStepWeights creates StepWeights and panics on error (for constants/tests)
func MustNewStepWeights(weights [verification.StepCount]uint32) StepWeights {
	w, err := NewStepWeights(weights)
	if err != nil {
		panic(err)
	}
	return w
}

// DefaultStepWeights returns the stock 1..5 table.
func DefaultStepWeights() StepWeights {
	return StepWeights{weights: [verification.StepCount]uint32{1, 2, 3, 4, 5}}
}

// For returns the weight assigned to a step. Unknown steps weigh as the
// highest (worst) entry so a corrupt record can never improve a ranking.
func (w StepWeights) For(step verification.Step) uint32 {
	if !step.IsValid() {
		return w.weights[verification.StepCount-1]
	}
	return w.weights[step]
}

// Values returns a copy of the table in step order.
func (w StepWeights) Values() [verification.StepCount]uint32 {
	return w.weights
}

// Equal compares two tables entry-wise.
func (w StepWeights) Equal(other StepWeights) bool {
	return w.weights == other.weights
}

func (w StepWeights) String() string {
	return fmt.Sprintf("%v", w.weights)
}
