package carrier

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/errors"
	"github.com/davidleathers/dependable-verification-backend/internal/domain/verification"
)

// randTrials draws from the shared math/rand/v2 generator, which is safe for
// concurrent use.
type randTrials struct{}

func (randTrials) IntN(n int) int { return rand.IntN(n) }

// SimulatedCarrier models one carrier's verification behavior with
// independent Bernoulli trials in place of outbound network calls: SMS
// challenge twice, then voice challenge twice, then give up. Probabilities
// are fixed at construction and the carrier is safe for concurrent use.
type SimulatedCarrier struct {
	name        string
	chanceSMS   int
	chanceVoice int
	trials      TrialSource
}

// NewSimulatedCarrier creates a carrier with SMS and voice success chances
// given as integer percentages in [0,100].
func NewSimulatedCarrier(name string, chanceSMS, chanceVoice int) (*SimulatedCarrier, error) {
	return NewSimulatedCarrierWithTrials(name, chanceSMS, chanceVoice, randTrials{})
}

// NewSimulatedCarrierWithTrials injects the trial source, letting tests
// script every draw.
func NewSimulatedCarrierWithTrials(name string, chanceSMS, chanceVoice int, trials TrialSource) (*SimulatedCarrier, error) {
	if name == "" {
		return nil, errors.NewConfigurationError("INVALID_CARRIER_NAME", "carrier name cannot be empty")
	}
	if err := validateChance("sms", chanceSMS); err != nil {
		return nil, err
	}
	if err := validateChance("voice", chanceVoice); err != nil {
		return nil, err
	}
	if trials == nil {
		trials = randTrials{}
	}
	return &SimulatedCarrier{
		name:        name,
		chanceSMS:   chanceSMS,
		chanceVoice: chanceVoice,
		trials:      trials,
	}, nil
}

func validateChance(channel string, chance int) error {
	if chance < 0 || chance > 100 {
		return errors.NewConfigurationError(
			"INVALID_CARRIER_PROBABILITY",
			fmt.Sprintf("%s success chance must be a percentage in [0,100], got %d", channel, chance),
		)
	}
	return nil
}

// Name returns the carrier's pool identifier.
func (c *SimulatedCarrier) Name() string {
	return c.name
}

// Verify executes the challenge cascade and records the terminal step. The
// simulator never blocks, so the context goes unused; a real carrier would
// spend it on outbound calls.
func (c *SimulatedCarrier) Verify(ctx context.Context, number string) verification.Entry {
	step := c.runCascade()
	return verification.NewEntry(c.name, number, step)
}

func (c *SimulatedCarrier) runCascade() verification.Step {
	if c.trial(c.chanceSMS) {
		return verification.StepFirstSMS
	}
	if c.trial(c.chanceSMS) {
		return verification.StepSecondSMS
	}
	if c.trial(c.chanceVoice) {
		return verification.StepFirstVoice
	}
	if c.trial(c.chanceVoice) {
		return verification.StepSecondVoice
	}
	return verification.StepUnreachable
}

// trial succeeds iff a uniform draw from [0,100) lands strictly below the
// configured chance, so 0 never passes and 100 always does.
func (c *SimulatedCarrier) trial(chance int) bool {
	return c.trials.IntN(100) < chance
}
