package carrier_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/errors"
	"github.com/davidleathers/dependable-verification-backend/internal/domain/verification"
	"github.com/davidleathers/dependable-verification-backend/internal/service/carrier"
)

// scriptedTrials feeds a fixed sequence of draws to the cascade.
type scriptedTrials struct {
	draws []int
	next  int
}

func (s *scriptedTrials) IntN(n int) int {
	if s.next >= len(s.draws) {
		panic("scripted trials exhausted")
	}
	d := s.draws[s.next]
	s.next++
	return d % n
}

func TestNewSimulatedCarrier(t *testing.T) {
	tests := []struct {
		name        string
		carrierName string
		chanceSMS   int
		chanceVoice int
		wantErr     bool
	}{
		{"mid-range probabilities", "carrier_1", 50, 70, false},
		{"zero probabilities", "carrier_1", 0, 0, false},
		{"full probabilities", "carrier_1", 100, 100, false},
		{"sms chance below range", "carrier_1", -1, 50, true},
		{"sms chance above range", "carrier_1", 101, 50, true},
		{"voice chance below range", "carrier_1", 50, -20, true},
		{"voice chance above range", "carrier_1", 50, 150, true},
		{"empty carrier name", "", 50, 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := carrier.NewSimulatedCarrier(tt.carrierName, tt.chanceSMS, tt.chanceVoice)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.carrierName, c.Name())
		})
	}
}

func TestSimulatedCarrier_Verify_CertainSMS(t *testing.T) {
	c, err := carrier.NewSimulatedCarrier("always_sms", 100, 0)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		entry := c.Verify(context.Background(), "+15551234567")
		assert.Equal(t, verification.StepFirstSMS, entry.Step)
	}
}

func TestSimulatedCarrier_Verify_NeverReachable(t *testing.T) {
	c, err := carrier.NewSimulatedCarrier("always_down", 0, 0)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		entry := c.Verify(context.Background(), "+15551234567")
		assert.Equal(t, verification.StepUnreachable, entry.Step)
		assert.False(t, entry.Step.Succeeded())
	}
}

func TestSimulatedCarrier_Verify_CascadeOrder(t *testing.T) {
	// Draws below 50 pass a 50% trial, draws of 50 and above fail it.
	tests := []struct {
		name  string
		draws []int
		want  verification.Step
	}{
		{"first sms passes", []int{10}, verification.StepFirstSMS},
		{"second sms passes", []int{60, 10}, verification.StepSecondSMS},
		{"first voice passes", []int{60, 60, 10}, verification.StepFirstVoice},
		{"second voice passes", []int{60, 60, 60, 10}, verification.StepSecondVoice},
		{"all four fail", []int{60, 60, 60, 60}, verification.StepUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trials := &scriptedTrials{draws: tt.draws}
			c, err := carrier.NewSimulatedCarrierWithTrials("scripted", 50, 50, trials)
			require.NoError(t, err)

			entry := c.Verify(context.Background(), "+15551234567")

			assert.Equal(t, tt.want, entry.Step)
			assert.Equal(t, len(tt.draws), trials.next, "cascade must stop at the first success")
		})
	}
}

func TestSimulatedCarrier_Verify_StrictThreshold(t *testing.T) {
	// A draw equal to the chance fails the trial: chance 0 can never pass
	// even on the lowest draw, chance 100 passes on the highest.
	trials := &scriptedTrials{draws: []int{0, 0, 0, 0}}
	c, err := carrier.NewSimulatedCarrierWithTrials("zero", 0, 0, trials)
	require.NoError(t, err)
	entry := c.Verify(context.Background(), "+15550000000")
	assert.Equal(t, verification.StepUnreachable, entry.Step)

	trials = &scriptedTrials{draws: []int{99}}
	c, err = carrier.NewSimulatedCarrierWithTrials("hundred", 100, 100, trials)
	require.NoError(t, err)
	entry = c.Verify(context.Background(), "+15550000000")
	assert.Equal(t, verification.StepFirstSMS, entry.Step)
}

func TestSimulatedCarrier_Verify_EntryFields(t *testing.T) {
	frozen := &verification.FrozenClock{CurrentTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	verification.SetClock(frozen)
	defer verification.ResetClock()

	c, err := carrier.NewSimulatedCarrier("carrier_2", 100, 100)
	require.NoError(t, err)

	entry := c.Verify(context.Background(), "+15559876543")

	assert.Equal(t, "carrier_2", entry.Carrier)
	assert.Equal(t, "+15559876543", entry.Number)
	assert.Equal(t, frozen.CurrentTime, entry.ConcludedAt)
	assert.True(t, entry.Step.Succeeded())
}
