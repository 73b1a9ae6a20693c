package fixtures

import (
	"testing"
	"time"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/verification"
)

// EntryBuilder builds ledger entries for tests
type EntryBuilder struct {
	t           *testing.T
	carrier     string
	number      string
	step        verification.Step
	concludedAt time.Time
}

// NewEntryBuilder creates a new EntryBuilder with defaults
func NewEntryBuilder(t *testing.T) *EntryBuilder {
	t.Helper()
	return &EntryBuilder{
		t:           t,
		carrier:     "carrier_1",
		number:      "+15551234567",
		step:        verification.StepFirstSMS,
		concludedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// WithCarrier sets the carrier name
func (b *EntryBuilder) WithCarrier(name string) *EntryBuilder {
	b.carrier = name
	return b
}

// WithNumber sets the phone number
func (b *EntryBuilder) WithNumber(number string) *EntryBuilder {
	b.number = number
	return b
}

// WithStep sets the terminal step
func (b *EntryBuilder) WithStep(step verification.Step) *EntryBuilder {
	b.step = step
	return b
}

// ConcludedAt sets the conclusion timestamp
func (b *EntryBuilder) ConcludedAt(at time.Time) *EntryBuilder {
	b.concludedAt = at
	return b
}

// Build creates the Entry
func (b *EntryBuilder) Build() verification.Entry {
	return verification.Entry{
		Carrier:     b.carrier,
		Number:      b.number,
		ConcludedAt: b.concludedAt,
		Step:        b.step,
	}
}
