package verification

import "time"

// AttemptRequest is the caller input to a verification attempt. The number is
// an opaque identifier end to end; no format validation happens in this layer.
type AttemptRequest struct {
	Number      string    `json:"number"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func NewAttemptRequest(number string, submittedAt time.Time) AttemptRequest {
	return AttemptRequest{
		Number:      number,
		SubmittedAt: submittedAt.UTC(),
	}
}

// Entry records the outcome of one completed attempt. Entries are immutable
// once created and owned by the ledger thereafter.
type Entry struct {
	Carrier     string    `json:"carrier"`
	Number      string    `json:"number"`
	ConcludedAt time.Time `json:"concluded_at"`
	Step        Step      `json:"step"`
}

// NewEntry stamps an attempt outcome with the current time.
func NewEntry(carrier, number string, step Step) Entry {
	return Entry{
		Carrier:     carrier,
		Number:      number,
		ConcludedAt: clock.Now(),
		Step:        step,
	}
}

// CarrierRank pairs a carrier with the mean step weight over every attempt
// recorded for it. Lower scores rank better.
type CarrierRank struct {
	Carrier string  `json:"carrier"`
	Score   float64 `json:"score"`
}
