package rest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/verification"
)

// MillisTime is a time.Time that travels as integer milliseconds since the
// Unix epoch.
type MillisTime struct {
	time.Time
}

func (t MillisTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UnixMilli())
}

func (t *MillisTime) UnmarshalJSON(data []byte) error {
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("time must be milliseconds since the epoch: %w", err)
	}
	t.Time = time.UnixMilli(ms).UTC()
	return nil
}

// VerifyRequest is the payload accepted by POST /. Both fields are
// mandatory; pointers distinguish absent fields from zero values.
type VerifyRequest struct {
	Number *string     `json:"number" validate:"required"`
	Time   *MillisTime `json:"time" validate:"required"`
}

// VerifyResponse carries the token minted for a verified number.
type VerifyResponse struct {
	Token string `json:"token"`
}

// ErrorBody is the JSON error envelope shared by all failure responses.
type ErrorBody struct {
	Error string `json:"error"`
}

// HealthResponse reports liveness plus a few operational counters.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Attempts int    `json:"attempts"`
}

// rankEntry serializes one ranking row as a [name, score] pair, which keeps
// the ranking order explicit in the payload itself.
type rankEntry verification.CarrierRank

func (e rankEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{e.Carrier, e.Score})
}

func rankedList(ranks []verification.CarrierRank) []rankEntry {
	out := make([]rankEntry, len(ranks))
	for i, r := range ranks {
		out[i] = rankEntry(r)
	}
	return out
}
