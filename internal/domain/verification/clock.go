package verification

import "time"

// Clock interface for time operations (supports testing)
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock, normalized to UTC.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// FrozenClock implements Clock for testing
type FrozenClock struct {
	CurrentTime time.Time
}

func (f *FrozenClock) Now() time.Time {
	return f.CurrentTime
}

func (f *FrozenClock) Advance(d time.Duration) {
	f.CurrentTime = f.CurrentTime.Add(d)
}

// Package-level clock variable (defaults to real clock)
var clock Clock = RealClock{}

// SetClock allows tests to inject a deterministic clock
func SetClock(c Clock) {
	clock = c
}

// ResetClock restores the real clock
func ResetClock() {
	clock = RealClock{}
}
