package extractor

import (
	"context"
	"time"
)

// Clock abstracts time for the fetcher so tests can simulate pacing without
// real sleeping.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until the context is done
	Sleep(ctx context.Context, d time.Duration) error
}

// realClock is the production Clock backed by the wall clock
type realClock struct{}

// NewRealClock returns a Clock backed by time.Now and timer-based sleeps
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
