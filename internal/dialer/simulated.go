package dialer

import (
	"context"
	"time"
)

// Simulated is a Dialer that completes after a fixed latency without
// touching real telephony. It stands in for the provider adapter during
// draft validation and in tests.
type Simulated struct {
	latency time.Duration

	// Outcome decides whether a dial connects. Defaults to always
	// succeeding; tests inject failures here.
	Outcome func(number string) bool
}

func NewSimulated(latency time.Duration) *Simulated {
	if latency <= 0 {
		latency = 2 * time.Second
	}
	return &Simulated{latency: latency}
}

func (s *Simulated) PerformDial(ctx context.Context, number string) (Result, error) {
	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-timer.C:
	}

	succeeded := true
	if s.Outcome != nil {
		succeeded = s.Outcome(number)
	}
	return Result{Succeeded: succeeded}, nil
}
