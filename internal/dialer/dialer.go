package dialer

import "context"

// Dialer is the provider-agnostic outbound dial port used by the test-dial
// scheduler.
//
// Rules:
// - No provider SDK calls outside dialer adapters.
// - The caller supplies the timeout via ctx; PerformDial must honor
//   cancellation and return ctx.Err() promptly.
// - Keep the result type provider-agnostic; provider raw payloads belong in
//   adapter-level logging, not here.
type Dialer interface {
	PerformDial(ctx context.Context, number string) (Result, error)
}

// Result is the outcome of a finished dial.
type Result struct {
	// Succeeded reports whether the call connected.
	Succeeded bool `json:"succeeded"`
}
