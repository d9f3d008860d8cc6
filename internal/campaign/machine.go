package campaign

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition marks a caller-sequencing bug: a transition that
// skips a lifecycle stage. Unlike the dial and feedback errors it should
// not be retried with the same arguments.
var ErrInvalidTransition = errors.New("campaign: invalid transition")

var transitions = map[Status][]Status{
	StatusDraft:    {StatusTesting},
	StatusTesting:  {StatusReviewed},
	StatusReviewed: {StatusActive, StatusCompleted},
	StatusActive:   {StatusPaused, StatusCompleted},
	StatusPaused:   {StatusActive, StatusCompleted},
	// completed is terminal
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition advances the draft's status in place.
// testing -> reviewed is excluded here: that step attaches the frozen
// TestResult and only AttachResult may perform it.
func Transition(d *Draft, to Status) error {
	if d == nil {
		return fmt.Errorf("%w: nil draft", ErrInvalidTransition)
	}
	if !to.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if !CanTransition(d.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, to)
	}
	if to == StatusReviewed {
		return fmt.Errorf("%w: testing -> reviewed requires a finalized test result", ErrInvalidTransition)
	}
	d.Status = to
	return nil
}

// ErrResultAttached guards the attach-once invariant on TestResult.
var ErrResultAttached = errors.New("campaign: test result already attached")

// AttachResult performs testing -> reviewed, attaching the finalized
// TestResult. The result is frozen from this point on.
func AttachResult(d *Draft, result TestResult) error {
	if d == nil {
		return fmt.Errorf("%w: nil draft", ErrInvalidTransition)
	}
	if d.Status != StatusTesting {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, StatusReviewed)
	}
	if d.TestResult != nil {
		return ErrResultAttached
	}
	frozen := result.Clone()
	d.TestResult = &frozen
	d.Status = StatusReviewed
	return nil
}
