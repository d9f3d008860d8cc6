package testdial

import "errors"

// All of these are recoverable: the caller may correct input and retry the
// specific operation. Lifecycle sequencing bugs surface as
// campaign.ErrInvalidTransition instead.
var (
	ErrDuplicateNumber   = errors.New("testdial: duplicate number")
	ErrLimitExceeded     = errors.New("testdial: number limit reached")
	ErrMinimumRequired   = errors.New("testdial: at least one number is required")
	ErrInvalidNumber     = errors.New("testdial: number must be at least 7 characters")
	ErrAlreadyInProgress = errors.New("testdial: dial already in progress for this number")
	ErrSessionLocked     = errors.New("testdial: number set is locked for this session")
	ErrRedialDisabled    = errors.New("testdial: redial of a completed number is disabled")
	ErrIndexOutOfRange   = errors.New("testdial: number index out of range")

	ErrInvalidRating = errors.New("testdial: invalid rating")
	ErrNotCompleted  = errors.New("testdial: call attempt not completed")

	ErrNoCompletedCalls   = errors.New("testdial: no completed test calls")
	ErrIncompleteFeedback = errors.New("testdial: feedback missing for completed calls")

	ErrSessionExists   = errors.New("testdial: session already active for this draft")
	ErrSessionNotFound = errors.New("testdial: no active session for this draft")
)
