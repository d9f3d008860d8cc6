package testdial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"campaign-platform/internal/campaign"
	"campaign-platform/internal/dialer"

	"golang.org/x/sync/semaphore"
)

// AttemptStatus is the lifecycle state of a single test dial.
type AttemptStatus string

const (
	AttemptPending    AttemptStatus = "pending"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

// CallAttempt tracks the latest dial for one test number. NumberIndex is a
// position in the session's number pool; the pool is frozen once any dial
// has been dispatched, which keeps the index stable.
type CallAttempt struct {
	NumberIndex int           `json:"number_index"`
	Status      AttemptStatus `json:"status"`
	StartedAt   time.Time     `json:"started_at,omitempty"`

	// Succeeded is meaningful only once Status is completed.
	Succeeded bool `json:"succeeded"`
}

const (
	maxNumbers      = 5
	minNumberLength = 7
)

// Options tune per-session behavior.
type Options struct {
	// AllowRedial permits dialing a number whose previous attempt already
	// completed. The new attempt supersedes any recorded feedback for that
	// number.
	AllowRedial bool

	// DialTimeout caps one dial; expiry completes the attempt as failed
	// rather than leaving it in progress.
	DialTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		AllowRedial: true,
		DialTimeout: 30 * time.Second,
	}
}

// Session runs the bounded test-dial flow for one campaign draft.
//
// Dial dispatch is the only concurrent path: distinct numbers may dial in
// parallel, bounded by the draft's MaxConcurrentCalls; excess requests wait
// in FIFO order for a slot. The number pool is mutable until the first
// dispatch, then frozen for the rest of the session.
type Session struct {
	workspaceID string
	campaignID  string
	prompt      string

	dial dialer.Dialer
	sem  *semaphore.Weighted
	opts Options

	mu       sync.Mutex
	numbers  []string
	attempts map[int]*CallAttempt
	active   map[int]bool // dial accepted, not yet completed or cancelled
	feedback map[int]campaign.Feedback
	locked   bool

	clock func() time.Time
}

// NewSession builds a session for a draft in testing. The draft's existing
// TestNumbers seed the pool and must satisfy the pool invariants.
func NewSession(d campaign.Draft, dial dialer.Dialer, opts Options) (*Session, error) {
	if dial == nil {
		return nil, errors.New("testdial: dialer is required")
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultOptions().DialTimeout
	}

	limit := d.MaxConcurrentCalls
	if limit < 1 {
		limit = 1
	}

	s := &Session{
		workspaceID: d.WorkspaceID,
		campaignID:  d.ID,
		prompt:      d.Prompt,
		dial:        dial,
		sem:         semaphore.NewWeighted(int64(limit)),
		opts:        opts,
		attempts:    make(map[int]*CallAttempt),
		active:      make(map[int]bool),
		feedback:    make(map[int]campaign.Feedback),
		clock:       time.Now,
	}
	for _, n := range d.TestNumbers {
		if err := s.AddNumber(n); err != nil {
			return nil, fmt.Errorf("testdial: seed number %q: %w", n, err)
		}
	}
	return s, nil
}

func (s *Session) CampaignID() string  { return s.campaignID }
func (s *Session) WorkspaceID() string { return s.workspaceID }
func (s *Session) Prompt() string      { return s.prompt }

// AddNumber appends a test number to the pool.
func (s *Session) AddNumber(number string) error {
	trimmed := strings.TrimSpace(number)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return ErrSessionLocked
	}
	if len(s.numbers) >= maxNumbers {
		return ErrLimitExceeded
	}
	for _, existing := range s.numbers {
		if existing == trimmed {
			return ErrDuplicateNumber
		}
	}
	s.numbers = append(s.numbers, trimmed)
	return nil
}

// RemoveNumber drops the number at index. At least one test number must
// remain.
func (s *Session) RemoveNumber(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return ErrSessionLocked
	}
	if index < 0 || index >= len(s.numbers) {
		return ErrIndexOutOfRange
	}
	if len(s.numbers) <= 1 {
		return ErrMinimumRequired
	}
	s.numbers = append(s.numbers[:index], s.numbers[index+1:]...)
	return nil
}

// Numbers returns a copy of the current pool.
func (s *Session) Numbers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.numbers...)
}

// Locked reports whether the pool is frozen for this session.
func (s *Session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Attempts returns a snapshot of the latest attempt per number, ordered by
// number index. Numbers never dialed have no entry.
func (s *Session) Attempts() []CallAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CallAttempt, 0, len(s.attempts))
	for i := 0; i < len(s.numbers); i++ {
		if a, ok := s.attempts[i]; ok {
			out = append(out, *a)
		}
	}
	return out
}

// Dial places a test call against the number at index. It blocks the caller
// until the dial completes, waiting FIFO for a concurrency slot when the
// bound is saturated.
//
// Cancellation via ctx reverts the attempt to pending so it can be retried;
// dial timeout expiry completes the attempt as failed instead.
func (s *Session) Dial(ctx context.Context, index int) (CallAttempt, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.numbers) {
		s.mu.Unlock()
		return CallAttempt{}, ErrIndexOutOfRange
	}
	number := s.numbers[index]
	if len(number) < minNumberLength {
		s.mu.Unlock()
		return CallAttempt{}, ErrInvalidNumber
	}
	if s.active[index] {
		s.mu.Unlock()
		return CallAttempt{}, ErrAlreadyInProgress
	}
	if prev, ok := s.attempts[index]; ok && prev.Status == AttemptCompleted && !s.opts.AllowRedial {
		s.mu.Unlock()
		return CallAttempt{}, ErrRedialDisabled
	}

	// Dispatch accepted: the pool freezes for the rest of the session so
	// attempt and feedback indices stay valid.
	s.locked = true
	s.active[index] = true
	attempt := &CallAttempt{NumberIndex: index, Status: AttemptPending}
	s.attempts[index] = attempt
	// A superseding dial invalidates feedback recorded for the old attempt.
	delete(s.feedback, index)
	s.mu.Unlock()

	// FIFO admission under the concurrency bound.
	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.revert(index)
		return CallAttempt{}, err
	}
	defer s.sem.Release(1)

	s.mu.Lock()
	attempt.Status = AttemptInProgress
	attempt.StartedAt = s.clock().UTC()
	s.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, s.opts.DialTimeout)
	res, err := s.dial.PerformDial(dialCtx, number)
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			// Caller cancelled: back to pending, retryable.
			s.revert(index)
			return CallAttempt{}, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			// Dial timeout: failed-equivalent completion, never stuck
			// in progress.
			return s.complete(index, false), nil
		}
		// Provider-level failure still finishes the attempt.
		return s.complete(index, false), nil
	}
	return s.complete(index, res.Succeeded), nil
}

func (s *Session) revert(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[index] = false
	if a, ok := s.attempts[index]; ok {
		a.Status = AttemptPending
		a.StartedAt = time.Time{}
	}
}

func (s *Session) complete(index int, succeeded bool) CallAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[index] = false
	a := s.attempts[index]
	a.Status = AttemptCompleted
	a.Succeeded = succeeded
	return *a
}

// ReadyForFeedback reports whether at least one attempt has completed.
func (s *Session) ReadyForFeedback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completedLocked()) > 0
}

// RequireCompleted gates entry to feedback collection.
func (s *Session) RequireCompleted() error {
	if !s.ReadyForFeedback() {
		return ErrNoCompletedCalls
	}
	return nil
}

// completedLocked returns completed number indexes in pool order.
// Caller must hold mu.
func (s *Session) completedLocked() []int {
	out := make([]int, 0, len(s.attempts))
	for i := 0; i < len(s.numbers); i++ {
		if a, ok := s.attempts[i]; ok && a.Status == AttemptCompleted {
			out = append(out, i)
		}
	}
	return out
}
