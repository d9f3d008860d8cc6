package testdial

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"campaign-platform/internal/campaign"
	"campaign-platform/internal/dialer"
)

// stubDialer tracks in-flight dials and can block until released.
type stubDialer struct {
	mu          sync.Mutex
	inFlight    int
	maxInFlight int
	calls       int

	block chan struct{} // when non-nil, dials wait for close
}

func (d *stubDialer) PerformDial(ctx context.Context, number string) (dialer.Result, error) {
	d.mu.Lock()
	d.calls++
	d.inFlight++
	if d.inFlight > d.maxInFlight {
		d.maxInFlight = d.inFlight
	}
	block := d.block
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.inFlight--
		d.mu.Unlock()
	}()

	if block != nil {
		select {
		case <-ctx.Done():
			return dialer.Result{}, ctx.Err()
		case <-block:
		}
	}
	return dialer.Result{Succeeded: true}, nil
}

func testDraft(maxConcurrent int, numbers ...string) campaign.Draft {
	return campaign.Draft{
		ID:                 "c1",
		WorkspaceID:        "ws-1",
		Prompt:             "Greet warmly.",
		MaxConcurrentCalls: maxConcurrent,
		Status:             campaign.StatusTesting,
		TestNumbers:        numbers,
	}
}

func newTestSession(t *testing.T, d campaign.Draft, dial dialer.Dialer) *Session {
	t.Helper()
	s, err := NewSession(d, dial, DefaultOptions())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func waitForStatus(t *testing.T, s *Session, index int, want AttemptStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, a := range s.Attempts() {
			if a.NumberIndex == index && a.Status == want {
				return
			}
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("attempt %d never reached %s", index, want)
}

func TestAddNumber_LimitExceeded(t *testing.T) {
	s := newTestSession(t, testDraft(1), &stubDialer{})

	for i := 0; i < 5; i++ {
		if err := s.AddNumber(fmt.Sprintf("+1555123456%d", i)); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if err := s.AddNumber("+15551230000"); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
	if got := len(s.Numbers()); got != 5 {
		t.Fatalf("expected 5 numbers, got %d", got)
	}
}

func TestAddNumber_RejectsDuplicateAfterTrim(t *testing.T) {
	s := newTestSession(t, testDraft(1), &stubDialer{})

	if err := s.AddNumber("+15551234567"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddNumber("  +15551234567  "); !errors.Is(err, ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}
}

func TestAddNumber_RandomizedSequencesHoldInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		s := newTestSession(t, testDraft(1), &stubDialer{})
		for op := 0; op < 20; op++ {
			n := fmt.Sprintf("+1555999%04d", rng.Intn(8))
			_ = s.AddNumber(n)
		}
		nums := s.Numbers()
		if len(nums) > 5 {
			t.Fatalf("trial %d: pool exceeded limit: %d", trial, len(nums))
		}
		seen := make(map[string]bool, len(nums))
		for _, n := range nums {
			if seen[n] {
				t.Fatalf("trial %d: duplicate %q", trial, n)
			}
			seen[n] = true
		}
	}
}

func TestRemoveNumber_MinimumRequired(t *testing.T) {
	s := newTestSession(t, testDraft(1, "+15551234567", "+15557654321"), &stubDialer{})

	if err := s.RemoveNumber(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.RemoveNumber(0); !errors.Is(err, ErrMinimumRequired) {
		t.Fatalf("expected ErrMinimumRequired, got %v", err)
	}
	if err := s.RemoveNumber(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestDial_RejectsShortNumber(t *testing.T) {
	s := newTestSession(t, testDraft(1, "12345"), &stubDialer{})

	if _, err := s.Dial(context.Background(), 0); !errors.Is(err, ErrInvalidNumber) {
		t.Fatalf("expected ErrInvalidNumber, got %v", err)
	}
	if s.Locked() {
		t.Fatalf("rejected dial must not lock the session")
	}
}

func TestDial_LocksNumberPool(t *testing.T) {
	s := newTestSession(t, testDraft(1, "+15551234567", "+15557654321"), &stubDialer{})

	if _, err := s.Dial(context.Background(), 0); err != nil {
		t.Fatalf("dial: %v", err)
	}
	if !s.Locked() {
		t.Fatalf("expected session locked after first dispatch")
	}
	if err := s.AddNumber("+15550001111"); !errors.Is(err, ErrSessionLocked) {
		t.Fatalf("expected ErrSessionLocked on add, got %v", err)
	}
	if err := s.RemoveNumber(1); !errors.Is(err, ErrSessionLocked) {
		t.Fatalf("expected ErrSessionLocked on remove, got %v", err)
	}
}

func TestDial_NoDoubleDial(t *testing.T) {
	d := &stubDialer{block: make(chan struct{})}
	s := newTestSession(t, testDraft(5, "+15551234567"), d)

	done := make(chan error, 1)
	go func() {
		_, err := s.Dial(context.Background(), 0)
		done <- err
	}()
	waitForStatus(t, s, 0, AttemptInProgress)

	if _, err := s.Dial(context.Background(), 0); !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("expected ErrAlreadyInProgress, got %v", err)
	}

	close(d.block)
	if err := <-done; err != nil {
		t.Fatalf("first dial: %v", err)
	}
	if d.calls != 1 {
		t.Fatalf("expected a single provider dial, got %d", d.calls)
	}
}

func TestDial_ThreeNumbersConcurrently(t *testing.T) {
	d := &stubDialer{}
	s := newTestSession(t, testDraft(5, "+15551230001", "+15551230002", "+15551230003"), d)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Dial(context.Background(), i)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
	}
	attempts := s.Attempts()
	if len(attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(attempts))
	}
	for _, a := range attempts {
		if a.Status != AttemptCompleted {
			t.Fatalf("attempt %d not completed: %s", a.NumberIndex, a.Status)
		}
	}
}

func TestDial_QueuesBeyondConcurrencyBound(t *testing.T) {
	d := &stubDialer{block: make(chan struct{})}
	s := newTestSession(t, testDraft(1, "+15551230001", "+15551230002", "+15551230003"), d)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Dial(context.Background(), i); err != nil {
				t.Errorf("dial %d: %v", i, err)
			}
		}(i)
	}

	// Let the first dial claim the slot, then release them all.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatalf("no attempt reached in_progress")
		}
		inProgress := false
		for _, a := range s.Attempts() {
			if a.Status == AttemptInProgress {
				inProgress = true
			}
		}
		if inProgress {
			break
		}
		time.Sleep(time.Millisecond)
	}
	close(d.block)
	wg.Wait()

	if d.maxInFlight > 1 {
		t.Fatalf("concurrency bound violated: %d in flight", d.maxInFlight)
	}
	for _, a := range s.Attempts() {
		if a.Status != AttemptCompleted {
			t.Fatalf("attempt %d not completed: %s", a.NumberIndex, a.Status)
		}
	}
}

func TestDial_CancellationRevertsToPending(t *testing.T) {
	d := &stubDialer{block: make(chan struct{})}
	s := newTestSession(t, testDraft(1, "+15551234567"), d)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Dial(ctx, 0)
		done <- err
	}()
	waitForStatus(t, s, 0, AttemptInProgress)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	waitForStatus(t, s, 0, AttemptPending)

	// Cancelled attempts are retryable.
	close(d.block)
	a, err := s.Dial(context.Background(), 0)
	if err != nil {
		t.Fatalf("retry dial: %v", err)
	}
	if a.Status != AttemptCompleted {
		t.Fatalf("expected completed retry, got %s", a.Status)
	}
}

func TestDial_TimeoutCompletesAsFailed(t *testing.T) {
	slow := dialer.NewSimulated(time.Minute)
	opts := DefaultOptions()
	opts.DialTimeout = 10 * time.Millisecond
	s, err := NewSession(testDraft(1, "+15551234567"), slow, opts)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	a, err := s.Dial(context.Background(), 0)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if a.Status != AttemptCompleted || a.Succeeded {
		t.Fatalf("expected failed completion on timeout, got %+v", a)
	}
}

func TestDial_RedialSupersedesFeedback(t *testing.T) {
	s := newTestSession(t, testDraft(1, "+15551234567"), &stubDialer{})
	ctx := context.Background()

	if _, err := s.Dial(ctx, 0); err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := s.RecordFeedback(0, campaign.RatingGood, "fine"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if !s.FeedbackComplete() {
		t.Fatalf("expected feedback complete")
	}

	if _, err := s.Dial(ctx, 0); err != nil {
		t.Fatalf("redial: %v", err)
	}
	if s.FeedbackComplete() {
		t.Fatalf("redial must supersede recorded feedback")
	}
}

func TestDial_RedialDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowRedial = false
	s, err := NewSession(testDraft(1, "+15551234567"), &stubDialer{}, opts)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	if _, err := s.Dial(context.Background(), 0); err != nil {
		t.Fatalf("dial: %v", err)
	}
	if _, err := s.Dial(context.Background(), 0); !errors.Is(err, ErrRedialDisabled) {
		t.Fatalf("expected ErrRedialDisabled, got %v", err)
	}
}

func TestReadyForFeedback(t *testing.T) {
	s := newTestSession(t, testDraft(1, "+15551234567"), &stubDialer{})
	if s.ReadyForFeedback() {
		t.Fatalf("no completed calls yet")
	}
	if err := s.RequireCompleted(); !errors.Is(err, ErrNoCompletedCalls) {
		t.Fatalf("expected ErrNoCompletedCalls, got %v", err)
	}

	if _, err := s.Dial(context.Background(), 0); err != nil {
		t.Fatalf("dial: %v", err)
	}
	if !s.ReadyForFeedback() {
		t.Fatalf("expected ready after a completed call")
	}
}

func TestNewSession_RejectsBadSeedNumbers(t *testing.T) {
	d := testDraft(1, "+15551234567", "+15551234567")
	if _, err := NewSession(d, &stubDialer{}, DefaultOptions()); err == nil {
		t.Fatalf("expected error for duplicate seed numbers")
	}
}
