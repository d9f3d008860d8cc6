package testdial

import (
	"campaign-platform/internal/campaign"
)

// RecordFeedback attaches a rating and optional note to a completed test
// call. Re-recording overwrites the previous entry (single-user data entry,
// last writer wins).
func (s *Session) RecordFeedback(index int, rating campaign.Rating, note string) error {
	if !rating.IsValid() {
		return ErrInvalidRating
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.numbers) {
		return ErrIndexOutOfRange
	}
	a, ok := s.attempts[index]
	if !ok || a.Status != AttemptCompleted {
		return ErrNotCompleted
	}
	s.feedback[index] = campaign.Feedback{NumberIndex: index, Rating: rating, Note: note}
	return nil
}

// FeedbackComplete reports whether every completed attempt has feedback.
func (s *Session) FeedbackComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.completedLocked() {
		if _, ok := s.feedback[i]; !ok {
			return false
		}
	}
	return true
}

// Feedback returns recorded feedback in number-index order.
func (s *Session) Feedback() []campaign.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]campaign.Feedback, 0, len(s.feedback))
	for i := 0; i < len(s.numbers); i++ {
		if fb, ok := s.feedback[i]; ok {
			out = append(out, fb)
		}
	}
	return out
}

// Finalize closes feedback collection and returns the TestResult skeleton:
// completed numbers, their feedback, and a timestamp. The adjusted prompt
// is derived separately and attached by the campaign service.
//
// It fails with ErrNoCompletedCalls when nothing completed and with
// ErrIncompleteFeedback when any completed attempt lacks feedback.
func (s *Session) Finalize() (campaign.TestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := s.completedLocked()
	if len(completed) == 0 {
		return campaign.TestResult{}, ErrNoCompletedCalls
	}

	numbers := make([]string, 0, len(completed))
	feedback := make([]campaign.Feedback, 0, len(completed))
	for _, i := range completed {
		fb, ok := s.feedback[i]
		if !ok {
			return campaign.TestResult{}, ErrIncompleteFeedback
		}
		numbers = append(numbers, s.numbers[i])
		feedback = append(feedback, fb)
	}

	return campaign.TestResult{
		Numbers:     numbers,
		Feedback:    feedback,
		CompletedAt: s.clock().UTC(),
	}, nil
}
