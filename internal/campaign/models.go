package campaign

import (
	"fmt"
	"strings"
	"time"
)

// Status is the campaign lifecycle state.
//
// draft -> testing -> reviewed -> active, with active <-> paused and
// {active, paused} -> completed. completed is terminal.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusTesting   Status = "testing"
	StatusReviewed  Status = "reviewed"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusTesting, StatusReviewed, StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

// ScheduleMode controls when an approved campaign starts calling.
type ScheduleMode string

const (
	ScheduleImmediate ScheduleMode = "immediate"
	ScheduleScheduled ScheduleMode = "scheduled"
)

func (m ScheduleMode) IsValid() bool {
	return m == ScheduleImmediate || m == ScheduleScheduled
}

// Draft is a campaign configuration moving through the approval lifecycle.
//
// Invariants:
// - Configuration fields are frozen once Status advances past draft; only
//   later stages write TestNumbers (until the test session locks) and
//   TestResult (attach-once).
// - WorkspaceID is required on every row.
type Draft struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// AgentIDs may be empty; ContactGroupIDs select the live-run audience.
	AgentIDs        []string `json:"agent_ids,omitempty"`
	ContactGroupIDs []string `json:"contact_group_ids,omitempty"`

	Prompt string `json:"prompt"`

	// MaxCallDurationSeconds is at least 60.
	MaxCallDurationSeconds int `json:"max_call_duration_seconds"`
	// MaxConcurrentCalls bounds parallel dials, 1..100.
	MaxConcurrentCalls int `json:"max_concurrent_calls"`

	ScheduleMode ScheduleMode `json:"schedule_mode"`
	// ScheduledFor is required iff ScheduleMode == scheduled.
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`

	Script       string   `json:"script,omitempty"`
	TrainingText string   `json:"training_text,omitempty"`
	TrainingURLs []string `json:"training_urls,omitempty"`
	// TrainingFileRefs are opaque handles owned by the upload collaborator;
	// stored verbatim, never inspected.
	TrainingFileRefs []string `json:"training_file_refs,omitempty"`

	// TestNumbers is the validation pool for the test-dial session.
	TestNumbers []string `json:"test_numbers,omitempty"`

	Status Status `json:"status"`

	// TestResult is attached exactly once when testing is finalized.
	TestResult *TestResult `json:"test_result,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers can hand out drafts without
// sharing backing arrays.
func (d Draft) Clone() Draft {
	out := d
	out.AgentIDs = copyStrings(d.AgentIDs)
	out.ContactGroupIDs = copyStrings(d.ContactGroupIDs)
	out.TrainingURLs = copyStrings(d.TrainingURLs)
	out.TrainingFileRefs = copyStrings(d.TrainingFileRefs)
	out.TestNumbers = copyStrings(d.TestNumbers)
	if d.ScheduledFor != nil {
		t := *d.ScheduledFor
		out.ScheduledFor = &t
	}
	if d.TestResult != nil {
		r := d.TestResult.Clone()
		out.TestResult = &r
	}
	return out
}

// Rating grades a single test call.
type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingAverage   Rating = "average"
	RatingPoor      Rating = "poor"
	RatingTerrible  Rating = "terrible"
)

func (r Rating) IsValid() bool {
	switch r {
	case RatingExcellent, RatingGood, RatingAverage, RatingPoor, RatingTerrible:
		return true
	}
	return false
}

func ParseRating(s string) (Rating, error) {
	r := Rating(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("invalid rating %q", s)
	}
	return r, nil
}

// Feedback grades one completed test call. NumberIndex is a position in the
// draft's TestNumbers list, valid only while that list is locked.
type Feedback struct {
	NumberIndex int    `json:"number_index"`
	Rating      Rating `json:"rating"`
	Note        string `json:"note,omitempty"`
}

// TestResult is the immutable outcome of a finalized test session.
type TestResult struct {
	// Numbers lists the test numbers whose dial completed.
	Numbers  []string   `json:"numbers"`
	Feedback []Feedback `json:"feedback"`

	// AdjustedPrompt is derived from the draft prompt and feedback notes.
	AdjustedPrompt string `json:"adjusted_prompt"`

	CompletedAt time.Time `json:"completed_at"`
}

func (r TestResult) Clone() TestResult {
	out := r
	out.Numbers = copyStrings(r.Numbers)
	out.Feedback = append([]Feedback(nil), r.Feedback...)
	return out
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
