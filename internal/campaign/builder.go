package campaign

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Section identifies one step of the draft configuration flow.
type Section string

const (
	SectionBasics   Section = "basics"
	SectionCalling  Section = "calling"
	SectionSchedule Section = "schedule"
	SectionTraining Section = "training"
)

func (s Section) IsValid() bool {
	switch s {
	case SectionBasics, SectionCalling, SectionSchedule, SectionTraining:
		return true
	}
	return false
}

// Sections lists all configuration sections in flow order.
func Sections() []Section {
	return []Section{SectionBasics, SectionCalling, SectionSchedule, SectionTraining}
}

// FieldError is a per-field, recoverable validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

var (
	ErrIncompleteDraft = errors.New("campaign: draft has missing or invalid sections")
	ErrUnknownSection  = errors.New("campaign: unknown section")
)

// SectionValues carries the raw inputs for one section. Each section reads
// only its own fields; validity is a pure function of those inputs.
type SectionValues struct {
	// basics
	Name            string   `json:"name,omitempty"`
	Description     string   `json:"description,omitempty"`
	Prompt          string   `json:"prompt,omitempty"`
	AgentIDs        []string `json:"agent_ids,omitempty"`
	ContactGroupIDs []string `json:"contact_group_ids,omitempty"`

	// calling
	MaxCallDurationSeconds int `json:"max_call_duration_seconds,omitempty"`
	MaxConcurrentCalls     int `json:"max_concurrent_calls,omitempty"`

	// schedule
	ScheduleMode ScheduleMode `json:"schedule_mode,omitempty"`
	ScheduledFor *time.Time   `json:"scheduled_for,omitempty"`

	// training
	Script       string   `json:"script,omitempty"`
	TrainingText string   `json:"training_text,omitempty"`
	TrainingURLs []string `json:"training_urls,omitempty"`
	// URLsTouched marks that the caller edited the URL fields at all; an
	// untouched URL list is valid, a touched one needs a non-empty line.
	URLsTouched      bool     `json:"urls_touched,omitempty"`
	TrainingFileRefs []string `json:"training_file_refs,omitempty"`
}

const (
	minCallDurationSeconds = 60
	minConcurrentCalls     = 1
	maxConcurrentCalls     = 100
)

// ValidateSection checks one section's inputs in isolation. now anchors the
// not-in-the-past rule for scheduled campaigns.
func ValidateSection(sec Section, v SectionValues, now time.Time) []FieldError {
	var errs []FieldError

	switch sec {
	case SectionBasics:
		if strings.TrimSpace(v.Name) == "" {
			errs = append(errs, FieldError{Field: "name", Message: "name is required"})
		}

	case SectionCalling:
		if v.MaxCallDurationSeconds < minCallDurationSeconds {
			errs = append(errs, FieldError{
				Field:   "max_call_duration_seconds",
				Message: fmt.Sprintf("must be at least %d", minCallDurationSeconds),
			})
		}
		if v.MaxConcurrentCalls < minConcurrentCalls || v.MaxConcurrentCalls > maxConcurrentCalls {
			errs = append(errs, FieldError{
				Field:   "max_concurrent_calls",
				Message: fmt.Sprintf("must be between %d and %d", minConcurrentCalls, maxConcurrentCalls),
			})
		}

	case SectionSchedule:
		if !v.ScheduleMode.IsValid() {
			errs = append(errs, FieldError{Field: "schedule_mode", Message: "must be immediate or scheduled"})
			break
		}
		if v.ScheduleMode == ScheduleScheduled {
			if v.ScheduledFor == nil {
				errs = append(errs, FieldError{Field: "scheduled_for", Message: "date and time are required for scheduled campaigns"})
			} else if v.ScheduledFor.Before(now) {
				errs = append(errs, FieldError{Field: "scheduled_for", Message: "must not be in the past"})
			}
		}

	case SectionTraining:
		if v.URLsTouched {
			any := false
			for _, u := range v.TrainingURLs {
				if strings.TrimSpace(u) != "" {
					any = true
					break
				}
			}
			if !any {
				errs = append(errs, FieldError{Field: "training_urls", Message: "at least one URL is required"})
			}
		}

	default:
		errs = append(errs, FieldError{Field: string(sec), Message: "unknown section"})
	}

	return errs
}

type sectionState struct {
	values SectionValues
	valid  bool
}

// Builder collects section inputs and assembles an immutable Draft.
// It is not safe for concurrent use; each authoring flow gets its own.
type Builder struct {
	workspaceID string
	sections    map[Section]sectionState
	clock       func() time.Time
}

func NewBuilder(workspaceID string) *Builder {
	return &Builder{
		workspaceID: workspaceID,
		sections:    make(map[Section]sectionState, 4),
		clock:       time.Now,
	}
}

// SetSection validates and records one section. The last validation result
// per section is what Assemble gates on.
func (b *Builder) SetSection(sec Section, v SectionValues) []FieldError {
	if !sec.IsValid() {
		return []FieldError{{Field: string(sec), Message: "unknown section"}}
	}
	errs := ValidateSection(sec, v, b.clock().UTC())
	b.sections[sec] = sectionState{values: v, valid: len(errs) == 0}
	return errs
}

// Assemble builds a frozen Draft with a fresh identity and status draft.
// It fails when any section is missing or its last validation failed.
// Persistence is the caller's responsibility.
func (b *Builder) Assemble() (Draft, error) {
	if b.workspaceID == "" {
		return Draft{}, fmt.Errorf("%w: workspace_id required", ErrIncompleteDraft)
	}

	var missing []string
	for _, sec := range Sections() {
		st, ok := b.sections[sec]
		if !ok {
			missing = append(missing, string(sec)+" not provided")
			continue
		}
		if !st.valid {
			missing = append(missing, string(sec)+" invalid")
		}
	}
	if len(missing) > 0 {
		return Draft{}, fmt.Errorf("%w: %s", ErrIncompleteDraft, strings.Join(missing, ", "))
	}

	basics := b.sections[SectionBasics].values
	calling := b.sections[SectionCalling].values
	schedule := b.sections[SectionSchedule].values
	training := b.sections[SectionTraining].values

	now := b.clock().UTC()
	d := Draft{
		ID:          uuid.NewString(),
		WorkspaceID: b.workspaceID,

		Name:            strings.TrimSpace(basics.Name),
		Description:     basics.Description,
		Prompt:          basics.Prompt,
		AgentIDs:        copyStrings(basics.AgentIDs),
		ContactGroupIDs: copyStrings(basics.ContactGroupIDs),

		MaxCallDurationSeconds: calling.MaxCallDurationSeconds,
		MaxConcurrentCalls:     calling.MaxConcurrentCalls,

		ScheduleMode: schedule.ScheduleMode,

		Script:           training.Script,
		TrainingText:     training.TrainingText,
		TrainingURLs:     copyStrings(training.TrainingURLs),
		TrainingFileRefs: copyStrings(training.TrainingFileRefs),

		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if schedule.ScheduledFor != nil {
		t := schedule.ScheduledFor.UTC()
		d.ScheduledFor = &t
	}
	return d, nil
}
