package calllog

import "time"

// CallLog is a tenant-scoped historical call record. Rows come from the call
// history store; this package only filters and exports them.
//
// Multi-tenant invariant: WorkspaceID is required on every row.

type CallLog struct {
	ID          string `json:"id" db:"id"`
	WorkspaceID string `json:"workspace_id" db:"workspace_id"`

	AgentID     string `json:"agent_id" db:"agent_id"`
	AgentName   string `json:"agent_name" db:"agent_name"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`

	Status Status `json:"status" db:"status"`

	// DurationSeconds is meaningful only for statuses where the call was
	// answered; see HasDuration.
	DurationSeconds int `json:"duration" db:"duration"`

	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Summary   string    `json:"summary" db:"summary"`
}

type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusBusy         Status = "busy"
	StatusNoAnswer     Status = "no_answer"
	StatusFailed       Status = "failed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusConnected, StatusDisconnected, StatusBusy, StatusNoAnswer, StatusFailed:
		return true
	}
	return false
}

// HasDuration reports whether DurationSeconds carries meaning for this
// status. Busy and unanswered calls never reached the agent.
func (s Status) HasDuration() bool {
	switch s {
	case StatusBusy, StatusNoAnswer:
		return false
	}
	return true
}
