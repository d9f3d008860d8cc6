package audit

import "time"

// Event is an immutable, append-only audit record of campaign lifecycle
// activity.
//
// Invariants:
// - Events are never updated or deleted.
// - workspace_id is required for tenancy isolation.
// - Actor capture is best-effort; never block lifecycle flows on audit
//   failures.
type Event struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`

	Type EventType `json:"type"`

	ActorUserID string `json:"actor_user_id,omitempty"`
	ActorRole   string `json:"actor_role,omitempty"`

	CampaignID string `json:"campaign_id,omitempty"`

	// FromStatus/ToStatus are set for transition events.
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status,omitempty"`

	// NumberIndex is set for test-dial events (-1 when not applicable).
	NumberIndex int `json:"number_index,omitempty"`

	Message string `json:"message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type EventType string

const (
	EventTypeTransition EventType = "campaign_transition"
	EventTypeTestDial   EventType = "test_dial"
)
