package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only. No Update/Delete methods are provided.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records campaign lifecycle audit events.
//
// Audit is internal-only and best-effort: callers ignore append errors
// rather than failing the business operation.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.WorkspaceID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogTransition records a campaign status change.
func (s *Service) LogTransition(ctx context.Context, workspaceID, actorUserID, actorRole, campaignID, from, to string) error {
	return s.Append(ctx, Event{
		WorkspaceID: workspaceID,
		Type:        EventTypeTransition,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		CampaignID:  campaignID,
		FromStatus:  from,
		ToStatus:    to,
		NumberIndex: -1,
	})
}

// LogTestDial records the dispatch of a test dial for one number index.
func (s *Service) LogTestDial(ctx context.Context, workspaceID, actorUserID, actorRole, campaignID string, numberIndex int, message string) error {
	return s.Append(ctx, Event{
		WorkspaceID: workspaceID,
		Type:        EventTypeTestDial,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		CampaignID:  campaignID,
		NumberIndex: numberIndex,
		Message:     message,
	})
}
