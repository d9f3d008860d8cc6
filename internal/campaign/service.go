package campaign

import (
	"context"
	"errors"
	"time"

	"campaign-platform/internal/audit"
	"campaign-platform/internal/auth"
)

// Service owns campaign lifecycle persistence and transitions.
//
// Draft configuration is only ever written by Assemble; after that the
// service writes status, the locked test-number pool, and the attach-once
// TestResult. Nothing else mutates a stored draft.
type Service struct {
	store Store
	audit *audit.Service // best-effort, may be nil
	clock func() time.Time
}

func NewService(store Store, auditSvc *audit.Service) *Service {
	return &Service{store: store, audit: auditSvc, clock: time.Now}
}

// CreateDraft assembles the builder's sections and persists the result
// with status draft.
func (s *Service) CreateDraft(ctx context.Context, b *Builder) (Draft, error) {
	if s.store == nil {
		return Draft{}, errors.New("campaign: store not configured")
	}
	d, err := b.Assemble()
	if err != nil {
		return Draft{}, err
	}
	if err := s.store.Save(ctx, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, workspaceID, id string) (Draft, error) {
	if s.store == nil {
		return Draft{}, errors.New("campaign: store not configured")
	}
	return s.store.Get(ctx, workspaceID, id)
}

func (s *Service) List(ctx context.Context, workspaceID string) ([]Draft, error) {
	if s.store == nil {
		return nil, errors.New("campaign: store not configured")
	}
	return s.store.List(ctx, workspaceID)
}

// BeginTesting performs the caller-driven draft -> testing transition.
func (s *Service) BeginTesting(ctx context.Context, workspaceID, id string) (Draft, error) {
	return s.transition(ctx, workspaceID, id, StatusTesting)
}

// AttachTestResult performs testing -> reviewed. testNumbers is the locked
// pool of the finished session and is persisted alongside the result.
func (s *Service) AttachTestResult(ctx context.Context, workspaceID, id string, testNumbers []string, result TestResult) (Draft, error) {
	if s.store == nil {
		return Draft{}, errors.New("campaign: store not configured")
	}
	d, err := s.store.Get(ctx, workspaceID, id)
	if err != nil {
		return Draft{}, err
	}
	from := d.Status
	if err := AttachResult(&d, result); err != nil {
		return Draft{}, err
	}
	if len(testNumbers) > 0 {
		d.TestNumbers = copyStrings(testNumbers)
	}
	d.UpdatedAt = s.clock().UTC()
	if err := s.store.Save(ctx, d); err != nil {
		return Draft{}, err
	}
	s.logTransition(ctx, d, from)
	return d, nil
}

// SetStatus performs the externally triggered transitions:
// reviewed -> active (approval), active <-> paused, and
// {active, paused} -> completed.
//
// draft -> testing belongs to BeginTesting and testing -> reviewed to
// AttachTestResult; requesting them here is a sequencing bug.
func (s *Service) SetStatus(ctx context.Context, workspaceID, id string, to Status) (Draft, error) {
	if to == StatusTesting || to == StatusReviewed {
		return Draft{}, ErrInvalidTransition
	}
	return s.transition(ctx, workspaceID, id, to)
}

func (s *Service) transition(ctx context.Context, workspaceID, id string, to Status) (Draft, error) {
	if s.store == nil {
		return Draft{}, errors.New("campaign: store not configured")
	}
	d, err := s.store.Get(ctx, workspaceID, id)
	if err != nil {
		return Draft{}, err
	}
	from := d.Status
	if err := Transition(&d, to); err != nil {
		return Draft{}, err
	}
	d.UpdatedAt = s.clock().UTC()
	if err := s.store.Save(ctx, d); err != nil {
		return Draft{}, err
	}
	s.logTransition(ctx, d, from)
	return d, nil
}

func (s *Service) logTransition(ctx context.Context, d Draft, from Status) {
	if s.audit == nil {
		return
	}
	actor, _ := auth.UserID(ctx)
	role, _ := auth.Role(ctx)
	// Audit is best-effort; transition outcomes never depend on it.
	_ = s.audit.LogTransition(ctx, d.WorkspaceID, actor, role, d.ID, from.String(), d.Status.String())
}
