package testdial

import (
	"context"
	"fmt"
	"sync"

	"campaign-platform/internal/campaign"
	"campaign-platform/internal/dialer"
)

// Lease guards one live test session per draft across API instances.
// The in-memory manager already enforces this per process; a Redis-backed
// lease extends it when the API runs replicated.
type Lease interface {
	Acquire(ctx context.Context, workspaceID, campaignID string) (bool, error)
	Release(ctx context.Context, workspaceID, campaignID string) error
}

// Manager tracks live test-dial sessions by draft.
type Manager struct {
	dial  dialer.Dialer
	opts  Options
	lease Lease // optional

	mu       sync.Mutex
	sessions map[string]*Session // key: workspace_id|campaign_id
}

func NewManager(dial dialer.Dialer, opts Options, lease Lease) *Manager {
	return &Manager{
		dial:     dial,
		opts:     opts,
		lease:    lease,
		sessions: make(map[string]*Session),
	}
}

func sessionKey(workspaceID, campaignID string) string {
	return workspaceID + "|" + campaignID
}

// Start opens a test session for a draft in testing. One live session per
// draft: a second Start fails with ErrSessionExists.
func (m *Manager) Start(ctx context.Context, d campaign.Draft) (*Session, error) {
	key := sessionKey(d.WorkspaceID, d.ID)

	if m.lease != nil {
		ok, err := m.lease.Acquire(ctx, d.WorkspaceID, d.ID)
		if err != nil {
			return nil, fmt.Errorf("testdial: acquire lease: %w", err)
		}
		if !ok {
			return nil, ErrSessionExists
		}
	}

	s, err := NewSession(d, m.dial, m.opts)
	if err != nil {
		if m.lease != nil {
			_ = m.lease.Release(ctx, d.WorkspaceID, d.ID)
		}
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[key]; exists {
		if m.lease != nil {
			_ = m.lease.Release(ctx, d.WorkspaceID, d.ID)
		}
		return nil, ErrSessionExists
	}
	m.sessions[key] = s
	return s, nil
}

// Get returns the live session for a draft.
func (m *Manager) Get(workspaceID, campaignID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey(workspaceID, campaignID)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// End discards the live session, releasing its lease if any. Called after
// finalize, or to abandon a session.
func (m *Manager) End(ctx context.Context, workspaceID, campaignID string) {
	m.mu.Lock()
	delete(m.sessions, sessionKey(workspaceID, campaignID))
	m.mu.Unlock()

	if m.lease != nil {
		_ = m.lease.Release(ctx, workspaceID, campaignID)
	}
}
