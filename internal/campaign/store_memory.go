package campaign

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryStore is an in-memory draft store for tests and local development.
// It enforces workspace isolation on reads.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string]Draft // key: workspace_id|draft_id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]Draft)}
}

func (s *MemoryStore) Save(ctx context.Context, d Draft) error {
	if d.WorkspaceID == "" || d.ID == "" {
		return errors.New("campaign: workspace_id and id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.WorkspaceID+"|"+d.ID] = d.Clone()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, workspaceID, id string) (Draft, error) {
	if workspaceID == "" || id == "" {
		return Draft{}, errors.New("campaign: workspace_id and id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[workspaceID+"|"+id]
	if !ok {
		return Draft{}, ErrNotFound
	}
	return d.Clone(), nil
}

func (s *MemoryStore) List(ctx context.Context, workspaceID string) ([]Draft, error) {
	if workspaceID == "" {
		return nil, errors.New("campaign: workspace_id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Draft, 0)
	for _, d := range s.drafts {
		if d.WorkspaceID == workspaceID {
			out = append(out, d.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
