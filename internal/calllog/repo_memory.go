package calllog

import (
	"context"
	"errors"
	"sync"
)

// MemoryRepo is an in-memory call history store for tests and early
// development. It enforces workspace isolation on reads.

type MemoryRepo struct {
	mu   sync.Mutex
	Logs []CallLog
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Add(logs ...CallLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Logs = append(r.Logs, logs...)
}

func (r *MemoryRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]CallLog, error) {
	if workspaceID == "" {
		return nil, errors.New("workspace_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallLog, 0)
	for _, log := range r.Logs {
		if log.WorkspaceID != workspaceID {
			continue
		}
		out = append(out, log)
	}
	return out, nil
}
