package audit

import (
	"context"
	"sync"
)

// MemoryRepo is an append-only in-memory audit repository for tests and
// local development.
type MemoryRepo struct {
	mu     sync.Mutex
	Events []Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
	return nil
}

// ByCampaign returns events recorded for one campaign, in append order.
func (r *MemoryRepo) ByCampaign(campaignID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0)
	for _, e := range r.Events {
		if e.CampaignID == campaignID {
			out = append(out, e)
		}
	}
	return out
}
