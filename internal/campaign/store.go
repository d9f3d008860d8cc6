package campaign

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a draft id does not exist in the store.
var ErrNotFound = errors.New("campaign: draft not found")

// Store is the persistence port for campaign drafts.
//
// The core treats it as a key-value map keyed by draft id within a
// workspace: Save is a full upsert, Get returns the last saved value.
// It never reads back state it did not write.
type Store interface {
	Save(ctx context.Context, d Draft) error
	Get(ctx context.Context, workspaceID, id string) (Draft, error)
	List(ctx context.Context, workspaceID string) ([]Draft, error)
}
