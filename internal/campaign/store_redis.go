package campaign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps drafts as JSON values keyed by workspace and draft id,
// with a per-workspace index set for listing.
//
// Drafts are small and read-mostly; a plain SET/GET per draft is enough.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("campaign: redis client is required")
	}
	return &RedisStore{rdb: rdb}, nil
}

func draftKey(workspaceID, id string) string {
	return fmt.Sprintf("campaign:draft:%s:%s", workspaceID, id)
}

func indexKey(workspaceID string) string {
	return fmt.Sprintf("campaign:index:%s", workspaceID)
}

func (s *RedisStore) Save(ctx context.Context, d Draft) error {
	if d.WorkspaceID == "" || d.ID == "" {
		return errors.New("campaign: workspace_id and id required")
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("campaign: marshal draft: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, draftKey(d.WorkspaceID, d.ID), raw, 0)
	pipe.SAdd(ctx, indexKey(d.WorkspaceID), d.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("campaign: save draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, workspaceID, id string) (Draft, error) {
	if workspaceID == "" || id == "" {
		return Draft{}, errors.New("campaign: workspace_id and id required")
	}
	raw, err := s.rdb.Get(ctx, draftKey(workspaceID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("campaign: get draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return Draft{}, fmt.Errorf("campaign: unmarshal draft: %w", err)
	}
	return d, nil
}

func (s *RedisStore) List(ctx context.Context, workspaceID string) ([]Draft, error) {
	if workspaceID == "" {
		return nil, errors.New("campaign: workspace_id required")
	}
	ids, err := s.rdb.SMembers(ctx, indexKey(workspaceID)).Result()
	if err != nil {
		return nil, fmt.Errorf("campaign: list drafts: %w", err)
	}

	out := make([]Draft, 0, len(ids))
	for _, id := range ids {
		d, err := s.Get(ctx, workspaceID, id)
		if errors.Is(err, ErrNotFound) {
			// index may lag a deleted draft; skip
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
