package testdial

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"campaign-platform/pkg/utils"
)

// RedisLease enforces one live test session per draft across API replicas.
// The in-process manager map handles the single-instance case; this covers
// deployments with more than one instance sharing Redis.
type RedisLease struct {
	rdb   *redis.Client
	owner string
	ttl   time.Duration
}

func NewRedisLease(rdb *redis.Client, ttl time.Duration) *RedisLease {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisLease{
		rdb:   rdb,
		owner: uuid.NewString(),
		ttl:   ttl,
	}
}

func leaseKey(workspaceID, campaignID string) string {
	return "testdial:session:" + workspaceID + ":" + campaignID
}

func (l *RedisLease) Acquire(ctx context.Context, workspaceID, campaignID string) (bool, error) {
	return utils.AcquireLease(ctx, l.rdb, leaseKey(workspaceID, campaignID), l.owner, l.ttl)
}

func (l *RedisLease) Release(ctx context.Context, workspaceID, campaignID string) error {
	return utils.ReleaseLease(ctx, l.rdb, leaseKey(workspaceID, campaignID), l.owner)
}
