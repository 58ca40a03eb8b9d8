package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a previously acquired lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker provides cross-replica locking for session access.
// The engine itself is single-threaded per session; the locker extends that
// guarantee to deployments with multiple server instances.
type DistributedLocker interface {
	// Lock acquires a lock for the key, expiring after ttl as a safety net.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
