package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates per-account write access across replicas.
// Lock blocks until the lock is acquired or the context is canceled, and
// returns an UnlockFunc that MUST be called to release it.
type DistributedLocker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
