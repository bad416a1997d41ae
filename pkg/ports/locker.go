package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates access to one wizard session across
// several processes sharing the same StateStore.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The lock expires after ttl if never released.
	// The returned UnlockFunc MUST be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
