package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/novapay/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ErrLockNotHeld is returned by an UnlockFunc when the lock expired or was
// taken over before release.
var ErrLockNotHeld = errors.New("distributed lock no longer held")

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Locker implements ports.DistributedLocker using Redis SET NX PX.
type Locker struct {
	client   *backend.Client
	prefix   string
	interval time.Duration
}

// NewLocker creates a new Redis locker. Keys are written as prefix+"lock:"+key.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client:   client,
		prefix:   prefix,
		interval: 50 * time.Millisecond,
	}
}

// Lock acquires a distributed lock for the given key, polling until ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				n, err := releaseScript.Run(ctx, l.client, []string{lockKey}, token).Int()
				if err != nil {
					return fmt.Errorf("redis error releasing lock: %w", err)
				}
				if n == 0 {
					return ErrLockNotHeld
				}
				return nil
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
