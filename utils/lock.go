package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const slotLockPrefix = "slotlock:"

// ErrLockNotAcquired is returned when another holder kept the lock for every attempt.
var ErrLockNotAcquired = errors.New("lock not acquired")

// Deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX PX mutex shared by every instance using the same Redis.
type RedisLocker struct {
	client  *redis.Client
	ttl     time.Duration
	retries int
	backoff time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, retries: 5, backoff: 50 * time.Millisecond}
}

// SlotLockKey identifies one provider slot regardless of the offset it was written with.
func SlotLockKey(providerID string, start time.Time) string {
	return fmt.Sprintf("%s%s:%d", slotLockPrefix, providerID, start.UnixNano())
}

// Lock takes key, retrying a bounded number of times. The returned func releases it.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	token := uuid.NewString()
	for attempt := 0; ; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return func(ctx context.Context) error {
				return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
			}, nil
		}
		if attempt >= l.retries {
			return nil, ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.backoff * time.Duration(attempt+1)):
		}
	}
}
