package lock_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/lock"
)

func newLocker(t *testing.T) (lock.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return lock.Locker{R: client}, mr
}

func TestTryAcquireIsExclusive(t *testing.T) {
	locker, _ := newLocker(t)
	ctx := context.Background()

	release, ok, err := locker.TryAcquire(ctx, "submit:sess-1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryAcquire(ctx, "submit:sess-1", time.Second)
	require.NoError(t, err)
	require.False(t, ok, "second acquire must fail while the lock is held")

	release()

	release2, ok, err := locker.TryAcquire(ctx, "submit:sess-1", time.Second)
	require.NoError(t, err)
	require.True(t, ok, "lock must be reusable after release")
	release2()
}

func TestTryAcquireSeparateKeys(t *testing.T) {
	locker, _ := newLocker(t)
	ctx := context.Background()

	r1, ok, err := locker.TryAcquire(ctx, "submit:sess-1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	defer r1()

	r2, ok, err := locker.TryAcquire(ctx, "submit:sess-2", time.Second)
	require.NoError(t, err)
	require.True(t, ok, "locks on different sessions must not interfere")
	defer r2()
}

func TestReleaseIgnoresStolenLock(t *testing.T) {
	locker, mr := newLocker(t)
	ctx := context.Background()

	release, ok, err := locker.TryAcquire(ctx, "submit:sess-1", 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate expiry followed by another holder.
	mr.FastForward(100 * time.Millisecond)
	_, ok, err = locker.TryAcquire(ctx, "submit:sess-1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// The stale release must not delete the new holder's lock.
	release()
	_, ok, err = locker.TryAcquire(ctx, "submit:sess-1", time.Second)
	require.NoError(t, err)
	require.False(t, ok)
}
