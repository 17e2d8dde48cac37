package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &RedisStore{R: client, TTL: time.Hour}, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	sess := sessionAt(StepShipping)
	require.NoError(t, st.Put(ctx, sess))

	got, err := st.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, sess.ID, got.ID)
	require.Equal(t, StepShipping, got.Step)
	require.Equal(t, sess.Form, got.Form)
}

func TestRedisStoreMissingSession(t *testing.T) {
	st, _ := newTestStore(t)
	_, err := st.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreSessionsExpire(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := context.Background()

	sess := sessionAt(StepInformation)
	require.NoError(t, st.Put(ctx, sess))

	mr.FastForward(2 * time.Hour)
	_, err := st.Get(ctx, sess.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreDeleteIsIdempotent(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	sess := sessionAt(StepInformation)
	require.NoError(t, st.Put(ctx, sess))
	require.NoError(t, st.Delete(ctx, sess.ID))
	require.NoError(t, st.Delete(ctx, sess.ID))
	_, err := st.Get(ctx, sess.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
