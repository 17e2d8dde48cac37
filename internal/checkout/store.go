package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists checkout sessions. Sessions carry a TTL so abandoned
// checkouts expire on their own.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Put(ctx context.Context, s Session) error
	Delete(ctx context.Context, id string) error
}

const sessionKeyPrefix = "checkout:session:"

// RedisStore keeps sessions as JSON blobs under checkout:session:{id}.
type RedisStore struct {
	R   redis.UniversalClient
	TTL time.Duration
}

// Get implements Store. A missing or expired key maps to ErrNotFound.
func (st *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	raw, err := st.R.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

// Put implements Store. Every write refreshes the TTL.
func (st *RedisStore) Put(ctx context.Context, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := st.R.Set(ctx, sessionKeyPrefix+s.ID, raw, st.TTL).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// Delete implements Store. Deleting an absent session is not an error.
func (st *RedisStore) Delete(ctx context.Context, id string) error {
	if err := st.R.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
