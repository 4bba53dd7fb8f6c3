package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Simplici0/nebula-roi/internal/roi"
)

const keyPrefix = "roi:session:"

// RedisStore keeps sessions as JSON values that expire after ttl of inactivity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStore{client: rdb, ttl: ttl}
}

// Ping checks that the Redis server is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Get(ctx context.Context, id string) (roi.InputState, error) {
	val, err := r.client.GetEx(ctx, sessionKey(id), r.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return roi.InputState{}, ErrNotFound
	}
	if err != nil {
		return roi.InputState{}, fmt.Errorf("get session: %w", err)
	}
	return decodeState(val)
}

func (r *RedisStore) Save(ctx context.Context, id string, state roi.InputState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return keyPrefix + id
}

// decodeState parses a stored record and re-applies the input coercion rules,
// since the value may have been written by an older build.
func decodeState(data []byte) (roi.InputState, error) {
	var state roi.InputState
	if err := json.Unmarshal(data, &state); err != nil {
		return roi.InputState{}, fmt.Errorf("decode session: %w", err)
	}
	return state.Normalize(), nil
}
