// ABOUTME: Redis implementation of the session Repository using go-redis
// ABOUTME: Persists messages, the id counter, and ratings as separate JSON keys

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	messagesKey = "messages"
	nextIDKey   = "next_id"
	ratingsKey  = "ratings"
)

// RedisRepository implements Repository using Redis. Each session lives under
// a key prefix so multiple widget instances can share one server.
type RedisRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRepository creates a Redis-backed repository. A non-positive ttl
// defaults to the session retention window, which keeps abandoned sessions
// from accumulating server-side.
func NewRedisRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisRepository {
	if ttl <= 0 {
		ttl = DefaultRetention
	}
	return &RedisRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisRepository) key(name string) string {
	return r.prefix + ":" + name
}

// Load implements Repository.
func (r *RedisRepository) Load(ctx context.Context) (*State, error) {
	vals, err := r.client.MGet(ctx, r.key(messagesKey), r.key(nextIDKey), r.key(ratingsKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("loading session keys: %w", err)
	}

	rawMessages, ok := vals[0].(string)
	if !ok {
		return nil, ErrNotFound
	}
	rawNextID, ok := vals[1].(string)
	if !ok {
		return nil, ErrNotFound
	}

	state := &State{}
	if err := json.Unmarshal([]byte(rawMessages), &state.Messages); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}
	if err := json.Unmarshal([]byte(rawNextID), &state.NextID); err != nil {
		return nil, fmt.Errorf("decoding id counter: %w", err)
	}
	if rawRatings, ok := vals[2].(string); ok {
		if err := json.Unmarshal([]byte(rawRatings), &state.Ratings); err != nil {
			return nil, fmt.Errorf("decoding ratings: %w", err)
		}
	}

	return state, nil
}

// Save implements Repository. All three keys are written in one pipelined
// transaction so a partial session is never visible.
func (r *RedisRepository) Save(ctx context.Context, state *State) error {
	messages, err := json.Marshal(state.Messages)
	if err != nil {
		return fmt.Errorf("encoding messages: %w", err)
	}
	nextID, err := json.Marshal(state.NextID)
	if err != nil {
		return fmt.Errorf("encoding id counter: %w", err)
	}
	ratings, err := json.Marshal(state.Ratings)
	if err != nil {
		return fmt.Errorf("encoding ratings: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(messagesKey), messages, r.ttl)
		pipe.Set(ctx, r.key(nextIDKey), nextID, r.ttl)
		pipe.Set(ctx, r.key(ratingsKey), ratings, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving session keys: %w", err)
	}
	return nil
}

// Clear implements Repository.
func (r *RedisRepository) Clear(ctx context.Context) error {
	err := r.client.Del(ctx, r.key(messagesKey), r.key(nextIDKey), r.key(ratingsKey)).Err()
	if err != nil {
		return fmt.Errorf("clearing session keys: %w", err)
	}
	return nil
}

// Close releases the underlying Redis client.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
