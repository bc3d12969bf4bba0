package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage is the Redis-backed Storage adapter.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage creates a Redis-backed Storage using an already connected
// client.
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

// GetState returns the stored value for key, or ErrKeyNotFound.
func (s *RedisStorage) GetState(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get state %q: %w", key, err)
	}
	return val, nil
}

// SaveState persists the value for key with no expiry.
func (s *RedisStorage) SaveState(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("save state %q: %w", key, err)
	}
	return nil
}
