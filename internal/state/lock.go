package state

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultLockTTL is the default run-lock lease duration. A worker that dies
// mid-cycle loses the lease instead of wedging the pipeline.
const DefaultLockTTL = 30 * time.Second

// RunLock is a Redis lease keeping at most one sync cycle active per
// deployment. Each instance holds a random owner token; release and extend
// are check-and-act Lua scripts so an expired lease can never delete a
// newer owner's lock.
type RunLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

// NewRunLock creates a run lock for the given process name.
func NewRunLock(client *redis.Client, name string, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RunLock{
		client: client,
		key:    name,
		token:  uuid.New().String(),
		ttl:    ttl,
	}
}

// TryAcquire attempts to take the lock without blocking. A false return
// means another cycle is active and the caller must skip this tick.
func (l *RunLock) TryAcquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	return ok, nil
}

// Release deletes the lock if this instance still owns it. Releasing an
// already expired lease is not an error.
func (l *RunLock) Release(ctx context.Context) error {
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)

	if err := script.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}

// Extend renews the lease if it is still held. Long cycles call this as a
// heartbeat so the lock outlives slow extraction or write phases.
func (l *RunLock) Extend(ctx context.Context) (bool, error) {
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)

	result, err := script.Run(ctx, l.client, []string{l.key}, l.token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("extend run lock: %w", err)
	}
	return result == 1, nil
}

// Key returns the lock key.
func (l *RunLock) Key() string { return l.key }
