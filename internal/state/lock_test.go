package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLock_MutualExclusion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	first := NewRunLock(client, "etl_process_flag", time.Minute)
	second := NewRunLock(client, "etl_process_flag", time.Minute)

	ok, err := first.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Release(ctx))

	ok, err = second.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunLock_ReleaseOnlyOwnLease(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	owner := NewRunLock(client, "etl_process_flag", time.Minute)
	intruder := NewRunLock(client, "etl_process_flag", time.Minute)

	ok, err := owner.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// A non-owner release must leave the lease in place.
	require.NoError(t, intruder.Release(ctx))
	assert.True(t, mr.Exists("etl_process_flag"))

	require.NoError(t, owner.Release(ctx))
	assert.False(t, mr.Exists("etl_process_flag"))
}

func TestRunLock_ExpiredLeaseCanBeTaken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	first := NewRunLock(client, "etl_process_flag", time.Second)
	second := NewRunLock(client, "etl_process_flag", time.Second)

	ok, err := first.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = second.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// The first holder lost the lease and must not extend it.
	held, err := first.Extend(ctx)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestRunLock_ExtendRenewsLease(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	lock := NewRunLock(client, "etl_process_flag", 2*time.Second)

	ok, err := lock.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(time.Second)

	held, err := lock.Extend(ctx)
	require.NoError(t, err)
	assert.True(t, held)

	// Past the original deadline but within the renewed one.
	mr.FastForward(1500 * time.Millisecond)
	assert.True(t, mr.Exists("etl_process_flag"))
}

func TestNewRunLock_DefaultTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	lock := NewRunLock(client, "etl_process_flag", 0)
	assert.Equal(t, DefaultLockTTL, lock.ttl)
	assert.Equal(t, "etl_process_flag", lock.Key())
}
