package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2.0,
		Jitter:      NoJitter,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_MaxAttemptsExceeded(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxAttemptsExceeded)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableReturnsImmediately(t *testing.T) {
	fatal := errors.New("fatal")
	policy := fastPolicy()
	policy.IsRetryable = func(err error) bool { return !errors.Is(err, fatal) }

	calls := 0
	err := Do(context.Background(), policy, func() error {
		calls++
		return fatal
	})
	assert.ErrorIs(t, err, fatal)
	assert.NotErrorIs(t, err, ErrMaxAttemptsExceeded)
	assert.Equal(t, 1, calls)
}

func TestDo_MaxElapsedExceeded(t *testing.T) {
	policy := Policy{
		MaxAttempts: 100,
		BaseDelay:   50 * time.Millisecond,
		Multiplier:  1.0,
		MaxElapsed:  10 * time.Millisecond,
		Jitter:      NoJitter,
	}

	err := Do(context.Background(), policy, func() error {
		return errors.New("transient")
	})
	assert.ErrorIs(t, err, ErrMaxElapsedExceeded)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastPolicy(), func() error {
		return errors.New("transient")
	})
	assert.ErrorIs(t, err, ErrContextCancelled)
}

func TestDo_DelayGrowsExponentiallyUpToCap(t *testing.T) {
	var delays []time.Duration
	policy := Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
		Multiplier:  2.0,
		Jitter: func(d time.Duration) time.Duration {
			delays = append(delays, d)
			return 0
		},
	}

	_ = Do(context.Background(), policy, func() error {
		return errors.New("transient")
	})

	require.Len(t, delays, 4)
	assert.Equal(t, time.Millisecond, delays[0])
	assert.Equal(t, 2*time.Millisecond, delays[1])
	assert.Equal(t, 4*time.Millisecond, delays[2])
	assert.Equal(t, 4*time.Millisecond, delays[3])
}
