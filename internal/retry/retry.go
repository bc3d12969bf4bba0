// Package retry provides an explicit retry policy with exponential backoff
// and randomized jitter for transient failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

var (
	// ErrMaxAttemptsExceeded is returned when max retry attempts are exceeded.
	ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")
	// ErrMaxElapsedExceeded is returned when the total retry budget is spent.
	ErrMaxElapsedExceeded = errors.New("max retry time exceeded")
	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled during retry")
)

// Policy configures retry behavior. The zero value is unusable; use
// DefaultPolicy and override fields as needed.
type Policy struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponentially growing delay between retries.
	MaxDelay time.Duration
	// MaxElapsed bounds the total time spent across all attempts and waits.
	// Zero means no elapsed-time bound.
	MaxElapsed time.Duration
	// Multiplier is the exponential backoff multiplier.
	Multiplier float64
	// Jitter randomizes a computed delay. Defaults to FullJitter.
	Jitter func(time.Duration) time.Duration
	// IsRetryable reports whether an error should be retried.
	IsRetryable func(error) bool
}

// DefaultPolicy returns the retry policy used around index writes and
// connectivity checks.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		MaxElapsed:  60 * time.Second,
		Multiplier:  2.0,
		Jitter:      FullJitter,
		IsRetryable: func(error) bool { return true },
	}
}

// FullJitter returns a random duration in [0, d].
func FullJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d) + 1))
}

// NoJitter returns the delay unchanged. Useful in tests.
func NoJitter(d time.Duration) time.Duration {
	return d
}

// Do executes fn under the policy. It returns nil on the first success, the
// original error when fn fails with a non-retryable error, and a wrapped
// ErrMaxAttemptsExceeded or ErrMaxElapsedExceeded when the budget runs out.
func Do(ctx context.Context, p Policy, fn func() error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	if p.Jitter == nil {
		p.Jitter = FullJitter
	}
	if p.IsRetryable == nil {
		p.IsRetryable = func(error) bool { return true }
	}

	start := time.Now()
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !p.IsRetryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}

		delay := time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1)))
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
		delay = p.Jitter(delay)

		if p.MaxElapsed > 0 && time.Since(start)+delay > p.MaxElapsed {
			return fmt.Errorf("%w after %v: %w", ErrMaxElapsedExceeded, time.Since(start), lastErr)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxAttemptsExceeded, p.MaxAttempts, lastErr)
}
