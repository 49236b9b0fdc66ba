package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	transient := []string{
		"rate limit exceeded",
		"anthropic rate_limit_error",
		"HTTP 429 Too Many Requests",
		"read: ECONNRESET",
		"request timeout after 60s",
		"network is unreachable",
		"upstream returned 502",
		"503 service unavailable",
		"Overloaded, please retry",
	}
	for _, text := range transient {
		assert.True(t, IsTransient(errors.New(text)), "expected transient: %q", text)
	}

	fatal := []string{
		"invalid spec content",
		"permission denied",
		"exit status 1",
	}
	for _, text := range fatal {
		assert.False(t, IsTransient(errors.New(text)), "expected fatal: %q", text)
	}

	assert.False(t, IsTransient(nil))
}

func TestPolicyDelay(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: 5 * time.Second, MaxBackoff: 18 * time.Second}

	assert.Equal(t, 5*time.Second, p.Delay(1))
	assert.Equal(t, 10*time.Second, p.Delay(2))
	assert.Equal(t, 18*time.Second, p.Delay(3), "delay is clamped to MaxBackoff")
	assert.Equal(t, 18*time.Second, p.Delay(4))
	assert.Equal(t, 5*time.Second, p.Delay(0), "attempt below 1 is treated as 1")

	uncapped := Policy{MaxAttempts: 3, BaseDelay: time.Second}
	assert.Equal(t, 4*time.Second, uncapped.Delay(3))
}

func TestDo(t *testing.T) {
	ctx := context.Background()
	fast := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxBackoff: 5 * time.Millisecond}

	t.Run("success on first attempt", func(t *testing.T) {
		attempts, err := Do(ctx, "ok", fast, func(context.Context) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("transient errors are retried until success", func(t *testing.T) {
		calls := 0
		attempts, err := Do(ctx, "flaky", fast, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("429 too many requests")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("transient errors exhaust the attempt budget", func(t *testing.T) {
		attempts, err := Do(ctx, "down", fast, func(context.Context) error {
			return errors.New("503 service unavailable")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Equal(t, 3, attempts)
	})

	t.Run("uncapped policy waits the full exponential schedule", func(t *testing.T) {
		uncapped := Policy{MaxAttempts: 3, BaseDelay: 40 * time.Millisecond}

		start := time.Now()
		attempts, err := Do(ctx, "slow", uncapped, func(context.Context) error {
			return errors.New("timeout")
		})
		elapsed := time.Since(start)

		require.Error(t, err)
		assert.Equal(t, 3, attempts)
		// Two waits: Delay(1)=40ms and Delay(2)=80ms. A zero MaxBackoff must
		// not turn into a zero-duration cap on the waits.
		assert.GreaterOrEqual(t, elapsed, 120*time.Millisecond)
	})

	t.Run("fatal error aborts without retrying", func(t *testing.T) {
		attempts, err := Do(ctx, "broken", fast, func(context.Context) error {
			return errors.New("invalid spec content")
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("cancellation stops the retry loop", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		attempts, err := Do(cancelCtx, "canceled", fast, func(context.Context) error {
			cancel()
			return errors.New("timeout")
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("non-positive MaxAttempts still runs once", func(t *testing.T) {
		attempts, err := Do(ctx, "min", Policy{BaseDelay: time.Millisecond}, func(context.Context) error {
			return errors.New("network flake")
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})
}
