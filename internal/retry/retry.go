package retry

import (
	"context"
	"math"

	"github.com/cenkalti/backoff/v4"

	"github.com/vk/specflow/internal/ctxlog"
)

// Do runs op under the given policy. Transient failures are retried up to
// policy.MaxAttempts total attempts with exponential backoff; a fatal error
// aborts immediately without consuming the remaining attempts. The attempt
// count is reported back so callers can record it on the work item.
//
// RandomizationFactor is pinned to zero, so the wait after attempt n is
// exactly policy.Delay(n).
func Do(ctx context.Context, name string, policy Policy, op func(ctx context.Context) error) (attempts int, err error) {
	logger := ctxlog.FromContext(ctx).With("spec", name)

	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	// The library reads MaxInterval as a hard cap, so an uncapped policy
	// must not pass zero through: that would collapse every wait to zero.
	b.MaxInterval = policy.MaxBackoff
	if policy.MaxBackoff <= 0 {
		b.MaxInterval = math.MaxInt64
	}

	operation := func() error {
		attempts++
		opErr := op(ctx)
		if opErr == nil {
			return nil
		}
		if !IsTransient(opErr) {
			logger.Debug("Fatal error, not retrying.", "attempt", attempts, "error", opErr)
			return backoff.Permanent(opErr)
		}
		if attempts < maxAttempts {
			logger.Warn("Transient error, backing off.",
				"attempt", attempts,
				"max_attempts", maxAttempts,
				"delay", policy.Delay(attempts))
		}
		return opErr
	}

	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxAttempts-1)), ctx))
	return attempts, err
}
