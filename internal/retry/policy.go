// Package retry wraps the execution of a single spec with transient-error
// classification and deterministic exponential backoff.
package retry

import "time"

// Policy controls how many attempts a spec gets and how long the waits
// between them are. The zero value is not valid; use DefaultPolicy.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration
	// MaxBackoff caps the wait between any two attempts. Zero means uncapped.
	MaxBackoff time.Duration
}

// DefaultPolicy returns the standard retry policy: three attempts with a
// five second base delay, capped at one minute.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   5 * time.Second,
		MaxBackoff:  time.Minute,
	}
}

// Delay returns the backoff wait that follows the given failed attempt
// (1-based): BaseDelay * 2^(attempt-1), clamped to MaxBackoff. It is a pure
// function of the policy, so the total retry delay for a given failure
// sequence is fully reproducible.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxBackoff > 0 && delay >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && delay > p.MaxBackoff {
		return p.MaxBackoff
	}
	return delay
}
