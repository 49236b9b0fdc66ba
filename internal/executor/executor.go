// Package executor defines the contract for the opaque unit-of-work runner
// the scheduler drives, plus a subprocess-based implementation.
package executor

import (
	"context"
	"time"

	"github.com/vk/specflow/internal/spec"
)

// Result is the outcome of one execution attempt of a single spec.
type Result struct {
	Success  bool
	CostUSD  float64
	Duration time.Duration
	// Error carries the failure description reported by the executor when
	// Success is false. Empty on success.
	Error string
	// Output is the captured executor output, kept for reporting.
	Output string
}

// Executor runs one spec to completion. The scheduler treats it as opaque:
// it only looks at success/failure, cost, and duration. Implementations
// must honor context cancellation.
type Executor interface {
	Execute(ctx context.Context, s *spec.Spec) (*Result, error)
}

// Func adapts a plain function to the Executor interface. Used heavily in
// tests.
type Func func(ctx context.Context, s *spec.Spec) (*Result, error)

// Execute implements Executor.
func (f Func) Execute(ctx context.Context, s *spec.Spec) (*Result, error) {
	return f(ctx, s)
}
