// Package pool drives bounded-concurrency execution of a spec batch. Levels
// from the dependency graph run strictly in order; within a level up to the
// resolved concurrency specs run at once, each wrapped in the retry policy.
// Blocked propagation and level-completion checks happen synchronously
// between levels, never inside workers.
package pool

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vk/specflow/internal/ctxlog"
	"github.com/vk/specflow/internal/executor"
	"github.com/vk/specflow/internal/graph"
	"github.com/vk/specflow/internal/retry"
	"github.com/vk/specflow/internal/spec"
)

// Options configures one batch run.
type Options struct {
	// Concurrency is the number of parallel execution slots. Zero or
	// negative means auto-detect.
	Concurrency int
	// SequentialFirst forces the first N levels (or the first N specs,
	// whichever is reached sooner) to run with effective concurrency 1
	// before the pool fans out.
	SequentialFirst int
	// Notifier, when set, receives every WorkItem transition.
	Notifier Notifier
}

// Pool schedules spec batches against an executor. A Pool holds no
// per-batch state; each RunBatch call owns its own graph and status table.
type Pool struct {
	exec   executor.Executor
	policy retry.Policy
}

// New creates a pool that executes specs with exec under the given retry
// policy.
func New(exec executor.Executor, policy retry.Policy) *Pool {
	return &Pool{exec: exec, policy: policy}
}

// RunBatch executes the given specs. Graph-level errors (unresolved
// dependencies, cycles) abort before any execution starts. Per-spec
// failures are local: siblings in the same level still run, and dependents
// are marked blocked rather than executed. On cancellation the pool stops
// admitting new specs, waits for in-flight executions, and returns the
// partial result alongside the context error.
func (p *Pool) RunBatch(ctx context.Context, specs []*spec.Spec, opts Options) (*BatchResult, error) {
	logger := ctxlog.FromContext(ctx)

	g, err := graph.Build(ctx, specs)
	if err != nil {
		return nil, err
	}
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}

	concurrency := ResolveConcurrency(opts.Concurrency)
	logger.Info("Starting batch execution.",
		"specs", len(specs),
		"levels", len(levels),
		"concurrency", concurrency)

	tbl := newTable(specs, opts.Notifier)
	start := time.Now()
	executed := 0

	for i, level := range levels {
		if ctx.Err() != nil {
			logger.Warn("Batch canceled, remaining levels not admitted.", "level", i)
			break
		}

		// Blocked propagation for this level, computed before any worker
		// starts. Blocked-on-blocked is itself blocked.
		var runnable []string
		for _, name := range level {
			if upstream := p.blockedCause(g, tbl, name); upstream != "" {
				logger.Warn("Spec blocked by upstream failure.", "spec", name, "upstream", upstream)
				tbl.block(name, upstream)
				continue
			}
			runnable = append(runnable, name)
		}

		levelConcurrency := concurrency
		if opts.SequentialFirst > 0 && i < opts.SequentialFirst && executed < opts.SequentialFirst {
			levelConcurrency = 1
		}

		logger.Debug("Running level.", "level", i, "specs", runnable, "concurrency", levelConcurrency)
		p.runLevel(ctx, tbl, runnable, levelConcurrency)
		executed += len(runnable)
	}

	result := p.collect(tbl, time.Since(start))
	logger.Info("Batch execution finished.",
		"batch", result.ID,
		"failed", len(result.Failed),
		"blocked", len(result.Blocked),
		"cost_usd", result.TotalCostUSD)

	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	return result, nil
}

// blockedCause returns the first upstream spec whose failure (or blocking)
// prevents name from running, or "" when all dependencies succeeded.
// Dependencies are sorted, so the reported cause is deterministic.
func (p *Pool) blockedCause(g *graph.Graph, tbl *table, name string) string {
	for _, dep := range g.Dependencies(name) {
		switch tbl.status(dep) {
		case StatusFailed, StatusBlocked:
			return dep
		}
	}
	return ""
}

// runLevel executes the runnable members of one level, at most concurrency
// at a time, and returns when every started spec has finished. Specs not
// yet admitted when the context is canceled stay pending.
func (p *Pool) runLevel(ctx context.Context, tbl *table, names []string, concurrency int) {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, name := range names {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return
		}

		wg.Add(1)
		go func(name string) {
			defer func() {
				<-sem
				wg.Done()
			}()
			p.runOne(ctx, tbl, name)
		}(name)
	}
	wg.Wait()
}

// runOne drives one spec through the retry executor and records the
// terminal outcome on the status table.
func (p *Pool) runOne(ctx context.Context, tbl *table, name string) {
	item := tbl.items[name] // read-only access to the immutable spec field
	tbl.transition(name, StatusRunning)

	var costUSD float64
	var duration time.Duration

	attempts, err := retry.Do(ctx, name, p.policy, func(ctx context.Context) error {
		res, execErr := p.exec.Execute(ctx, item.spec)
		if res != nil {
			costUSD += res.CostUSD
			duration += res.Duration
		}
		if execErr != nil {
			return execErr
		}
		if res == nil {
			return errors.New("executor returned no result")
		}
		if !res.Success {
			if res.Error != "" {
				return errors.New(res.Error)
			}
			return errors.New("executor reported failure")
		}
		return nil
	})

	tbl.finish(name, attempts, costUSD, duration, err)
}

// collect freezes the status table into an immutable BatchResult.
func (p *Pool) collect(tbl *table, elapsed time.Duration) *BatchResult {
	tbl.mu.Lock()
	defer tbl.mu.Unlock()

	result := &BatchResult{
		ID:       uuid.NewString(),
		Outcomes: make(map[string]Outcome, len(tbl.items)),
		Duration: elapsed,
	}
	for name, item := range tbl.items {
		o := Outcome{
			Status:    item.status,
			Attempts:  item.attempts,
			CostUSD:   item.costUSD,
			Duration:  item.duration,
			BlockedOn: item.blockedOn,
		}
		if item.err != nil {
			o.Error = item.err.Error()
		}
		result.Outcomes[name] = o
		result.TotalCostUSD += item.costUSD

		switch item.status {
		case StatusFailed:
			result.Failed = append(result.Failed, name)
		case StatusBlocked:
			result.Blocked = append(result.Blocked, name)
		}
	}
	sort.Strings(result.Failed)
	sort.Strings(result.Blocked)
	return result
}
