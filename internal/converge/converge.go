// Package converge implements the audit/fix convergence loop: an external
// Auditor produces gap-specs against the original batch, the worker pool
// applies them as a fix batch, and the loop repeats until the audit comes
// back clean or the round budget is exhausted.
package converge

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vk/specflow/internal/ctxlog"
	"github.com/vk/specflow/internal/pool"
	"github.com/vk/specflow/internal/spec"
)

// Auditor inspects the codebase against the original specs and returns
// zero or more gap-specs describing remaining deficiencies. Called once per
// round.
type Auditor interface {
	Audit(ctx context.Context, originals []*spec.Spec, codebaseRef string) ([]*spec.Spec, error)
}

// Round is the audit-trail record of one completed convergence round.
// Entries are appended as rounds close and never mutated afterwards.
type Round struct {
	Number       int
	GapCount     int
	FixesApplied bool
	Duration     time.Duration
	CostUSD      float64
}

// Outcome is the terminal state of the loop.
type Outcome string

const (
	// OutcomeConverged means an audit round found zero gaps.
	OutcomeConverged Outcome = "converged"
	// OutcomeExhausted means gaps remained when the round budget ran out.
	// The remaining gap-specs stay on disk so a caller can resume manually.
	OutcomeExhausted Outcome = "exhausted"
)

// DefaultMaxRounds is the round budget applied when Options leaves
// MaxRounds unset.
const DefaultMaxRounds = 3

// Options configures one convergence run.
type Options struct {
	// MaxRounds caps the number of audit rounds. Zero means DefaultMaxRounds.
	MaxRounds int
	// GapDir is the directory the auditor writes gap-specs into. It is
	// cleared before every audit so stale artifacts from a prior round
	// never leak into the current round's count.
	GapDir string
	// Batch configures the worker pool pass applied to each gap batch.
	Batch pool.Options
}

// Loop drives the convergence state machine.
type Loop struct {
	auditor Auditor
	pool    *pool.Pool
}

// New creates a convergence loop over the given auditor and pool.
func New(auditor Auditor, p *pool.Pool) *Loop {
	return &Loop{auditor: auditor, pool: p}
}

// Run iterates audit rounds until convergence or exhaustion. The returned
// round history is the full audit trail, one entry per completed round.
// Partial failures inside a fix batch do not abort the loop; the next audit
// round re-detects anything still broken.
func (l *Loop) Run(ctx context.Context, originals []*spec.Spec, codebaseRef string, opts Options) ([]Round, Outcome, error) {
	logger := ctxlog.FromContext(ctx)

	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	var history []Round
	for number := 1; ; number++ {
		if err := ctx.Err(); err != nil {
			return history, "", err
		}

		roundStart := time.Now()
		if err := clearGapDir(opts.GapDir); err != nil {
			return history, "", err
		}

		logger.Info("Auditing for gaps.", "round", number)
		gaps, err := l.auditor.Audit(ctx, originals, codebaseRef)
		if err != nil {
			return history, "", fmt.Errorf("audit round %d: %w", number, err)
		}

		if len(gaps) == 0 {
			history = append(history, Round{
				Number:   number,
				Duration: time.Since(roundStart),
			})
			logger.Info("Converged: audit found no gaps.", "round", number, "rounds_total", len(history))
			return history, OutcomeConverged, nil
		}

		if number == maxRounds {
			history = append(history, Round{
				Number:   number,
				GapCount: len(gaps),
				Duration: time.Since(roundStart),
			})
			logger.Warn("Round budget exhausted with gaps remaining.",
				"round", number,
				"gaps", len(gaps),
				"gap_dir", opts.GapDir)
			return history, OutcomeExhausted, nil
		}

		logger.Info("Applying gap fixes.", "round", number, "gaps", len(gaps))
		round := Round{Number: number, GapCount: len(gaps), FixesApplied: true}
		batch, err := l.pool.RunBatch(ctx, gaps, opts.Batch)
		if err != nil && batch == nil {
			// A malformed gap batch cannot run at all; skip the fix pass and
			// let the next audit round re-evaluate.
			logger.Error("Gap batch could not be scheduled.", "round", number, "error", err)
			round.FixesApplied = false
		}
		if batch != nil {
			round.CostUSD = batch.TotalCostUSD
			if len(batch.Failed) > 0 || len(batch.Blocked) > 0 {
				logger.Warn("Gap batch finished with failures; continuing.",
					"round", number,
					"failed", batch.Failed,
					"blocked", batch.Blocked)
			}
		}
		round.Duration = time.Since(roundStart)
		history = append(history, round)
	}
}

// clearGapDir empties and recreates the gap-spec directory.
func clearGapDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing gap-spec directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("recreating gap-spec directory: %w", err)
	}
	return nil
}
