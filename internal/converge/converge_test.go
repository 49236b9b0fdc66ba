package converge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/specflow/internal/executor"
	"github.com/vk/specflow/internal/pool"
	"github.com/vk/specflow/internal/retry"
	"github.com/vk/specflow/internal/spec"
)

var fastPolicy = retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond}

// scriptedAuditor returns one prepared gap set per round and records how
// the gap directory looked when it was called.
type scriptedAuditor struct {
	rounds   [][]*spec.Spec
	calls    int
	gapDir   string
	dirSeen  []int
	auditErr error
}

func (a *scriptedAuditor) Audit(ctx context.Context, originals []*spec.Spec, codebaseRef string) ([]*spec.Spec, error) {
	if a.auditErr != nil {
		return nil, a.auditErr
	}
	if a.gapDir != "" {
		entries, _ := os.ReadDir(a.gapDir)
		a.dirSeen = append(a.dirSeen, len(entries))
	}
	gaps := a.rounds[a.calls]
	a.calls++
	return gaps, nil
}

func gapSpecs(names ...string) []*spec.Spec {
	specs := make([]*spec.Spec, 0, len(names))
	for _, name := range names {
		specs = append(specs, &spec.Spec{Name: name, Gap: true})
	}
	return specs
}

func succeedingPool() *pool.Pool {
	exec := executor.Func(func(ctx context.Context, s *spec.Spec) (*executor.Result, error) {
		return &executor.Result{Success: true, CostUSD: 0.05}, nil
	})
	return pool.New(exec, fastPolicy)
}

func TestLoopRun(t *testing.T) {
	ctx := context.Background()
	originals := gapSpecs("orig")

	t.Run("converges after a fix round even with a partial failure", func(t *testing.T) {
		// Round 1 finds two gaps; one fix succeeds, one fails. Round 2
		// comes back clean.
		exec := executor.Func(func(ctx context.Context, s *spec.Spec) (*executor.Result, error) {
			if s.Name == "gap-2" {
				err := errors.New("exit status 1")
				return &executor.Result{Success: false, Error: err.Error()}, err
			}
			return &executor.Result{Success: true, CostUSD: 0.05}, nil
		})
		auditor := &scriptedAuditor{rounds: [][]*spec.Spec{
			gapSpecs("gap-1", "gap-2"),
			nil,
		}}

		loop := New(auditor, pool.New(exec, fastPolicy))
		history, outcome, err := loop.Run(ctx, originals, ".", Options{MaxRounds: 3})
		require.NoError(t, err)
		assert.Equal(t, OutcomeConverged, outcome)
		require.Len(t, history, 2)

		assert.Equal(t, 1, history[0].Number)
		assert.Equal(t, 2, history[0].GapCount)
		assert.True(t, history[0].FixesApplied)
		assert.InDelta(t, 0.05, history[0].CostUSD, 1e-9)

		assert.Equal(t, 2, history[1].Number)
		assert.Zero(t, history[1].GapCount)
		assert.False(t, history[1].FixesApplied)
	})

	t.Run("clean first audit converges with one round", func(t *testing.T) {
		auditor := &scriptedAuditor{rounds: [][]*spec.Spec{nil}}
		loop := New(auditor, succeedingPool())
		history, outcome, err := loop.Run(ctx, originals, ".", Options{})
		require.NoError(t, err)
		assert.Equal(t, OutcomeConverged, outcome)
		require.Len(t, history, 1)
		assert.Zero(t, history[0].GapCount)
	})

	t.Run("persistent gaps exhaust the round budget", func(t *testing.T) {
		auditor := &scriptedAuditor{rounds: [][]*spec.Spec{
			gapSpecs("gap"),
			gapSpecs("gap"),
			gapSpecs("gap"),
		}}
		loop := New(auditor, succeedingPool())
		history, outcome, err := loop.Run(ctx, originals, ".", Options{MaxRounds: 3})
		require.NoError(t, err)
		assert.Equal(t, OutcomeExhausted, outcome)
		require.Len(t, history, 3)
		assert.True(t, history[0].FixesApplied)
		assert.True(t, history[1].FixesApplied)
		assert.False(t, history[2].FixesApplied, "final exhausted round applies no fixes")
		assert.Equal(t, 1, history[2].GapCount)
	})

	t.Run("gap directory is cleared before every audit", func(t *testing.T) {
		gapDir := filepath.Join(t.TempDir(), "gaps")
		require.NoError(t, os.MkdirAll(gapDir, 0o755))
		stale := filepath.Join(gapDir, "stale-gap.md")
		require.NoError(t, os.WriteFile(stale, []byte("# leftover"), 0o644))

		auditor := &scriptedAuditor{
			gapDir: gapDir,
			rounds: [][]*spec.Spec{gapSpecs("gap"), nil},
		}
		loop := New(auditor, succeedingPool())
		_, outcome, err := loop.Run(ctx, originals, ".", Options{MaxRounds: 3, GapDir: gapDir})
		require.NoError(t, err)
		assert.Equal(t, OutcomeConverged, outcome)
		assert.Equal(t, []int{0, 0}, auditor.dirSeen, "auditor always starts from an empty gap dir")
		_, statErr := os.Stat(stale)
		assert.True(t, os.IsNotExist(statErr), "stale gap artifacts are removed")
	})

	t.Run("auditor failure surfaces as an error", func(t *testing.T) {
		auditor := &scriptedAuditor{auditErr: errors.New("audit tool crashed")}
		loop := New(auditor, succeedingPool())
		_, _, err := loop.Run(ctx, originals, ".", Options{})
		require.ErrorContains(t, err, "audit round 1")
	})

	t.Run("cancellation stops the loop between rounds", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		auditor := &scriptedAuditor{rounds: [][]*spec.Spec{gapSpecs("gap")}}
		loop := New(auditor, succeedingPool())
		_, _, err := loop.Run(canceled, originals, ".", Options{})
		require.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, auditor.calls)
	})
}
