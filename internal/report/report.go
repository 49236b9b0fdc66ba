// Package report serializes the outcome of a run, per-spec results plus
// the convergence audit trail, to a YAML file for later inspection.
package report

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vk/specflow/internal/converge"
	"github.com/vk/specflow/internal/ctxlog"
	"github.com/vk/specflow/internal/pool"
)

// Report is the on-disk record of one run.
type Report struct {
	BatchID         string       `yaml:"batch_id"`
	GeneratedAt     time.Time    `yaml:"generated_at"`
	Outcome         string       `yaml:"outcome"`
	TotalCostUSD    float64      `yaml:"total_cost_usd"`
	DurationSeconds float64      `yaml:"duration_seconds"`
	Specs           []SpecEntry  `yaml:"specs"`
	Rounds          []RoundEntry `yaml:"rounds,omitempty"`
}

// SpecEntry is the report line for one spec.
type SpecEntry struct {
	Name            string  `yaml:"name"`
	Status          string  `yaml:"status"`
	Attempts        int     `yaml:"attempts"`
	CostUSD         float64 `yaml:"cost_usd"`
	DurationSeconds float64 `yaml:"duration_seconds"`
	Error           string  `yaml:"error,omitempty"`
	BlockedOn       string  `yaml:"blocked_on,omitempty"`
}

// RoundEntry is the report line for one convergence round.
type RoundEntry struct {
	Round           int     `yaml:"round"`
	Gaps            int     `yaml:"gaps"`
	FixesApplied    bool    `yaml:"fixes_applied"`
	DurationSeconds float64 `yaml:"duration_seconds"`
	CostUSD         float64 `yaml:"cost_usd"`
}

// Build assembles a Report from a batch result and an optional round
// history. Spec entries are sorted by name for stable output.
func Build(batch *pool.BatchResult, rounds []converge.Round, outcome string) *Report {
	r := &Report{
		BatchID:         batch.ID,
		GeneratedAt:     time.Now().UTC(),
		Outcome:         outcome,
		TotalCostUSD:    batch.TotalCostUSD,
		DurationSeconds: batch.Duration.Seconds(),
	}

	names := make([]string, 0, len(batch.Outcomes))
	for name := range batch.Outcomes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		o := batch.Outcomes[name]
		r.Specs = append(r.Specs, SpecEntry{
			Name:            name,
			Status:          string(o.Status),
			Attempts:        o.Attempts,
			CostUSD:         o.CostUSD,
			DurationSeconds: o.Duration.Seconds(),
			Error:           o.Error,
			BlockedOn:       o.BlockedOn,
		})
	}

	for _, round := range rounds {
		r.Rounds = append(r.Rounds, RoundEntry{
			Round:           round.Number,
			Gaps:            round.GapCount,
			FixesApplied:    round.FixesApplied,
			DurationSeconds: round.Duration.Seconds(),
			CostUSD:         round.CostUSD,
		})
	}
	return r
}

// Write serializes the report to path.
func Write(ctx context.Context, path string, r *Report) error {
	logger := ctxlog.FromContext(ctx)

	raw, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	logger.Info("Report written.", "path", path)
	return nil
}
