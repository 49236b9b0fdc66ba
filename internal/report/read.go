package report

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vk/specflow/internal/pool"
)

// Read loads a previously written report.
func Read(path string) (*Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}
	var r Report
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", path, err)
	}
	return &r, nil
}

// AsBatchResult reconstructs the prior batch outcome a rerun-failed pass
// needs: per-spec statuses plus the failed and blocked name lists.
func (r *Report) AsBatchResult() *pool.BatchResult {
	batch := &pool.BatchResult{
		ID:           r.BatchID,
		Outcomes:     make(map[string]pool.Outcome, len(r.Specs)),
		TotalCostUSD: r.TotalCostUSD,
		Duration:     time.Duration(r.DurationSeconds * float64(time.Second)),
	}
	for _, entry := range r.Specs {
		status := pool.Status(entry.Status)
		batch.Outcomes[entry.Name] = pool.Outcome{
			Status:    status,
			Attempts:  entry.Attempts,
			CostUSD:   entry.CostUSD,
			Duration:  time.Duration(entry.DurationSeconds * float64(time.Second)),
			Error:     entry.Error,
			BlockedOn: entry.BlockedOn,
		}
		switch status {
		case pool.StatusFailed:
			batch.Failed = append(batch.Failed, entry.Name)
		case pool.StatusBlocked:
			batch.Blocked = append(batch.Blocked, entry.Name)
		}
	}
	return batch
}
