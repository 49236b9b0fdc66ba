package pool

import (
	"sort"
	"time"
)

// Outcome is the final record for one spec in a batch.
type Outcome struct {
	Status   Status
	Attempts int
	CostUSD  float64
	Duration time.Duration
	// Error holds the failure text when Status is failed.
	Error string
	// BlockedOn names the upstream spec whose failure blocked this one.
	BlockedOn string
}

// BatchResult aggregates one scheduling pass. It is immutable once
// produced and owned by the caller.
type BatchResult struct {
	ID           string
	Outcomes     map[string]Outcome
	TotalCostUSD float64
	Duration     time.Duration
	// Failed and Blocked are the sorted names of specs that ran and
	// failed, and specs that never ran because an upstream failed.
	Failed  []string
	Blocked []string
}

// Succeeded returns true when every spec in the batch succeeded.
func (r *BatchResult) Succeeded() bool {
	for _, o := range r.Outcomes {
		if o.Status != StatusSucceeded {
			return false
		}
	}
	return true
}

// NeedsRerun returns the sorted names of specs a rerun-failed pass should
// contain: everything that failed or was blocked.
func (r *BatchResult) NeedsRerun() []string {
	names := make([]string, 0, len(r.Failed)+len(r.Blocked))
	names = append(names, r.Failed...)
	names = append(names, r.Blocked...)
	sort.Strings(names)
	return names
}
