package pool

import (
	"context"

	"github.com/vk/specflow/internal/ctxlog"
	"github.com/vk/specflow/internal/spec"
)

// RerunFailed runs a fresh batch containing only the specs that failed or
// were blocked in a prior result. Specs that already succeeded are not
// re-added; a retained spec's dependency on one of them is treated as
// pre-satisfied and dropped from the subgraph, so the subgraph stays
// resolvable.
func (p *Pool) RerunFailed(ctx context.Context, specs []*spec.Spec, prior *BatchResult, opts Options) (*BatchResult, error) {
	logger := ctxlog.FromContext(ctx)

	retained := make(map[string]struct{})
	for _, name := range prior.NeedsRerun() {
		retained[name] = struct{}{}
	}

	subset := make([]*spec.Spec, 0, len(retained))
	for _, s := range specs {
		if _, ok := retained[s.Name]; !ok {
			continue
		}
		clone := *s
		clone.DependsOn = nil
		for _, dep := range s.DependsOn {
			if _, ok := retained[dep]; ok {
				clone.DependsOn = append(clone.DependsOn, dep)
			}
		}
		subset = append(subset, &clone)
	}

	logger.Info("Rerunning failed subgraph.", "specs", spec.Names(subset))
	return p.RunBatch(ctx, subset, opts)
}
