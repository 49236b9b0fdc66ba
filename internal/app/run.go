package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vk/specflow/internal/converge"
	"github.com/vk/specflow/internal/ctxlog"
	"github.com/vk/specflow/internal/executor"
	"github.com/vk/specflow/internal/pool"
	"github.com/vk/specflow/internal/report"
	"github.com/vk/specflow/internal/retry"
	"github.com/vk/specflow/internal/spec"
)

// Run executes the main application logic based on the loaded manifest.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.startHealthcheck(ctx)
	defer a.closeHealthcheck(ctx)

	specs, err := a.loadSpecs(ctx)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		a.logger.Warn("No specs found in manifest, nothing to execute.")
		return nil
	}

	p := pool.New(executor.NewLocal(a.model.Executor.Command), a.retryPolicy())
	opts := a.poolOptions()

	a.logger.Info("Starting batch run.", "specs", len(specs))
	batch, err := a.runBatch(ctx, p, specs, opts)
	if err != nil {
		return err
	}

	rounds, outcome, err := a.maybeConverge(ctx, p, specs, opts, batch)
	if err != nil {
		return err
	}

	if a.cfg.ReportPath != "" {
		if err := report.Write(ctx, a.cfg.ReportPath, report.Build(batch, rounds, outcome)); err != nil {
			return err
		}
	}

	return a.summarize(batch, outcome)
}

// loadSpecs reads every declared spec's content from disk, applying the
// embedded-dependency fallback for entries without a structured list.
func (a *App) loadSpecs(ctx context.Context) ([]*spec.Spec, error) {
	specs := make([]*spec.Spec, 0, len(a.model.Specs))
	for _, def := range a.model.Specs {
		s, err := spec.LoadFile(ctx, def.Name, def.Path, def.DependsOn)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// retryPolicy maps manifest settings onto the retry policy, keeping the
// package defaults for unset fields.
func (a *App) retryPolicy() retry.Policy {
	policy := retry.DefaultPolicy()
	settings := a.model.Retry
	if settings.MaxAttempts > 0 {
		policy.MaxAttempts = settings.MaxAttempts
	}
	if settings.BaseDelayMs > 0 {
		policy.BaseDelay = time.Duration(settings.BaseDelayMs) * time.Millisecond
	}
	if settings.MaxBackoffMs > 0 {
		policy.MaxBackoff = time.Duration(settings.MaxBackoffMs) * time.Millisecond
	}
	return policy
}

// poolOptions resolves scheduler options from the manifest plus CLI
// overrides, and attaches the progress notifier.
func (a *App) poolOptions() pool.Options {
	opts := pool.Options{
		Concurrency:     a.model.Workers.Concurrency,
		SequentialFirst: a.model.Workers.SequentialFirst,
		Notifier:        &logNotifier{logger: a.logger},
	}
	if a.cfg.Workers > 0 {
		opts.Concurrency = a.cfg.Workers
	}
	if a.cfg.SequentialFirst > 0 {
		opts.SequentialFirst = a.cfg.SequentialFirst
	}
	return opts
}

// runBatch dispatches either a full batch or a rerun-failed pass when a
// prior report was supplied.
func (a *App) runBatch(ctx context.Context, p *pool.Pool, specs []*spec.Spec, opts pool.Options) (*pool.BatchResult, error) {
	if a.cfg.RerunFrom == "" {
		return p.RunBatch(ctx, specs, opts)
	}

	prior, err := report.Read(a.cfg.RerunFrom)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Rerunning failed specs from previous run.", "report", a.cfg.RerunFrom)
	return p.RerunFailed(ctx, specs, prior.AsBatchResult(), opts)
}

// maybeConverge runs the audit/fix loop when enabled by manifest or flag.
func (a *App) maybeConverge(ctx context.Context, p *pool.Pool, specs []*spec.Spec, opts pool.Options, batch *pool.BatchResult) ([]converge.Round, string, error) {
	settings := a.model.Convergence
	if !settings.Enabled && !a.cfg.Converge {
		return nil, "", nil
	}

	maxRounds := settings.MaxRounds
	if a.cfg.MaxRounds > 0 {
		maxRounds = a.cfg.MaxRounds
	}

	auditor := &converge.CommandAuditor{
		Command: settings.AuditCommand,
		GapDir:  settings.GapDir,
	}
	loop := converge.New(auditor, p)
	rounds, outcome, err := loop.Run(ctx, specs, ".", converge.Options{
		MaxRounds: maxRounds,
		GapDir:    settings.GapDir,
		Batch:     opts,
	})
	if err != nil {
		return rounds, string(outcome), err
	}
	return rounds, string(outcome), nil
}

// summarize reports the final verdict to the log and decides the process
// outcome. A non-converged loop is a reported state, not a process error;
// a plain batch with failures is.
func (a *App) summarize(batch *pool.BatchResult, outcome string) error {
	switch outcome {
	case string(converge.OutcomeConverged):
		a.logger.Info("Run converged.", "batch", batch.ID)
		return nil
	case string(converge.OutcomeExhausted):
		a.logger.Warn("Run ended without convergence; remaining gap-specs are preserved.",
			"gap_dir", a.model.Convergence.GapDir)
		return nil
	}

	if len(batch.Failed) > 0 || len(batch.Blocked) > 0 {
		return fmt.Errorf("batch finished with %d failed and %d blocked specs", len(batch.Failed), len(batch.Blocked))
	}
	a.logger.Info("All specs succeeded.", "batch", batch.ID, "cost_usd", batch.TotalCostUSD)
	return nil
}

// logNotifier forwards WorkItem transitions to the structured log. It is a
// passive consumer: scheduling never depends on it.
type logNotifier struct {
	logger *slog.Logger
}

func (n *logNotifier) Notify(tr pool.Transition) {
	n.logger.Info("Spec status changed.", "spec", tr.Spec, "from", string(tr.From), "to", string(tr.To))
}
