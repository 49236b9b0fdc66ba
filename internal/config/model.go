// Package config defines the unified, format-agnostic model of a batch
// manifest, plus the Loader interface implemented by the format-specific
// adapters (HCL and YAML).
package config

// Model is the complete parsed manifest for one batch run.
type Model struct {
	Specs       []*SpecDef
	Workers     WorkerSettings
	Retry       RetrySettings
	Convergence ConvergenceSettings
	Executor    ExecutorSettings
}

// SpecDef declares one spec in the manifest. DependsOn is the structured
// dependency list; when empty, the runner falls back to extracting embedded
// references from the spec file content.
type SpecDef struct {
	Name      string
	Path      string
	DependsOn []string
}

// WorkerSettings tunes the scheduler.
type WorkerSettings struct {
	// Concurrency is the number of parallel slots; 0 means auto-detect.
	Concurrency int
	// SequentialFirst runs the first N levels at concurrency 1.
	SequentialFirst int
}

// RetrySettings tunes the retry executor. Zero values fall back to the
// retry package defaults.
type RetrySettings struct {
	MaxAttempts  int
	BaseDelayMs  int
	MaxBackoffMs int
}

// ConvergenceSettings tunes the audit/fix loop.
type ConvergenceSettings struct {
	Enabled      bool
	MaxRounds    int
	GapDir       string
	AuditCommand []string
}

// ExecutorSettings names the command that executes a single spec.
type ExecutorSettings struct {
	Command []string
}
