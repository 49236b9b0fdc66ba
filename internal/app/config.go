package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPath string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Workers overrides the manifest's concurrency when positive.
	Workers int
	// SequentialFirst overrides the manifest's sequential-first level count
	// when positive.
	SequentialFirst int

	// Converge forces the audit/fix loop on even when the manifest leaves
	// it disabled.
	Converge bool
	// MaxRounds overrides the manifest's convergence round budget when
	// positive.
	MaxRounds int

	// RerunFrom points at a previous report; when set, only the specs that
	// failed or were blocked in that run are executed.
	RerunFrom string

	// ReportPath receives the run report. Empty disables report writing.
	ReportPath string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
