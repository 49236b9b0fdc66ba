// Package yamlconf is the YAML implementation of the config.Loader
// interface, for manifests kept alongside other YAML tooling configs.
package yamlconf

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vk/specflow/internal/config"
	"github.com/vk/specflow/internal/ctxlog"
)

// Loader is the YAML-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new YAML manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

type manifest struct {
	Specs []struct {
		Name      string   `yaml:"name"`
		Path      string   `yaml:"path"`
		DependsOn []string `yaml:"depends_on"`
	} `yaml:"specs"`
	Executor struct {
		Command []string `yaml:"command"`
	} `yaml:"executor"`
	Workers struct {
		Concurrency     int `yaml:"concurrency"`
		SequentialFirst int `yaml:"sequential_first"`
	} `yaml:"workers"`
	Retry struct {
		MaxAttempts  int `yaml:"max_attempts"`
		BaseDelayMs  int `yaml:"base_delay_ms"`
		MaxBackoffMs int `yaml:"max_backoff_ms"`
	} `yaml:"retry"`
	Convergence struct {
		Enabled      bool     `yaml:"enabled"`
		MaxRounds    int      `yaml:"max_rounds"`
		GapDir       string   `yaml:"gap_dir"`
		AuditCommand []string `yaml:"audit_command"`
	} `yaml:"convergence"`
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML manifest loader started.", "path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", path, err)
	}

	model := &config.Model{
		Workers: config.WorkerSettings{
			Concurrency:     m.Workers.Concurrency,
			SequentialFirst: m.Workers.SequentialFirst,
		},
		Retry: config.RetrySettings{
			MaxAttempts:  m.Retry.MaxAttempts,
			BaseDelayMs:  m.Retry.BaseDelayMs,
			MaxBackoffMs: m.Retry.MaxBackoffMs,
		},
		Convergence: config.ConvergenceSettings{
			Enabled:      m.Convergence.Enabled,
			MaxRounds:    m.Convergence.MaxRounds,
			GapDir:       m.Convergence.GapDir,
			AuditCommand: m.Convergence.AuditCommand,
		},
		Executor: config.ExecutorSettings{Command: m.Executor.Command},
	}
	for _, s := range m.Specs {
		model.Specs = append(model.Specs, &config.SpecDef{
			Name:      s.Name,
			Path:      s.Path,
			DependsOn: s.DependsOn,
		})
	}

	logger.Debug("YAML manifest loaded.", "specs", len(model.Specs))
	return model, model.Validate()
}
