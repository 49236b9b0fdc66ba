package config

import (
	"context"
	"fmt"
	"strings"
)

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads a manifest file and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, path string) (*Model, error)
}

// Validate checks the structural integrity of a loaded model: every spec
// needs a unique name and a content path, and the executor command must be
// set when any spec exists.
func (m *Model) Validate() error {
	seen := make(map[string]struct{}, len(m.Specs))
	for _, s := range m.Specs {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("manifest: spec with empty name")
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("manifest: duplicate spec name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
		if strings.TrimSpace(s.Path) == "" {
			return fmt.Errorf("manifest: spec %q has no path", s.Name)
		}
	}
	if len(m.Specs) > 0 && len(m.Executor.Command) == 0 {
		return fmt.Errorf("manifest: executor command is required")
	}
	if m.Convergence.Enabled && len(m.Convergence.AuditCommand) == 0 {
		return fmt.Errorf("manifest: convergence requires an audit command")
	}
	return nil
}
