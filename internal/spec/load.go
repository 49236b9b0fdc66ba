package spec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/specflow/internal/ctxlog"
	"github.com/vk/specflow/internal/fsutil"
)

// LoadFile reads one spec file from disk. The structured dependency list, if
// any, is supplied by the caller (from the manifest); when it is empty the
// embedded extraction fallback is applied to the file content.
func LoadFile(ctx context.Context, name, path string, dependsOn []string) (*Spec, error) {
	logger := ctxlog.FromContext(ctx)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec %q: %w", name, err)
	}

	s := &Spec{
		Name:      name,
		Path:      path,
		Content:   string(raw),
		DependsOn: dependsOn,
	}
	if len(s.DependsOn) == 0 {
		s.DependsOn = ExtractDependencies(s.Content)
		if len(s.DependsOn) > 0 {
			logger.Debug("Extracted embedded dependencies.", "spec", name, "deps", s.DependsOn)
		}
	}
	return s, nil
}

// LoadDir reads every markdown file under dir, recursively, as a gap-spec
// named after its path relative to dir. Returns specs sorted by name so
// batch construction is deterministic. A missing directory yields an empty
// set, not an error.
func LoadDir(ctx context.Context, dir string) ([]*Spec, error) {
	paths, err := fsutil.FindFilesByExtension(dir, ".md")
	if err != nil {
		return nil, fmt.Errorf("reading gap-spec directory: %w", err)
	}

	var specs []*Spec
	for _, path := range paths {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), ".md")
		s, err := LoadFile(ctx, name, path, nil)
		if err != nil {
			return nil, err
		}
		s.Gap = true
		specs = append(specs, s)
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs, nil
}
