package spec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDependencies(t *testing.T) {
	t.Run("declaration line with commas", func(t *testing.T) {
		deps := ExtractDependencies("# Billing\n\nDepends on: auth, storage\n")
		assert.Equal(t, []string{"auth", "storage"}, deps)
	})

	t.Run("dependencies header with spaces", func(t *testing.T) {
		deps := ExtractDependencies("Dependencies: api gateway-config\n")
		assert.Equal(t, []string{"api", "gateway-config"}, deps)
	})

	t.Run("inline requires references", func(t *testing.T) {
		deps := ExtractDependencies("This module requires user-service and also requires `session-store`.")
		assert.Equal(t, []string{"user-service", "session-store"}, deps)
	})

	t.Run("duplicates collapse in order of first appearance", func(t *testing.T) {
		deps := ExtractDependencies("Depends on: auth, auth\n\nAlso requires auth later.")
		assert.Equal(t, []string{"auth"}, deps)
	})

	t.Run("explicit none yields nothing", func(t *testing.T) {
		assert.Empty(t, ExtractDependencies("Depends on: none"))
	})

	t.Run("no references yields nothing", func(t *testing.T) {
		assert.Empty(t, ExtractDependencies("# A standalone spec\n\nJust build it."))
	})
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("structured declaration takes precedence over embedded text", func(t *testing.T) {
		path := filepath.Join(dir, "billing.md")
		require.NoError(t, os.WriteFile(path, []byte("Depends on: something-else\n"), 0o644))

		s, err := LoadFile(ctx, "billing", path, []string{"auth"})
		require.NoError(t, err)
		assert.Equal(t, []string{"auth"}, s.DependsOn)
	})

	t.Run("embedded extraction fills in when manifest is silent", func(t *testing.T) {
		path := filepath.Join(dir, "reports.md")
		require.NoError(t, os.WriteFile(path, []byte("Depends on: billing\n"), 0o644))

		s, err := LoadFile(ctx, "reports", path, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"billing"}, s.DependsOn)
		assert.Equal(t, "reports", s.Name)
		assert.False(t, s.Gap)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadFile(ctx, "nope", filepath.Join(dir, "nope.md"), nil)
		assert.ErrorContains(t, err, `reading spec "nope"`)
	})
}

func TestLoadDir(t *testing.T) {
	ctx := context.Background()

	t.Run("loads markdown gap-specs sorted by name", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "zeta.md"), []byte("z"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.md"), []byte("a"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

		specs, err := LoadDir(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "zeta"}, Names(specs))
		for _, s := range specs {
			assert.True(t, s.Gap)
		}
	})

	t.Run("descends into subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "auth"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "auth", "login.md"), []byte("l"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "billing.md"), []byte("b"), 0o644))

		specs, err := LoadDir(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"auth/login", "billing"}, Names(specs))
	})

	t.Run("missing directory yields an empty set", func(t *testing.T) {
		specs, err := LoadDir(ctx, filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, specs)
	})
}
