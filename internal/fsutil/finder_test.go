package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Run("returns sorted matches across subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "zeta.md"), []byte("z"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "alpha.md"), []byte("a"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("s"), 0o644))

		files, err := FindFilesByExtension(dir, ".md")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "sub", "alpha.md"),
			filepath.Join(dir, "zeta.md"),
		}, files)
	})

	t.Run("missing root yields empty result", func(t *testing.T) {
		files, err := FindFilesByExtension(filepath.Join(t.TempDir(), "absent"), ".md")
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("empty extension panics", func(t *testing.T) {
		assert.Panics(t, func() {
			_, _ = FindFilesByExtension(t.TempDir(), "")
		})
	})
}
