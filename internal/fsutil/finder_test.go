package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "node", "node.spec"))
	touch(t, filepath.Join(root, "broker", "broker.spec"))
	touch(t, filepath.Join(root, "broker", "README.md"))
	touch(t, filepath.Join(root, ".git", "stale.spec"))

	t.Run("sorted and skipping dirs", func(t *testing.T) {
		files, err := FindFilesByExtension(root, ".spec", ".git")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "broker", "broker.spec"),
			filepath.Join(root, "node", "node.spec"),
		}, files)
	})

	t.Run("single file root", func(t *testing.T) {
		path := filepath.Join(root, "node", "node.spec")
		files, err := FindFilesByExtension(path, ".spec")
		require.NoError(t, err)
		assert.Equal(t, []string{path}, files)
	})

	t.Run("empty extension", func(t *testing.T) {
		_, err := FindFilesByExtension(root, "")
		require.Error(t, err)
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := FindFilesByExtension(filepath.Join(root, "nope"), ".spec")
		require.Error(t, err)
	})
}
