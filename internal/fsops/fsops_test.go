package fsops

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/usr/bin/htop", []byte("x"), 0755))

	assert.True(t, Exists(fs, "/usr/bin/htop"))
	assert.False(t, Exists(fs, "/usr/bin/missing"))
}

func TestCopyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src", []byte("payload"), 0644))

	require.NoError(t, CopyFile(fs, "/src", "/dst", 0755))

	content, err := afero.ReadFile(fs, "/dst")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), content)

	info, err := fs.Stat("/dst")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestPruneEmptyDirs(t *testing.T) {
	t.Run("removes empty chain up to stop dir", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/usr/share/icons/hicolor/48x48/apps", 0755))

		require.NoError(t, PruneEmptyDirs(fs, "/usr/share/icons/hicolor/48x48/apps", "/usr"))

		assert.False(t, Exists(fs, "/usr/share/icons"))
		assert.True(t, Exists(fs, "/usr"), "stop dir must survive")
	})

	t.Run("keeps directories holding foreign files", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/usr/share/htop", 0755))
		require.NoError(t, afero.WriteFile(fs, "/usr/share/other.txt", []byte("keep"), 0644))

		require.NoError(t, PruneEmptyDirs(fs, "/usr/share/htop", "/usr"))

		assert.False(t, Exists(fs, "/usr/share/htop"))
		assert.True(t, Exists(fs, "/usr/share"), "non-empty parent must survive")
	})

	t.Run("path outside stop dir is a no-op", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/opt/thing", 0755))

		require.NoError(t, PruneEmptyDirs(fs, "/opt/thing", "/usr"))
		assert.True(t, Exists(fs, "/opt/thing"))
	})
}
