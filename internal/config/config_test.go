package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/usr", cfg.Install.Prefix)
	assert.Equal(t, filepath.Join(home, ".local", "share", "zpkg"), cfg.Paths.StateDir)
	assert.Equal(t, filepath.Join(cfg.Paths.StateDir, "installed.json"), cfg.Paths.DBFile)
	assert.Equal(t, filepath.Join(cfg.Paths.StateDir, "zpkg.log"), cfg.Paths.LogFile)
	assert.Equal(t, 10*time.Second, cfg.Database.LockTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("ZPKG_INSTALL_PREFIX", "/opt/zpkg")
	t.Setenv("ZPKG_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/opt/zpkg", cfg.Install.Prefix)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, "data"), expandPath("~/data"))
	assert.Equal(t, "/absolute/path", expandPath("/absolute/path"))
	assert.Equal(t, "", expandPath(""))
}
