package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendPlaywright, cfg.Backend)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 5000, cfg.TimeoutMs)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, BackendPlaywright, cfg.Backend)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"backend: selenium\nheadless: false\ntimeout_ms: 12000\nbase_url: https://example.com\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSelenium, cfg.Backend)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 12000, cfg.TimeoutMs)
	assert.Equal(t, "https://example.com", cfg.BaseURL)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: selenium\ntimeout_ms: 12000\n"), 0644))

	t.Setenv("WEB_LOCATOR_BACKEND", "playwright")
	t.Setenv("WEB_LOCATOR_TIMEOUT_MS", "250")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendPlaywright, cfg.Backend)
	assert.Equal(t, 250, cfg.TimeoutMs)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("WEB_LOCATOR_BACKEND", "lynx")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lynx")
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [not, a, string\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}
