package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirUsesEnvOverride(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "custom")
	t.Setenv(EnvConfigDir, tempDir)

	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, tempDir, dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDirDefault(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	base := t.TempDir()

	original := osUserConfigDir
	defer func() { osUserConfigDir = original }()
	osUserConfigDir = func() (string, error) { return base, nil }

	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, appDirName), dir)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	content := "client_id: abc-123\ndefault_api_url: https://auth.example.com/api/yggdrasil\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "abc-123", cfg.ClientID)
	assert.Equal(t, "https://auth.example.com/api/yggdrasil", cfg.DefaultAPIURL)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("{not yaml"), 0600))

	_, err := Load()
	assert.Error(t, err)
}

func TestCacheDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	cache, err := CacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cache"), cache)
}
