// Package config resolves the mclc configuration directory and loads the
// optional config.yaml with user defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mclc/pkg/logging"
)

const (
	appDirName     = "mclc"
	configFileName = "config.yaml"

	// EnvConfigDir overrides the configuration directory, mainly for tests
	// and sandboxed environments.
	EnvConfigDir = "MCLC_CONFIG_DIR"
)

// osUserConfigDir is a variable so tests can redirect directory resolution.
var osUserConfigDir = os.UserConfigDir

// Config holds the user-tunable defaults read from config.yaml. All fields
// are optional; CLI flags take precedence over file values.
type Config struct {
	// ClientID is the Azure application (client) ID used for the Microsoft
	// device-code flow.
	ClientID string `yaml:"client_id"`

	// DefaultAPIURL is the Yggdrasil server used when --api-url is omitted.
	DefaultAPIURL string `yaml:"default_api_url"`
}

// Dir returns the mclc configuration directory, creating it if needed.
func Dir() (string, error) {
	if override := os.Getenv(EnvConfigDir); override != "" {
		if err := os.MkdirAll(override, 0700); err != nil {
			return "", fmt.Errorf("failed to create config directory %s: %w", override, err)
		}
		return override, nil
	}

	base, err := osUserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine config directory: %w", err)
	}
	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return dir, nil
}

// CacheDir returns the artifact cache directory under the config directory.
// It is created lazily by the components that write to it.
func CacheDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache"), nil
}

// Load reads config.yaml from the config directory. A missing file yields
// the zero Config.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	logging.Debug("Config", "loaded configuration from %s", path)
	return &cfg, nil
}
