package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable that points at a config file
// when no --config flag is given.
const EnvConfig = "REVOLVE_CONFIG"

// Load builds the config from defaults, then the first config file found,
// then CLI flags, and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := configFile(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// configFile returns the explicit path (flag, then environment) or the
// first existing file among the working directory and ConfigDir.
func configFile() string {
	if path := ConfigPath(); path != "" {
		return path
	}
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}
	for _, path := range []string{
		"config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user config directory of the demo.
func ConfigDir() string {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "revolve")
		}
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "revolve")
	}
	return filepath.Join(dir, "Revolve")
}

// loadFromFile merges a YAML file over cfg. Unknown keys are rejected and
// an empty file changes nothing.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
