package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries the runtime settings of the locator tooling. Values come
// from an optional YAML file overlaid by WEB_LOCATOR_* environment variables;
// a .env file in the working directory is honored before the overlay.
type Config struct {
	Backend      string `yaml:"backend"`       // "playwright" or "selenium"
	Headless     bool   `yaml:"headless"`
	TimeoutMs    int    `yaml:"timeout_ms"`
	BaseURL      string `yaml:"base_url"`
	StorageState string `yaml:"storage_state"` // path for persisted browser state
	LogLevel     string `yaml:"log_level"`
}

const (
	BackendPlaywright = "playwright"
	BackendSelenium   = "selenium"
)

// Default - returns the built-in configuration.
func Default() Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return Config{
		Backend:      BackendPlaywright,
		Headless:     true,
		TimeoutMs:    5000,
		StorageState: filepath.Join(homeDir, ".web_locator", "state.json"),
		LogLevel:     "info",
	}
}

// Load - reads configuration from the given YAML path (optional: a missing
// file is fine) and overlays environment variables on top.
func Load(path string) (Config, error) {
	// .env file is optional
	godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("WEB_LOCATOR_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("WEB_LOCATOR_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Headless = b
		}
	}
	if v := os.Getenv("WEB_LOCATOR_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("WEB_LOCATOR_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("WEB_LOCATOR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if cfg.Backend != BackendPlaywright && cfg.Backend != BackendSelenium {
		return Config{}, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return cfg, nil
}

// Timeout - the default wait timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}
