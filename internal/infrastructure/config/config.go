// Package config loads the CLI configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk CLI configuration. The bearer token is
// deliberately not part of it: auth state lives for the session only,
// supplied by login or the LEADMATE_TOKEN environment variable.
type Config struct {
	BaseURL             string `yaml:"base_url"`
	GitHubToken         string `yaml:"github_token,omitempty"`
	AgentTimeoutSeconds int    `yaml:"agent_timeout_seconds,omitempty"`
	DashboardAddr       string `yaml:"dashboard_addr,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:             "http://localhost:8080",
		AgentTimeoutSeconds: 120,
		DashboardAddr:       "localhost:7878",
	}
}

// DefaultPath returns ~/.leadmate/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".leadmate", "config.yaml"), nil
}

// Load reads the config at path, falling back to defaults when the file
// does not exist. Environment variables LEADMATE_URL and GITHUB_TOKEN
// override file values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults are fine.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := os.Getenv("LEADMATE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" && cfg.GitHubToken == "" {
		cfg.GitHubToken = v
	}
	if cfg.AgentTimeoutSeconds <= 0 {
		cfg.AgentTimeoutSeconds = Default().AgentTimeoutSeconds
	}
	if cfg.DashboardAddr == "" {
		cfg.DashboardAddr = Default().DashboardAddr
	}
	return cfg, nil
}

// Save writes the config, creating the parent directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// AgentTimeout returns the agent call timeout as a duration.
func (c Config) AgentTimeout() time.Duration {
	return time.Duration(c.AgentTimeoutSeconds) * time.Second
}
