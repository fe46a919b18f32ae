// Package config provides unified YAML configuration for frostadvisor.
// A single config file under <workspace>/.frostadvisor/config.yaml drives
// the catalog paths, the SQLite database location, the LLM providers, the
// AI gating settings, and logging.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all frostadvisor configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Catalog file sources
	Catalog CatalogConfig `yaml:"catalog"`

	// SQLite repository
	Database DatabaseConfig `yaml:"database"`

	// Provider credentials and endpoints
	Providers ProvidersConfig `yaml:"providers"`

	// AI gating: mode, daily limits, cooldown, provider selection
	AI AISettings `yaml:"ai"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// CatalogConfig points at the hero and lineup template catalogs.
// Empty paths fall back to the embedded defaults.
type CatalogConfig struct {
	HeroesPath  string `yaml:"heroes_path"`
	LineupsPath string `yaml:"lineups_path"`
}

// DatabaseConfig configures the SQLite repository.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ProviderConfig holds one provider's credentials and endpoint.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// TimeoutOrDefault parses the timeout string, falling back to def.
func (p ProviderConfig) TimeoutOrDefault(def time.Duration) time.Duration {
	if p.Timeout == "" {
		return def
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return def
	}
	return d
}

// ProvidersConfig holds per-provider settings.
type ProvidersConfig struct {
	Anthropic ProviderConfig `yaml:"anthropic"`
	OpenAI    ProviderConfig `yaml:"openai"`
}

// LoggingConfig controls the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "frostadvisor",
		Version: "1.0.0",
		Database: DatabaseConfig{
			Path: ".frostadvisor/advisor.db",
		},
		Providers: ProvidersConfig{
			Anthropic: ProviderConfig{
				BaseURL: "https://api.anthropic.com/v1",
				Model:   "claude-sonnet-4-20250514",
				Timeout: "30s",
			},
			OpenAI: ProviderConfig{
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
				Timeout: "30s",
			},
		},
		AI: DefaultAISettings(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultConfigPath returns <workspace>/.frostadvisor/config.yaml.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(workspace, ".frostadvisor", "config.yaml")
}

// Load reads the config from the given path, applies env overrides, and
// fills defaulted fields.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides lets environment variables win over file values.
// Only credentials are overridable; behavior stays in the file.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.Providers.Anthropic.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Providers.OpenAI.APIKey = key
	}
}
