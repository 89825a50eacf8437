package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded config cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable fallback.
func (c *Config) Validate() error {
	if c.Bank.Path == "" {
		return fmt.Errorf("%w: bank.path is empty", ErrInvalidConfig)
	}
	if !logLevels[c.Logging.Level] {
		return fmt.Errorf("%w: unknown logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}
	for src, dst := range c.Convert.Mapping {
		if src == "" || dst == "" {
			return fmt.Errorf("%w: mapping %q -> %q", ErrInvalidConfig, src, dst)
		}
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./matconv.yaml",
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "FlverMatconv")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "FlverMatconv")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "flver-matconv")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "flver-matconv")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values. A relative bank
// path in the file is taken relative to the file's directory.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	bankPath := cfg.Bank.Path
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	if cfg.Bank.Path != bankPath && !filepath.IsAbs(cfg.Bank.Path) {
		cfg.Bank.Path = filepath.Join(filepath.Dir(path), cfg.Bank.Path)
	}
	return nil
}
