// Package config loads nbclean settings from a YAML or TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds all nbclean settings.
type Config struct {
	// Kernel configures the interpreter used by --check.
	Kernel KernelConfig `yaml:"kernel" toml:"kernel"`
	// Extension selects notebook files inside directory targets.
	Extension string `yaml:"extension" toml:"extension"`
	// KeepGoing continues past documents that fail.
	KeepGoing bool `yaml:"keep_going" toml:"keep_going"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level"`
}

// KernelConfig configures the interpreter subprocess.
type KernelConfig struct {
	Command        string   `yaml:"command" toml:"command"`
	Args           []string `yaml:"args" toml:"args"` // empty: bundled Python driver
	Env            []string `yaml:"env" toml:"env"`
	CellTimeout    string   `yaml:"cell_timeout" toml:"cell_timeout"`
	StartupTimeout string   `yaml:"startup_timeout" toml:"startup_timeout"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Kernel: KernelConfig{
			Command:        "python3",
			CellTimeout:    "300s",
			StartupTimeout: "60s",
		},
		Extension: ".ipynb",
		LogLevel:  "warn",
	}
}

// Load reads the file at path over the defaults. The format is chosen by
// extension: .yaml and .yml use YAML, .toml uses TOML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Kernel.Command) == "" {
		return errors.New("kernel.command must not be empty")
	}
	if c.Extension == "" {
		return errors.New("extension must not be empty")
	}
	if _, err := c.Kernel.CellTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Kernel.StartupTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// CellTimeoutDuration parses CellTimeout.
func (k KernelConfig) CellTimeoutDuration() (time.Duration, error) {
	return parsePositive("kernel.cell_timeout", k.CellTimeout)
}

// StartupTimeoutDuration parses StartupTimeout.
func (k KernelConfig) StartupTimeoutDuration() (time.Duration, error) {
	return parsePositive("kernel.startup_timeout", k.StartupTimeout)
}

func parsePositive(name, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, raw)
	}
	return d, nil
}
