// Package config loads the servicectl configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plexsphere/servicectl/internal/bus"
	"github.com/plexsphere/servicectl/internal/polkit"
	"github.com/plexsphere/servicectl/internal/systemd"
	"github.com/plexsphere/servicectl/internal/view"
)

const (
	// DefaultPath is the default configuration file location.
	DefaultPath = "/etc/servicectl/config.yaml"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "warn"
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Config is the top-level servicectl configuration. It aggregates the
// subsystem configurations and is populated from a YAML file via
// ParseConfig.
type Config struct {
	// LogLevel is the log level: "debug", "info", "warn", "error".
	// Default: "warn"
	LogLevel string `yaml:"log_level"`

	Bus     bus.Config     `yaml:"bus"`
	Manager systemd.Config `yaml:"manager"`
	Polkit  polkit.Config  `yaml:"polkit"`
	Output  view.Config    `yaml:"output"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.Bus.ApplyDefaults()
	c.Manager.ApplyDefaults()
	c.Polkit.ApplyDefaults()
	c.Output.ApplyDefaults()
}

// Validate checks that required fields are set and values are acceptable.
func (c *Config) Validate() error {
	if !logLevels[c.LogLevel] {
		return fmt.Errorf("config: invalid log_level %q (must be debug, info, warn or error)", c.LogLevel)
	}
	if err := c.Bus.Validate(); err != nil {
		return err
	}
	if err := c.Manager.Validate(); err != nil {
		return err
	}
	if err := c.Polkit.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	return nil
}

// ParseConfig reads a YAML configuration file and returns a Config.
// It applies defaults and validates the configuration. A missing file is
// reported with an error wrapping fs.ErrNotExist.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
