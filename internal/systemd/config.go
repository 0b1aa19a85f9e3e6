package systemd

import (
	"errors"
	"fmt"

	"github.com/plexsphere/servicectl/internal/bus"
	"github.com/plexsphere/servicectl/internal/polkit"
)

// Config holds the configuration for the Manager.
// Config is passed as a constructor argument; no file I/O in this package.
type Config struct {
	// Domains lists the buses queried when listing services.
	// Records are always ordered system first regardless of list order.
	// Default: [system, session]
	Domains []string `yaml:"domains"`

	// JobMode is the conflict-resolution mode passed to StartUnit and StopUnit.
	// Default: replace
	JobMode string `yaml:"job_mode"`

	// ForceEnable replaces conflicting symlinks in EnableUnitFiles.
	// Default: true
	ForceEnable *bool `yaml:"force_enable"`

	// ActionID is the polkit action checked before every mutation.
	// Default: org.freedesktop.systemd1.manage-units
	ActionID string `yaml:"action_id"`
}

// DefaultJobMode is the default StartUnit/StopUnit mode.
const DefaultJobMode = "replace"

// jobModes are the modes systemd accepts for StartUnit and StopUnit.
var jobModes = map[string]bool{
	"replace":              true,
	"fail":                 true,
	"isolate":              true,
	"ignore-dependencies":  true,
	"ignore-requirements":  true,
	"replace-irreversibly": true,
	"flush":                true,
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if len(c.Domains) == 0 {
		c.Domains = []string{string(bus.System), string(bus.Session)}
	}
	if c.JobMode == "" {
		c.JobMode = DefaultJobMode
	}
	if c.ForceEnable == nil {
		v := true
		c.ForceEnable = &v
	}
	if c.ActionID == "" {
		c.ActionID = polkit.ManageUnitsAction
	}
}

// Validate checks that configuration values are acceptable.
func (c *Config) Validate() error {
	seen := make(map[bus.Domain]bool)
	for _, s := range c.Domains {
		d, err := bus.ParseDomain(s)
		if err != nil {
			return fmt.Errorf("systemd: config: Domains: %w", err)
		}
		if seen[d] {
			return fmt.Errorf("systemd: config: Domains: duplicate domain %q", d)
		}
		seen[d] = true
	}
	if !jobModes[c.JobMode] {
		return fmt.Errorf("systemd: config: invalid JobMode %q", c.JobMode)
	}
	if c.ActionID == "" {
		return errors.New("systemd: config: ActionID is required")
	}
	return nil
}

// domains returns the configured domains in canonical order.
func (c *Config) domains() []bus.Domain {
	enabled := make(map[bus.Domain]bool)
	for _, s := range c.Domains {
		if d, err := bus.ParseDomain(s); err == nil {
			enabled[d] = true
		}
	}
	var out []bus.Domain
	for _, d := range bus.Domains() {
		if enabled[d] {
			out = append(out, d)
		}
	}
	return out
}
