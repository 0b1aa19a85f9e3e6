package bus

import (
	"errors"
	"strings"
	"time"
)

// Config holds the configuration for bus connections.
// Config is passed as a constructor argument; no file I/O in this package.
type Config struct {
	// SystemAddress overrides the system bus address.
	// Default: empty, meaning the well-known system bus
	// (DBUS_SYSTEM_BUS_ADDRESS or /run/dbus/system_bus_socket).
	SystemAddress string `yaml:"system_address"`

	// SessionAddress overrides the session bus address.
	// Default: empty, meaning DBUS_SESSION_BUS_ADDRESS or the
	// per-user bus socket.
	SessionAddress string `yaml:"session_address"`

	// CallTimeout bounds each remote call. Zero leaves the transport
	// default in place.
	// Default: 0
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// ApplyDefaults sets default values for zero-valued fields.
// All defaults are zero values, so this only normalizes whitespace.
func (c *Config) ApplyDefaults() {
	c.SystemAddress = strings.TrimSpace(c.SystemAddress)
	c.SessionAddress = strings.TrimSpace(c.SessionAddress)
}

// Validate checks that configuration values are acceptable.
func (c *Config) Validate() error {
	if c.CallTimeout < 0 {
		return errors.New("bus: config: CallTimeout must not be negative")
	}
	if c.SystemAddress != "" && !strings.Contains(c.SystemAddress, ":") {
		return errors.New("bus: config: SystemAddress must be a D-Bus address (transport:key=value)")
	}
	if c.SessionAddress != "" && !strings.Contains(c.SessionAddress, ":") {
		return errors.New("bus: config: SessionAddress must be a D-Bus address (transport:key=value)")
	}
	return nil
}

// address returns the configured override for d, if any.
func (c *Config) address(d Domain) string {
	switch d {
	case System:
		return c.SystemAddress
	case Session:
		return c.SessionAddress
	}
	return ""
}
