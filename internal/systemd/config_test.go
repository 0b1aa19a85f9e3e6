package systemd

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/plexsphere/servicectl/internal/bus"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if diff := cmp.Diff([]string{"system", "session"}, cfg.Domains); diff != "" {
		t.Errorf("Domains mismatch (-want +got):\n%s", diff)
	}
	if cfg.JobMode != "replace" {
		t.Errorf("JobMode = %q, want replace", cfg.JobMode)
	}
	if cfg.ForceEnable == nil || !*cfg.ForceEnable {
		t.Error("ForceEnable default should be true")
	}
	if cfg.ActionID != "org.freedesktop.systemd1.manage-units" {
		t.Errorf("ActionID = %q", cfg.ActionID)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown domain",
			mutate:  func(c *Config) { c.Domains = []string{"system", "remote"} },
			wantErr: `systemd: config: Domains: bus: unknown domain "remote" (must be "system" or "session")`,
		},
		{
			name:    "duplicate domain via alias",
			mutate:  func(c *Config) { c.Domains = []string{"session", "user"} },
			wantErr: `systemd: config: Domains: duplicate domain "session"`,
		},
		{
			name:    "invalid job mode",
			mutate:  func(c *Config) { c.JobMode = "sometimes" },
			wantErr: `systemd: config: invalid JobMode "sometimes"`,
		},
		{
			name:    "empty action id",
			mutate:  func(c *Config) { c.ActionID = "" },
			wantErr: "systemd: config: ActionID is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error %q", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_DomainsCanonicalOrder(t *testing.T) {
	cfg := Config{Domains: []string{"user", "system"}}
	got := cfg.domains()
	if diff := cmp.Diff([]bus.Domain{bus.System, bus.Session}, got); diff != "" {
		t.Errorf("domains() mismatch (-want +got):\n%s", diff)
	}
}
