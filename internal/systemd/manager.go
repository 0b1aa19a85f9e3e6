// Package systemd aggregates service units from the system and session
// service managers and performs authorized start, stop, enable and disable
// operations on them.
package systemd

import (
	"context"
	"log/slog"

	"github.com/plexsphere/servicectl/internal/bus"
	"github.com/plexsphere/servicectl/internal/unitstate"
)

// managerMethod returns the org.freedesktop.systemd1.Manager method member.
func managerMethod(member string) bus.Method {
	return bus.Method{
		Destination: "org.freedesktop.systemd1",
		Path:        "/org/freedesktop/systemd1",
		Interface:   "org.freedesktop.systemd1.Manager",
		Member:      member,
	}
}

// serviceSuffix is the unit name suffix of service units.
const serviceSuffix = ".service"

// ServiceRecord describes one service unit. Two records describe the same
// unit when their names are equal.
type ServiceRecord struct {
	Name        string                    `json:"name" yaml:"name"`
	Description string                    `json:"description" yaml:"description"`
	Status      unitstate.ActivationState `json:"status" yaml:"status"`
	Enablement  unitstate.EnablementState `json:"enablement" yaml:"enablement"`
	Domain      bus.Domain                `json:"domain" yaml:"domain"`
}

// Snapshot is the result of one aggregation pass.
type Snapshot struct {
	// Services holds system-bus records followed by session-bus records,
	// each in the order the daemon returned them.
	Services []ServiceRecord

	// Failures maps each domain that contributed nothing to the error
	// that stopped it.
	Failures map[bus.Domain]error
}

// Authorizer decides whether the current process may perform actionID.
type Authorizer interface {
	Authorize(ctx context.Context, actionID string, conn bus.Conn) (bool, error)
}

// Manager lists and controls service units. It keeps no mutable state;
// every call opens its own connections.
type Manager struct {
	connector  bus.Connector
	authorizer Authorizer
	cfg        Config
	logger     *slog.Logger
}

// NewManager creates a Manager. Config defaults are applied automatically.
func NewManager(connector bus.Connector, authorizer Authorizer, cfg Config, logger *slog.Logger) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		connector:  connector,
		authorizer: authorizer,
		cfg:        cfg,
		logger:     logger.With("component", "systemd"),
	}
}
