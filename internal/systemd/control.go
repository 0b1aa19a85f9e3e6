package systemd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/plexsphere/servicectl/internal/bus"
)

// Action names a mutating operation.
type Action string

// Supported actions.
const (
	ActionStart   Action = "start"
	ActionStop    Action = "stop"
	ActionEnable  Action = "enable"
	ActionDisable Action = "disable"
)

var (
	// ErrAuthorizationDenied is returned when the authority refuses, or
	// cannot be asked about, a mutation.
	ErrAuthorizationDenied = errors.New("not authorized")

	// ErrInvalidUnitName is returned for an empty unit name.
	ErrInvalidUnitName = errors.New("invalid unit name")
)

// ActionError reports a failed control operation on one unit. Err is
// ErrAuthorizationDenied, ErrInvalidUnitName, a *bus.TransportError or a
// *bus.DeserializationError.
type ActionError struct {
	Action Action
	Unit   string
	Err    error
}

// Error returns the formatted error string.
func (e *ActionError) Error() string {
	if errors.Is(e.Err, ErrAuthorizationDenied) {
		return fmt.Sprintf("systemd: not authorized to %s unit %q", e.Action, e.Unit)
	}
	return fmt.Sprintf("systemd: %s %q: %v", e.Action, e.Unit, e.Err)
}

// Unwrap returns the underlying error.
func (e *ActionError) Unwrap() error { return e.Err }

var (
	startUnit        = managerMethod("StartUnit")
	stopUnit         = managerMethod("StopUnit")
	enableUnitFiles  = managerMethod("EnableUnitFiles")
	disableUnitFiles = managerMethod("DisableUnitFiles")
)

// Start starts unit on the system bus.
func (m *Manager) Start(ctx context.Context, unit string) error {
	return m.control(ctx, ActionStart, unit, startUnit, unit, m.cfg.JobMode)
}

// Stop stops unit on the system bus.
func (m *Manager) Stop(ctx context.Context, unit string) error {
	return m.control(ctx, ActionStop, unit, stopUnit, unit, m.cfg.JobMode)
}

// Enable enables unit's unit file persistently on the system bus.
func (m *Manager) Enable(ctx context.Context, unit string) error {
	return m.control(ctx, ActionEnable, unit, enableUnitFiles, []string{unit}, false, *m.cfg.ForceEnable)
}

// Disable disables unit's unit file persistently on the system bus.
func (m *Manager) Disable(ctx context.Context, unit string) error {
	return m.control(ctx, ActionDisable, unit, disableUnitFiles, []string{unit}, false)
}

// Do performs action on unit.
func (m *Manager) Do(ctx context.Context, action Action, unit string) error {
	switch action {
	case ActionStart:
		return m.Start(ctx, unit)
	case ActionStop:
		return m.Stop(ctx, unit)
	case ActionEnable:
		return m.Enable(ctx, unit)
	case ActionDisable:
		return m.Disable(ctx, unit)
	}
	return fmt.Errorf("systemd: unknown action %q", action)
}

// control opens a system-bus connection, checks authorization and, only if
// granted, issues method once. The reply payload is ignored.
func (m *Manager) control(ctx context.Context, action Action, unit string, method bus.Method, args ...interface{}) error {
	if strings.TrimSpace(unit) == "" {
		return &ActionError{Action: action, Unit: unit, Err: ErrInvalidUnitName}
	}

	conn, err := m.connector.Connect(ctx, bus.System)
	if err != nil {
		return &ActionError{Action: action, Unit: unit, Err: err}
	}
	defer conn.Close()

	ok, err := m.authorizer.Authorize(ctx, m.cfg.ActionID, conn)
	if err != nil {
		return &ActionError{Action: action, Unit: unit, Err: err}
	}
	if !ok {
		m.logger.Warn("action denied", "action", action, "unit", unit)
		return &ActionError{Action: action, Unit: unit, Err: ErrAuthorizationDenied}
	}

	if _, err := conn.Call(ctx, method, args...); err != nil {
		return &ActionError{Action: action, Unit: unit, Err: err}
	}

	m.logger.Info("action completed", "action", action, "unit", unit)
	return nil
}
