// Package polkit checks with the system authority service whether the
// current process may perform a privileged action.
package polkit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plexsphere/servicectl/internal/bus"
)

// ManageUnitsAction is the polkit action guarding systemd unit management.
const ManageUnitsAction = "org.freedesktop.systemd1.manage-units"

// checkAuthorization is the authority's CheckAuthorization method.
var checkAuthorization = bus.Method{
	Destination: "org.freedesktop.PolicyKit1",
	Path:        "/org/freedesktop/PolicyKit1/Authority",
	Interface:   "org.freedesktop.PolicyKit1.Authority",
	Member:      "CheckAuthorization",
}

// CheckAuthorization flags.
const (
	flagNone             uint32 = 0
	flagAllowInteraction uint32 = 1
)

// Config holds the configuration for the Authorizer.
type Config struct {
	// AllowInteraction lets the authority prompt for credentials.
	// Default: true
	AllowInteraction *bool `yaml:"allow_interaction"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.AllowInteraction == nil {
		v := true
		c.AllowInteraction = &v
	}
}

// Validate checks that configuration values are acceptable.
func (c *Config) Validate() error {
	return nil
}

// Authorizer performs CheckAuthorization round trips. It holds no state
// between calls; every check describes the process afresh.
type Authorizer struct {
	cfg     Config
	subject func() Subject
	logger  *slog.Logger
}

// NewAuthorizer creates an Authorizer for the current process.
// Config defaults are applied automatically.
func NewAuthorizer(cfg Config, logger *slog.Logger) *Authorizer {
	cfg.ApplyDefaults()
	return &Authorizer{
		cfg:     cfg,
		subject: CurrentProcess,
		logger:  logger.With("component", "polkit"),
	}
}

// authorizationResult mirrors the (bba{ss}) reply of CheckAuthorization.
type authorizationResult struct {
	IsAuthorized bool
	IsChallenge  bool
	Details      map[string]string
}

// Authorize reports whether the current process may perform actionID,
// asking the authority over conn.
//
// The check fails closed: if the authority cannot be reached or rejects the
// call, Authorize returns false with a nil error. A reply that cannot be
// decoded returns false together with a *bus.DeserializationError.
func (a *Authorizer) Authorize(ctx context.Context, actionID string, conn bus.Conn) (bool, error) {
	subject := a.subject()

	flags := flagNone
	if *a.cfg.AllowInteraction {
		flags = flagAllowInteraction
	}

	reply, err := conn.Call(ctx, checkAuthorization,
		subject, actionID, map[string]string{}, flags, "")
	if err != nil {
		a.logger.Warn("authorization check failed, denying",
			"action", actionID,
			"error", err,
		)
		return false, nil
	}

	result, err := decodeResult(reply)
	if err != nil {
		return false, err
	}

	a.logger.Debug("authorization checked",
		"action", actionID,
		"authorized", result.IsAuthorized,
		"challenge", result.IsChallenge,
	)
	return result.IsAuthorized, nil
}

// decodeResult unpacks the single struct out argument of CheckAuthorization.
func decodeResult(reply *bus.Reply) (authorizationResult, error) {
	var tuple []interface{}
	if err := reply.Decode(&tuple); err != nil {
		return authorizationResult{}, err
	}
	if len(tuple) != 3 {
		return authorizationResult{}, &bus.DeserializationError{
			Member: checkAuthorization.Member,
			Err:    fmt.Errorf("result has %d fields, want 3", len(tuple)),
		}
	}

	var res authorizationResult
	var err error
	if res.IsAuthorized, err = bus.Field[bool](tuple, 0, checkAuthorization.Member); err != nil {
		return authorizationResult{}, err
	}
	if res.IsChallenge, err = bus.Field[bool](tuple, 1, checkAuthorization.Member); err != nil {
		return authorizationResult{}, err
	}
	if res.Details, err = bus.Field[map[string]string](tuple, 2, checkAuthorization.Member); err != nil {
		return authorizationResult{}, err
	}
	return res, nil
}
