// Package unitstate classifies the activation and enablement states reported
// by the systemd manager.
//
// Both types are open string enumerations: the known vocabulary maps to
// canonical constants, and anything else is kept verbatim as an unknown
// value so no information reported by the daemon is lost.
package unitstate

import "strings"

// ActivationState is the runtime lifecycle state of a unit.
type ActivationState string

// Known activation states.
const (
	Active       ActivationState = "active"
	Inactive     ActivationState = "inactive"
	Failed       ActivationState = "failed"
	Activating   ActivationState = "activating"
	Deactivating ActivationState = "deactivating"
)

var activationStates = []ActivationState{Active, Inactive, Failed, Activating, Deactivating}

// ParseActivationState classifies raw. Known states match case-insensitively
// and are returned in canonical form; any other input is returned unchanged.
func ParseActivationState(raw string) ActivationState {
	for _, s := range activationStates {
		if strings.EqualFold(raw, string(s)) {
			return s
		}
	}
	return ActivationState(raw)
}

// Known reports whether s is one of the known activation states.
func (s ActivationState) Known() bool {
	for _, k := range activationStates {
		if s == k {
			return true
		}
	}
	return false
}

// String returns the raw state text.
func (s ActivationState) String() string { return string(s) }

// ActivationStates returns the known activation states in display order.
func ActivationStates() []ActivationState {
	return append([]ActivationState(nil), activationStates...)
}

// EnablementState is the persisted unit-file state of a unit.
type EnablementState string

// Known enablement states.
const (
	Enabled   EnablementState = "enabled"
	Disabled  EnablementState = "disabled"
	Static    EnablementState = "static"
	Indirect  EnablementState = "indirect"
	Generated EnablementState = "generated"
	Transient EnablementState = "transient"
)

// UnknownEnablement is assigned to units that have no unit-file entry.
const UnknownEnablement EnablementState = "unknown"

var enablementStates = []EnablementState{Enabled, Disabled, Static, Indirect, Generated, Transient}

// ParseEnablementState classifies raw with the same rules as
// ParseActivationState.
func ParseEnablementState(raw string) EnablementState {
	for _, s := range enablementStates {
		if strings.EqualFold(raw, string(s)) {
			return s
		}
	}
	return EnablementState(raw)
}

// Known reports whether s is one of the known enablement states.
func (s EnablementState) Known() bool {
	for _, k := range enablementStates {
		if s == k {
			return true
		}
	}
	return false
}

// String returns the raw state text.
func (s EnablementState) String() string { return string(s) }

// EnablementStates returns the known enablement states in display order.
func EnablementStates() []EnablementState {
	return append([]EnablementState(nil), enablementStates...)
}
