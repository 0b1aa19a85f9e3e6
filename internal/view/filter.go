// Package view holds the presentation helpers shared by the CLI: display
// labels for unit states, record filters and output rendering.
package view

import (
	"fmt"
	"strings"

	"github.com/plexsphere/servicectl/internal/systemd"
	"github.com/plexsphere/servicectl/internal/unitstate"
)

// LabelUnknown is shown for any state outside the known vocabulary.
const LabelUnknown = "Unknown"

// FilterAll disables a categorical filter.
const FilterAll = "All"

var activationLabels = map[unitstate.ActivationState]string{
	unitstate.Active:       "Active",
	unitstate.Inactive:     "Inactive",
	unitstate.Failed:       "Failed",
	unitstate.Activating:   "Activating",
	unitstate.Deactivating: "Deactivating",
}

var enablementLabels = map[unitstate.EnablementState]string{
	unitstate.Enabled:   "Enabled",
	unitstate.Disabled:  "Disabled",
	unitstate.Static:    "Static",
	unitstate.Indirect:  "Indirect",
	unitstate.Generated: "Generated",
	unitstate.Transient: "Transient",
}

// ActivationLabel returns the display label for s.
func ActivationLabel(s unitstate.ActivationState) string {
	if l, ok := activationLabels[s]; ok {
		return l
	}
	return LabelUnknown
}

// EnablementLabel returns the display label for s.
func EnablementLabel(s unitstate.EnablementState) string {
	if l, ok := enablementLabels[s]; ok {
		return l
	}
	return LabelUnknown
}

// ActivationLabels returns every activation label, Unknown last.
func ActivationLabels() []string {
	var out []string
	for _, s := range unitstate.ActivationStates() {
		out = append(out, activationLabels[s])
	}
	return append(out, LabelUnknown)
}

// EnablementLabels returns every enablement label, Unknown last.
func EnablementLabels() []string {
	var out []string
	for _, s := range unitstate.EnablementStates() {
		out = append(out, enablementLabels[s])
	}
	return append(out, LabelUnknown)
}

// Filter selects records by a free-text name query and by status and
// enablement label. The zero Filter matches everything.
type Filter struct {
	// Query matches names case-insensitively as a substring.
	Query string
	// Status is an activation label, or "" / "All".
	Status string
	// Enablement is an enablement label, or "" / "All".
	Enablement string
}

// Validate checks that Status and Enablement name known labels.
func (f Filter) Validate() error {
	if !isAll(f.Status) && !containsFold(ActivationLabels(), f.Status) {
		return fmt.Errorf("view: unknown status %q (want one of %s)", f.Status, strings.Join(ActivationLabels(), ", "))
	}
	if !isAll(f.Enablement) && !containsFold(EnablementLabels(), f.Enablement) {
		return fmt.Errorf("view: unknown enablement %q (want one of %s)", f.Enablement, strings.Join(EnablementLabels(), ", "))
	}
	return nil
}

// Match reports whether r passes every criterion of f.
func (f Filter) Match(r systemd.ServiceRecord) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(f.Query)) {
		return false
	}
	if !isAll(f.Status) && !strings.EqualFold(ActivationLabel(r.Status), f.Status) {
		return false
	}
	if !isAll(f.Enablement) && !strings.EqualFold(EnablementLabel(r.Enablement), f.Enablement) {
		return false
	}
	return true
}

// Apply returns the records matching f, preserving order.
func (f Filter) Apply(records []systemd.ServiceRecord) []systemd.ServiceRecord {
	out := make([]systemd.ServiceRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func isAll(s string) bool {
	return s == "" || strings.EqualFold(s, FilterAll)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
