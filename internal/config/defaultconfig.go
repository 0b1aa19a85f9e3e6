package config

import (
	"fmt"
	"strings"

	"github.com/plexsphere/servicectl/internal/polkit"
	"github.com/plexsphere/servicectl/internal/view"
)

// GenerateDefault produces a commented config.yaml holding the built-in
// defaults. domains limits manager.domains when non-empty.
func GenerateDefault(domains []string) string {
	domainList := "[system, session]"
	if len(domains) > 0 {
		domainList = "[" + strings.Join(domains, ", ") + "]"
	}

	return fmt.Sprintf(`# servicectl configuration
# Every key is optional; removing a key restores its default.

log_level: %s

bus:
  # system_address: unix:path=/run/dbus/system_bus_socket
  # session_address: unix:path=/run/user/1000/bus
  call_timeout: 0s

manager:
  domains: %s
  job_mode: replace
  force_enable: true
  action_id: %s

polkit:
  allow_interaction: true

output:
  format: %s
  max_column_width: %d
`, DefaultLogLevel, domainList, polkit.ManageUnitsAction, view.FormatAuto, view.DefaultMaxColumnWidth)
}
