package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plexsphere/servicectl/internal/bus"
	"github.com/plexsphere/servicectl/internal/systemd"
)

var controlShort = map[systemd.Action]string{
	systemd.ActionStart:   "Start service units",
	systemd.ActionStop:    "Stop service units",
	systemd.ActionEnable:  "Enable service unit files",
	systemd.ActionDisable: "Disable service unit files",
}

// remoteErrorHints replaces the raw D-Bus error text of common manager
// errors in per-unit output.
var remoteErrorHints = map[string]string{
	"org.freedesktop.systemd1.NoSuchUnit":     "unit not found",
	"org.freedesktop.systemd1.UnitMasked":     "unit is masked",
	"org.freedesktop.systemd1.LoadFailed":     "unit failed to load",
	"org.freedesktop.DBus.Error.AccessDenied": "access denied by the service manager",
}

// unitTypes are the unit name suffixes systemd recognizes.
var unitTypes = []string{
	".service", ".socket", ".target", ".timer", ".mount", ".automount",
	".swap", ".path", ".slice", ".scope", ".device",
}

func init() {
	for _, a := range []systemd.Action{systemd.ActionStart, systemd.ActionStop, systemd.ActionEnable, systemd.ActionDisable} {
		rootCmd.AddCommand(newControlCmd(a))
	}
}

func newControlCmd(action systemd.Action) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " UNIT...",
		Short: controlShort[action],
		Long: controlShort[action] + " on the system service manager.\n" +
			"Each unit is authorized with polkit before it is changed. Names without a\n" +
			"unit type suffix get \".service\" appended. Every unit is attempted; the\n" +
			"command fails if any of them failed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runControl(cmd, action, args)
		},
	}
}

func runControl(cmd *cobra.Command, action systemd.Action, units []string) error {
	cfg, logger, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	mgr := newManager(cfg, logger)

	var failed int
	for _, name := range units {
		unit := unitName(name)
		if err := mgr.Do(cmd.Context(), action, unit); err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %s\n", action, unit, describeFailure(err))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: ok\n", action, unit)
	}
	if failed > 0 {
		return fmt.Errorf("servicectl %s: %d of %d units failed", action, failed, len(units))
	}
	return nil
}

// describeFailure renders a control error for one unit, naming well-known
// manager errors instead of echoing the remote message.
func describeFailure(err error) string {
	if hint, ok := remoteErrorHints[bus.RemoteErrorName(err)]; ok {
		return hint
	}
	return err.Error()
}

// unitName appends ".service" to names that carry no unit type suffix.
func unitName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	for _, suffix := range unitTypes {
		if strings.HasSuffix(name, suffix) {
			return name
		}
	}
	return name + ".service"
}
