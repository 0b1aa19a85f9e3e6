package cmd

import (
	"errors"
	"fmt"

	"github.com/coreos/go-systemd/v22/util"
	"github.com/spf13/cobra"

	"github.com/plexsphere/servicectl/internal/bus"
)

// runningSystemd reports whether systemd is PID 1. Tests replace it.
var runningSystemd = util.IsRunningSystemd

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the service managers are reachable",
	Long:  "Check that systemd is running and that each configured bus answers a unit listing.",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	healthy := true

	if runningSystemd() {
		fmt.Fprintln(w, "systemd:      running")
	} else {
		fmt.Fprintln(w, "systemd:      not running (no /run/systemd/system)")
		healthy = false
	}

	configured := make(map[bus.Domain]bool)
	for _, name := range cfg.Manager.Domains {
		if d, err := bus.ParseDomain(name); err == nil {
			configured[d] = true
		}
	}

	snap := newManager(cfg, logger).Collect(cmd.Context())
	counts := make(map[bus.Domain]int)
	for _, rec := range snap.Services {
		counts[rec.Domain]++
	}

	for _, d := range bus.Domains() {
		label := fmt.Sprintf("%s bus:", d)
		switch {
		case !configured[d]:
			fmt.Fprintf(w, "%-13s disabled in config\n", label)
		case snap.Failures[d] != nil:
			fmt.Fprintf(w, "%-13s unreachable: %v\n", label, snap.Failures[d])
			healthy = false
		default:
			fmt.Fprintf(w, "%-13s ok (%d services)\n", label, counts[d])
		}
	}

	if !healthy {
		return errors.New("servicectl doctor: problems found")
	}
	return nil
}
