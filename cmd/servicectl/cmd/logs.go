package cmd

import (
	"fmt"
	"os/exec"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	logsFollow bool
	logsUser   bool
	logsLines  int
)

// journalctl is the binary looked up on PATH. Tests replace it.
var journalctl = "journalctl"

var logsCmd = &cobra.Command{
	Use:   "logs UNIT",
	Short: "Show the journal of a service unit",
	Long:  "Show the journald entries of a service unit. Prints a hint if journalctl is unavailable.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "follow log output")
	logsCmd.Flags().BoolVar(&logsUser, "user", false, "read the user journal of the session service manager")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 0, "number of recent entries to show (0 shows all)")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	path, err := exec.LookPath(journalctl)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "journalctl not found; unit logs are only available through journald")
		return nil
	}

	c := exec.CommandContext(cmd.Context(), path, journalArgs(unitName(args[0]))...)
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()

	if err := c.Run(); err != nil {
		return fmt.Errorf("servicectl logs: %w", err)
	}
	return nil
}

func journalArgs(unit string) []string {
	var args []string
	if logsUser {
		args = append(args, "--user")
	}
	args = append(args, "-u", unit, "--no-pager")
	if logsLines > 0 {
		args = append(args, "-n", strconv.Itoa(logsLines))
	}
	if logsFollow {
		args = append(args, "-f")
	}
	return args
}
