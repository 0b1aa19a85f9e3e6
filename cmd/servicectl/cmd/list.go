package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plexsphere/servicectl/internal/bus"
	"github.com/plexsphere/servicectl/internal/view"
)

var (
	listQuery      string
	listStatus     string
	listEnablement string
	listOutput     string
	listSystem     bool
	listUser       bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List service units",
	Long: "List the service units of the system and session service managers with their\n" +
		"activation and enablement state. A bus that cannot be reached is reported on\n" +
		"stderr and contributes no rows.",
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "only units whose name contains this text (case-insensitive)")
	listCmd.Flags().StringVar(&listStatus, "status", view.FilterAll, "only units with this status label")
	listCmd.Flags().StringVar(&listEnablement, "enablement", view.FilterAll, "only units with this enablement label")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "", "output format: auto, table, plain, json, yaml (overrides config)")
	listCmd.Flags().BoolVar(&listSystem, "system", false, "only query the system bus")
	listCmd.Flags().BoolVar(&listUser, "user", false, "only query the session bus")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	filter := view.Filter{Query: listQuery, Status: listStatus, Enablement: listEnablement}
	if err := filter.Validate(); err != nil {
		return fmt.Errorf("servicectl list: %w", err)
	}

	cfg, logger, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	switch {
	case listSystem && listUser:
		cfg.Manager.Domains = []string{string(bus.System), string(bus.Session)}
	case listSystem:
		cfg.Manager.Domains = []string{string(bus.System)}
	case listUser:
		cfg.Manager.Domains = []string{string(bus.Session)}
	}

	snap := newManager(cfg, logger).Collect(cmd.Context())
	for _, d := range bus.Domains() {
		if ferr, ok := snap.Failures[d]; ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s bus unavailable: %v\n", d, ferr)
		}
	}

	format := listOutput
	if format == "" {
		format = cfg.Output.Format
	}
	if err := view.NewRenderer(cfg.Output).Render(cmd.OutOrStdout(), format, filter.Apply(snap.Services)); err != nil {
		return fmt.Errorf("servicectl list: %w", err)
	}
	return nil
}
