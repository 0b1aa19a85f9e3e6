package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plexsphere/servicectl/internal/bus"
	"github.com/plexsphere/servicectl/internal/config"
	"github.com/plexsphere/servicectl/internal/fsutil"
)

var (
	initForce   bool
	initDomains []string
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default configuration file",
	Long:  "Write a commented configuration file with the built-in defaults to the --config path.",
	Args:  cobra.NoArgs,
	RunE:  runInitConfig,
}

func init() {
	initConfigCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	initConfigCmd.Flags().StringSliceVar(&initDomains, "domains", nil, "buses to query (system, session)")
	rootCmd.AddCommand(initConfigCmd)
}

func runInitConfig(cmd *cobra.Command, _ []string) error {
	for _, name := range initDomains {
		if _, err := bus.ParseDomain(name); err != nil {
			return fmt.Errorf("servicectl init-config: %w", err)
		}
	}
	if _, err := os.Stat(cfgFile); err == nil && !initForce {
		return fmt.Errorf("servicectl init-config: %s already exists (use --force to overwrite)", cfgFile)
	}
	if err := fsutil.WriteFileAtomic(cfgFile, []byte(config.GenerateDefault(initDomains)), 0o644); err != nil {
		return fmt.Errorf("servicectl init-config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgFile)
	return nil
}
