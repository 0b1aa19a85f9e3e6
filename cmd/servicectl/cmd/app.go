package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/plexsphere/servicectl/internal/bus"
	"github.com/plexsphere/servicectl/internal/config"
	"github.com/plexsphere/servicectl/internal/polkit"
	"github.com/plexsphere/servicectl/internal/systemd"
)

// serviceManager is the part of *systemd.Manager the commands use.
type serviceManager interface {
	Collect(ctx context.Context) systemd.Snapshot
	Do(ctx context.Context, action systemd.Action, unit string) error
}

// newManager wires a Manager to the real buses. Tests replace it.
var newManager = func(cfg *config.Config, logger *slog.Logger) serviceManager {
	connector := bus.NewConnector(cfg.Bus, logger)
	authorizer := polkit.NewAuthorizer(cfg.Polkit, logger)
	return systemd.NewManager(connector, authorizer, cfg.Manager, logger)
}

// bootstrap loads the configuration and builds the logger for cmd.
func bootstrap(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("servicectl %s: %w", cmd.Name(), err)
	}
	return cfg, setupLogger(cfg.LogLevel, cmd.ErrOrStderr()), nil
}

// loadConfig parses --config. A missing file at the default path yields the
// defaults; a missing file named explicitly is an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.ParseConfig(cfgFile)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func setupLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
