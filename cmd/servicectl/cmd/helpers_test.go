package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/plexsphere/servicectl/internal/config"
	"github.com/plexsphere/servicectl/internal/systemd"
)

// fakeManager records control calls and serves a fixed snapshot.
type fakeManager struct {
	mu       sync.Mutex
	snapshot systemd.Snapshot
	failures map[string]error
	calls    []string
}

func (f *fakeManager) Collect(context.Context) systemd.Snapshot {
	return f.snapshot
}

func (f *fakeManager) Do(_ context.Context, action systemd.Action, unit string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, string(action)+" "+unit)
	if err, ok := f.failures[unit]; ok {
		return &systemd.ActionError{Action: action, Unit: unit, Err: err}
	}
	return nil
}

// useManager installs fake as the manager factory for the duration of the
// test and returns a pointer to the config the command built it with.
func useManager(t *testing.T, fake *fakeManager) **config.Config {
	t.Helper()
	var got *config.Config
	orig := newManager
	newManager = func(cfg *config.Config, _ *slog.Logger) serviceManager {
		got = cfg
		return fake
	}
	t.Cleanup(func() { newManager = orig })
	return &got
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// resetFlags restores every flag of c and its subcommands, including
// cobra's help and version flags, to its default and clears Changed.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args on freshly reset flags. It
// returns stdout and stderr separately.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
