// Package cli implements the ductcalc command-line interface.
//
// The commands size single ducts, repair and size whole networks imported
// from project files, terminal schedules or DXF sketches, compare sizing
// policies, manage sizing presets and keep revisions in a local design
// catalog. Every command accepts --verbose (-v) for debug logging and
// --config to point at a different preferences file.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/project"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version information displayed by --version. The main
// package calls it with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// appState is the per-invocation configuration shared by all commands.
type appState struct {
	configPath string
	config     model.AppConfig
}

func withState(ctx context.Context, s *appState) context.Context {
	return context.WithValue(ctx, configKey, s)
}

// stateFromContext returns the loaded configuration, or the defaults when
// no state was attached.
func stateFromContext(ctx context.Context) *appState {
	if s, ok := ctx.Value(configKey).(*appState); ok {
		return s
	}
	return &appState{configPath: project.DefaultConfigPath(), config: model.DefaultAppConfig()}
}

// Execute runs the ductcalc CLI until it completes or ctx is cancelled.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stderr).ExecuteContext(ctx)
}

// newRootCmd builds the command tree. Log output goes to logOut.
func newRootCmd(logOut io.Writer) *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "ductcalc",
		Short:        "ductcalc sizes and lays out rectangular duct networks",
		Long:         `ductcalc builds orthogonal supply duct networks from a terminal schedule or sketch, repairs their topology, propagates airflow from the outlets back to the inlet and sizes every run by the equal-friction method.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(logOut, level)

			cfg, err := project.LoadAppConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config %s: %w", configPath, err)
			}
			logger.Debug("config loaded", "path", configPath, "policy", cfg.Policy().String())

			ctx := withLogger(cmd.Context(), logger)
			ctx = withState(ctx, &appState{configPath: configPath, config: cfg})
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("ductcalc %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", project.DefaultConfigPath(), "preferences file")

	root.AddCommand(newSizeCmd())
	root.AddCommand(newNetworkCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newPresetsCmd())
	root.AddCommand(newCatalogCmd())
	root.AddCommand(newTemplatesCmd())
	root.AddCommand(newBackupCmd())

	return root
}
