package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coach/internal/appversion"
	"coach/pkg/config"
	"coach/pkg/logging"
)

// app carries what every subcommand needs: resolved paths, the settings
// file and a lazily built logger.
type app struct {
	home    string
	verbose bool

	paths    *config.Paths
	settings config.File
	log      *zap.Logger
}

// setup resolves paths and loads coach.toml. It runs before every
// subcommand.
func (a *app) setup() error {
	if a.home != "" {
		a.paths = config.PathsFor(a.home)
	} else {
		p, err := config.ResolvePaths()
		if err != nil {
			return fmt.Errorf("resolve paths: %w", err)
		}
		a.paths = p
	}
	settings, err := config.Load(a.paths.ConfigPath)
	if err != nil {
		return err
	}
	a.settings = settings
	return nil
}

// logger builds the process logger on first use.
func (a *app) logger() (*zap.Logger, error) {
	if a.log != nil {
		return a.log, nil
	}
	l, err := logging.New(logging.Options{Verbose: a.verbose})
	if err != nil {
		return nil, err
	}
	a.log = l
	return l, nil
}

func (a *app) sync() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// newRootCmd creates the root coach command with all subcommands attached.
func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Focus coach coordination engine",
		Long: "coach runs the focus coordination engine: it tracks the day's schedule,\n" +
			"watches the activity and event logs, and turns them into overlays,\n" +
			"HUD text and speech.",
		Version:       fmt.Sprintf("coach %s", appversion.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.sync()
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.PersistentFlags().StringVar(&a.home, "home", "", "coach home directory (default $COACH_HOME or ~/.coach)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newRunCmd(a),
		newStopCmd(a),
		newStatusCmd(a),
		newActCmd(a),
		newScheduleCmd(a),
		newPruneCmd(a),
		newLogsCmd(a),
		newOverlayCmd(a),
		newVersionCmd(),
	)

	return cmd
}

// newVersionCmd creates the "coach version" subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the coach version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "coach %s\n", appversion.String())
		},
	}
}
