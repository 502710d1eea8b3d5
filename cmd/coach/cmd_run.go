package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coach/pkg/engine"
)

// runFlags override [engine] settings for one run.
type runFlags struct {
	maxSeconds int
	tickMillis int
	maxPerHour int
	noPlanner  bool
}

// newRunCmd creates the "coach run" subcommand.
func newRunCmd(a *app) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the coordination engine in the foreground",
		Long: "Runs the engine tick loop until interrupted or until --max-seconds elapse.\n" +
			"Only one engine may run per coach home; the PID file guards it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("max-seconds") {
				a.settings.Engine.MaxSeconds = f.maxSeconds
			}
			if flags.Changed("tick-ms") {
				a.settings.Engine.TickMillis = f.tickMillis
			}
			if flags.Changed("max-per-hour") {
				a.settings.Engine.MaxPerHour = f.maxPerHour
			}
			if err := a.settings.Validate(); err != nil {
				return err
			}
			return runEngine(cmd, a, f.noPlanner)
		},
	}

	cmd.Flags().IntVar(&f.maxSeconds, "max-seconds", 0, "stop after this many seconds (0 runs until interrupted)")
	cmd.Flags().IntVar(&f.tickMillis, "tick-ms", 500, "tick period in milliseconds")
	cmd.Flags().IntVar(&f.maxPerHour, "max-per-hour", 0, "hourly cap on planner nudges (0 disables)")
	cmd.Flags().BoolVar(&f.noPlanner, "no-planner", false, "do not call the planning agent")

	return cmd
}

func runEngine(cmd *cobra.Command, a *app, noPlanner bool) error {
	log, err := a.logger()
	if err != nil {
		return err
	}

	pf := pidFile(a.paths.PIDPath)
	state, pid, err := pf.state()
	if err != nil {
		return err
	}
	if state == engineRunning {
		return fmt.Errorf("engine already running (PID %d)", pid)
	}
	if err := pf.write(os.Getpid()); err != nil {
		return err
	}
	ctx, release := pf.hold(cmd.Context())
	defer release()

	store, err := openStore(ctx, a.settings.Store.Backend, a.paths)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	collab := buildCollaborators(a.settings, noPlanner, log)
	defer collab.close()

	log.Info("starting engine",
		zap.String("home", a.paths.Home),
		zap.String("store", a.settings.Store.Backend),
		zap.Bool("planner", collab.planner != nil),
		zap.Int("pid", os.Getpid()))

	eng := engine.New(engineConfig(a.paths, a.settings.Engine), collab.deps(store, log))
	return eng.Run(ctx)
}
