package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"coach/pkg/config"
	"coach/pkg/dispatch"
	"coach/pkg/engine"
	"coach/pkg/planner"
	"coach/pkg/statestore"
)

// openStore opens the state store backend named in settings.
func openStore(ctx context.Context, backend string, paths *config.Paths) (statestore.Store, error) {
	switch backend {
	case "", config.BackendFile:
		return statestore.NewFileStore(paths.StateDir), nil
	case config.BackendSQLite:
		if err := os.MkdirAll(paths.Home, 0o755); err != nil {
			return nil, fmt.Errorf("create coach home: %w", err)
		}
		s, err := statestore.OpenSQLite(ctx, paths.StateDBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// engineConfig maps the [engine] settings onto an engine.Config.
func engineConfig(paths *config.Paths, s config.EngineSection) engine.Config {
	cfg := engine.DefaultConfig(*paths)
	cfg.Tick = s.Tick()
	cfg.Cooldown = s.Cooldown()
	cfg.AlignMinInterval = s.AlignMinInterval()
	cfg.MaxPerHour = s.MaxPerHour
	cfg.PauseFor = s.Pause()
	cfg.MaxRuntime = s.MaxRuntime()
	cfg.LogKeepDays = s.LogKeepDays
	cfg.HabitEscalate = s.HabitEscalate()
	cfg.RecoverAfter = s.RecoverAfter()
	return cfg
}

// collaborators are the external-process side of the engine. close stops
// the speaker goroutine.
type collaborators struct {
	planner  planner.Planner
	speaker  *dispatch.SaySpeaker
	notifier dispatch.Notifier
}

func (c collaborators) close() {
	if c.speaker != nil {
		c.speaker.Close()
	}
}

// buildCollaborators wires the planner, speaker and notifier from
// settings. Commands missing from PATH are skipped.
func buildCollaborators(settings config.File, noPlanner bool, log *zap.Logger) collaborators {
	var c collaborators
	runner := &planner.ExecCommandRunner{}

	if !noPlanner && available(settings.Planner.Command, log) {
		c.planner = planner.NewExecPlanner(settings.Planner.Command, settings.Planner.Agent, settings.Planner.Timeout(), log.Named("planner"))
	}
	if settings.Speech.Enabled && available(settings.Speech.Command, log) {
		c.speaker = dispatch.NewSaySpeaker(settings.Speech.Command, settings.Speech.Voice, settings.Speech.Rate, runner, log.Named("speech"))
	}
	if settings.Notify.Enabled {
		c.notifier = dispatch.NewDesktopNotifier(runner)
	}
	return c
}

func available(command string, log *zap.Logger) bool {
	if command == "" {
		return false
	}
	if _, err := exec.LookPath(command); err != nil {
		log.Info("command not found, disabled", zap.String("command", command))
		return false
	}
	return true
}

// deps assembles engine.Deps. A nil speaker stays a nil interface.
func (c collaborators) deps(store statestore.Store, log *zap.Logger) engine.Deps {
	d := engine.Deps{
		Store:    store,
		Planner:  c.planner,
		Notifier: c.notifier,
		Logger:   log.Named("engine"),
	}
	if c.speaker != nil {
		d.Speaker = c.speaker
	}
	return d
}
