// Package config resolves where coach keeps its files and loads the
// optional coach.toml settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"coach/pkg/protocol"
)

// Paths holds all resolved coach file locations.
// Use ResolvePaths() to populate it with defaults + env overrides.
type Paths struct {
	Home         string // ~/.coach or COACH_HOME
	LogsDir      string // logs/ or COACH_LOG_DIR
	StateDir     string // state/
	SchedulePath string // state/schedule.yaml or COACH_SCHEDULE
	StateDBPath  string // state.db or COACH_DB_PATH
	PIDPath      string // coach.pid or COACH_PID_PATH
	ConfigPath   string // coach.toml or COACH_CONFIG
	HUDPath      string // hud/hud.md or COACH_HUD_PATH
}

// ResolvePaths returns all coach paths, respecting env var overrides.
// Environment variables:
//   - COACH_HOME: base directory (default: ~/.coach)
//   - COACH_LOG_DIR: NDJSON stream directory (default: $COACH_HOME/logs)
//   - COACH_SCHEDULE: schedule document (default: $COACH_HOME/state/schedule.yaml)
//   - COACH_DB_PATH: SQLite state store (default: $COACH_HOME/state.db)
//   - COACH_PID_PATH: engine PID file (default: $COACH_HOME/coach.pid)
//   - COACH_CONFIG: settings file (default: $COACH_HOME/coach.toml)
//   - COACH_HUD_PATH: HUD text file (default: $COACH_HOME/hud/hud.md)
func ResolvePaths() (*Paths, error) {
	home, err := resolveHome()
	if err != nil {
		return nil, err
	}
	return PathsFor(home), nil
}

// PathsFor resolves paths under home, still honoring the per-path env
// overrides.
func PathsFor(home string) *Paths {
	stateDir := filepath.Join(home, protocol.StateDir)
	return &Paths{
		Home:         home,
		LogsDir:      resolvePathWithEnv("COACH_LOG_DIR", home, protocol.LogsDir),
		StateDir:     stateDir,
		SchedulePath: resolvePathWithEnv("COACH_SCHEDULE", stateDir, "schedule.yaml"),
		StateDBPath:  resolvePathWithEnv("COACH_DB_PATH", home, "state.db"),
		PIDPath:      resolvePathWithEnv("COACH_PID_PATH", home, "coach.pid"),
		ConfigPath:   resolvePathWithEnv("COACH_CONFIG", home, "coach.toml"),
		HUDPath:      resolvePathWithEnv("COACH_HUD_PATH", filepath.Join(home, protocol.HUDDir), "hud.md"),
	}
}

// NowPath is the sampler's latest foreground snapshot.
func (p *Paths) NowPath() string { return filepath.Join(p.StateDir, "now.json") }

// GoalsPath is the user's goals document handed to the planner.
func (p *Paths) GoalsPath() string { return filepath.Join(p.StateDir, "goals.json") }

// ScheduleBackupPath holds the schedule as it was before the last recovery.
func (p *Paths) ScheduleBackupPath() string {
	return filepath.Join(filepath.Dir(p.SchedulePath), "schedule.before.yaml")
}

// EventContextPath is the context document written before each event
// planner call.
func (p *Paths) EventContextPath() string { return filepath.Join(p.Home, "runner_context.json") }

// RecoverContextPath is the context document written before a recovery
// planner call.
func (p *Paths) RecoverContextPath() string { return filepath.Join(p.StateDir, "recover_context.json") }

// resolveHome returns COACH_HOME or ~/.coach.
func resolveHome() (string, error) {
	if v := os.Getenv("COACH_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, protocol.CoachDir), nil
}

// resolvePathWithEnv returns the path from envKey if set, otherwise joins base + suffix.
func resolvePathWithEnv(envKey, base, suffix string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return filepath.Join(base, suffix)
}
