package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// File mirrors coach.toml. Every field is optional; Default fills the gaps.
type File struct {
	Engine  EngineSection  `toml:"engine"`
	Store   StoreSection   `toml:"store"`
	Planner PlannerSection `toml:"planner"`
	Speech  SpeechSection  `toml:"speech"`
	Notify  NotifySection  `toml:"notify"`
}

// EngineSection holds the tick loop and dispatch limits.
type EngineSection struct {
	TickMillis              int `toml:"tick_ms"`
	CooldownSeconds         int `toml:"cooldown_seconds"`
	AlignMinIntervalSeconds int `toml:"align_min_interval_seconds"`
	MaxPerHour              int `toml:"max_per_hour"`
	PauseMinutes            int `toml:"pause_minutes"`
	MaxSeconds              int `toml:"max_seconds"`
	LogKeepDays             int `toml:"log_keep_days"`
	HabitEscalateSeconds    int `toml:"habit_escalate_seconds"`
	RecoverAfterSeconds     int `toml:"recover_after_seconds"`
}

// StoreSection selects the state store backend: "file" or "sqlite".
type StoreSection struct {
	Backend string `toml:"backend"`
}

// PlannerSection configures the external planning agent.
type PlannerSection struct {
	Command        string `toml:"command"`
	Agent          string `toml:"agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// SpeechSection configures the speak command.
type SpeechSection struct {
	Enabled bool   `toml:"enabled"`
	Command string `toml:"command"`
	Voice   string `toml:"voice"`
	Rate    int    `toml:"rate"`
}

// NotifySection toggles desktop notifications.
type NotifySection struct {
	Enabled bool `toml:"enabled"`
}

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Default returns the built-in settings.
func Default() File {
	return File{
		Engine: EngineSection{
			TickMillis:              500,
			CooldownSeconds:         60,
			AlignMinIntervalSeconds: 10,
			PauseMinutes:            15,
			LogKeepDays:             7,
			HabitEscalateSeconds:    120,
			RecoverAfterSeconds:     600,
		},
		Store:   StoreSection{Backend: BackendFile},
		Planner: PlannerSection{Command: "opencode", Agent: "coach_plan", TimeoutSeconds: 90},
		Speech:  SpeechSection{Enabled: true, Command: "say", Voice: "Fred", Rate: 175},
		Notify:  NotifySection{Enabled: true},
	}
}

// Load reads path over the defaults. A missing file yields Default().
func Load(path string) (File, error) {
	cfg := Default()
	data, err := os.ReadFile(path) //nolint:gosec // path is the resolved config location
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings that cannot work.
func (f File) Validate() error {
	switch f.Store.Backend {
	case "", BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q", f.Store.Backend)
	}
	e := f.Engine
	for name, v := range map[string]int{
		"tick_ms":                    e.TickMillis,
		"cooldown_seconds":           e.CooldownSeconds,
		"align_min_interval_seconds": e.AlignMinIntervalSeconds,
		"max_per_hour":               e.MaxPerHour,
		"pause_minutes":              e.PauseMinutes,
		"max_seconds":                e.MaxSeconds,
		"log_keep_days":              e.LogKeepDays,
		"habit_escalate_seconds":     e.HabitEscalateSeconds,
		"recover_after_seconds":      e.RecoverAfterSeconds,
	} {
		if v < 0 {
			return fmt.Errorf("engine.%s must not be negative", name)
		}
	}
	return nil
}

// Tick returns the tick period.
func (e EngineSection) Tick() time.Duration { return time.Duration(e.TickMillis) * time.Millisecond }

// Cooldown returns the minimum gap between nudges.
func (e EngineSection) Cooldown() time.Duration { return seconds(e.CooldownSeconds) }

// AlignMinInterval returns the re-prompt suppression window.
func (e EngineSection) AlignMinInterval() time.Duration { return seconds(e.AlignMinIntervalSeconds) }

// Pause returns the pause window length.
func (e EngineSection) Pause() time.Duration { return time.Duration(e.PauseMinutes) * time.Minute }

// MaxRuntime returns the run budget (zero means unlimited).
func (e EngineSection) MaxRuntime() time.Duration { return seconds(e.MaxSeconds) }

// HabitEscalate returns the habit escalation delay.
func (e EngineSection) HabitEscalate() time.Duration { return seconds(e.HabitEscalateSeconds) }

// RecoverAfter returns the drift recovery threshold.
func (e EngineSection) RecoverAfter() time.Duration { return seconds(e.RecoverAfterSeconds) }

// Timeout returns the planner call timeout.
func (p PlannerSection) Timeout() time.Duration { return seconds(p.TimeoutSeconds) }

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
