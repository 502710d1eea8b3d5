// Package engine is the coordination engine: a single-goroutine tick loop
// that drains overlay actions, advances the block, habit and drift state
// machines, runs the alignment flow, and turns tailed events into overlay,
// HUD and speech output under the dispatch policy.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coach/pkg/config"
	"coach/pkg/dispatch"
	"coach/pkg/logging"
	"coach/pkg/planner"
	"coach/pkg/policy"
	"coach/pkg/schedule"
	"coach/pkg/statemachine"
	"coach/pkg/statestore"
)

// Config holds Engine configuration. Durations where zero is meaningful
// (Cooldown, AlignMinInterval, MaxRuntime) and the counters MaxPerHour and
// LogKeepDays are used as given: zero disables them. DefaultConfig returns
// the stock values for all of them.
type Config struct {
	Paths config.Paths

	Tick             time.Duration // Tick period (default 500ms).
	Cooldown         time.Duration // Minimum gap between planner nudges.
	AlignMinInterval time.Duration // Re-prompt suppression for one question.
	MaxPerHour       int           // Hourly nudge cap.
	PauseFor         time.Duration // pause_15 window (default 15m).
	MaxRuntime       time.Duration // Run budget.
	LogKeepDays      int           // Retention for day-partitioned logs.
	HabitEscalate    time.Duration // Habit escalation delay (default 120s).
	RecoverAfter     time.Duration // Drift recovery threshold (default 600s).
	FallbackShift    time.Duration // Recovery fallback shift (default 30m).
	ActivityTail     int           // Activity samples handed to the planner (default 5).
	WakeDebounce     time.Duration // Minimum gap between watcher-triggered ticks (default 50ms).
}

// DefaultConfig returns the stock configuration for paths.
func DefaultConfig(paths config.Paths) Config {
	return Config{
		Paths:            paths,
		Tick:             500 * time.Millisecond,
		Cooldown:         60 * time.Second,
		AlignMinInterval: 10 * time.Second,
		PauseFor:         15 * time.Minute,
		LogKeepDays:      7,
		HabitEscalate:    statemachine.DefaultHabitEscalation,
		RecoverAfter:     statemachine.DefaultRecoverAfter,
		FallbackShift:    schedule.DefaultShift,
		ActivityTail:     5,
		WakeDebounce:     50 * time.Millisecond,
	}
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Tick <= 0 {
		out.Tick = 500 * time.Millisecond
	}
	if out.PauseFor <= 0 {
		out.PauseFor = 15 * time.Minute
	}
	if out.HabitEscalate <= 0 {
		out.HabitEscalate = statemachine.DefaultHabitEscalation
	}
	if out.RecoverAfter <= 0 {
		out.RecoverAfter = statemachine.DefaultRecoverAfter
	}
	if out.FallbackShift <= 0 {
		out.FallbackShift = schedule.DefaultShift
	}
	if out.ActivityTail <= 0 {
		out.ActivityTail = 5
	}
	if out.WakeDebounce <= 0 {
		out.WakeDebounce = 50 * time.Millisecond
	}
	return out
}

// Deps are the collaborators the engine calls out to. Store is required;
// the rest may be nil.
type Deps struct {
	Store    statestore.Store
	Planner  planner.Planner
	Speaker  dispatch.Speaker
	Notifier dispatch.Notifier
	Logger   *zap.Logger
}

// Engine is the coordination engine. It is driven by Run, or by Tick in
// tests, from a single goroutine.
type Engine struct {
	cfg      Config
	store    statestore.Store
	planner  planner.Planner
	speaker  dispatch.Speaker
	notifier dispatch.Notifier
	log      *zap.Logger
	policy   *policy.Policy

	streams   *streams
	cursors   map[string]int64
	cursorDay string

	// nowFunc allows tests to control time.
	nowFunc func() time.Time
	// newID allows tests to control event and command ids.
	newID func() string
}

// New creates an Engine. It does not touch the filesystem until the first
// Tick or Run.
func New(cfg Config, deps Deps) *Engine {
	resolved := cfg.withDefaults()
	return &Engine{
		cfg:      resolved,
		store:    deps.Store,
		planner:  deps.Planner,
		speaker:  deps.Speaker,
		notifier: deps.Notifier,
		log:      logging.OrNop(deps.Logger),
		policy: policy.New(policy.Config{
			Cooldown:   resolved.Cooldown,
			MaxPerHour: resolved.MaxPerHour,
			PauseFor:   resolved.PauseFor,
		}),
		nowFunc: time.Now,
		newID:   uuid.NewString,
	}
}

// loadDoc reads key into a fresh T. Absent and malformed documents both
// yield the zero value; malformed ones are logged.
func loadDoc[T any](ctx context.Context, e *Engine, key string) (T, bool) {
	var v T
	found, err := e.store.Get(ctx, key, &v)
	if err != nil {
		var zero T
		if statestore.IsMalformed(err) {
			e.log.Warn("malformed state document, using default", zap.String("key", key), zap.Error(err))
		} else {
			e.log.Warn("read state document", zap.String("key", key), zap.Error(err))
		}
		return zero, false
	}
	return v, found
}

func (e *Engine) saveDoc(ctx context.Context, key string, v any) {
	if err := e.store.Put(ctx, key, v); err != nil {
		e.log.Warn("write state document", zap.String("key", key), zap.Error(err))
	}
}

func (e *Engine) deleteDoc(ctx context.Context, key string) {
	if err := e.store.Delete(ctx, key); err != nil {
		e.log.Warn("delete state document", zap.String("key", key), zap.Error(err))
	}
}
