// Package policy decides which events may turn into user-facing nudges.
package policy

import (
	"time"

	"coach/pkg/protocol"
)

// Window is the span of the sliding rate cap.
const Window = time.Hour

// Config holds the dispatch limits. Zero values disable a limit.
type Config struct {
	Cooldown   time.Duration
	MaxPerHour int
	PauseFor   time.Duration
}

// Verdict is the outcome of Check.
type Verdict int

// Verdicts.
const (
	Allow Verdict = iota
	Paused
	CoolingDown
	RateLimited
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case Paused:
		return "paused"
	case CoolingDown:
		return "cooldown"
	case RateLimited:
		return "rate_limited"
	}
	return "unknown"
}

// Policy tracks pause, cooldown and the hourly nudge window. It is owned by
// the engine's tick goroutine and is not safe for concurrent use.
type Policy struct {
	cfg        Config
	pauseUntil time.Time
	lastNudge  time.Time
	nudges     []time.Time
	persists   int
}

// New returns a Policy with no pause and no recorded nudges.
func New(cfg Config) *Policy {
	return &Policy{cfg: cfg}
}

// Pause starts a pause window of cfg.PauseFor from now and returns its end.
func (p *Policy) Pause(now time.Time) time.Time {
	p.pauseUntil = now.Add(p.cfg.PauseFor)
	return p.pauseUntil
}

// SetPauseUntil restores a persisted pause window.
func (p *Policy) SetPauseUntil(t time.Time) { p.pauseUntil = t }

// IsPaused reports whether now falls inside the pause window.
func (p *Policy) IsPaused(now time.Time) bool {
	return !p.pauseUntil.IsZero() && now.Before(p.pauseUntil)
}

// Bypass reports whether t is rendered deterministically without
// consulting the planner or the limits.
func Bypass(t protocol.EventType) bool {
	switch t {
	case protocol.EventOffSchedule, protocol.EventHabitDue, protocol.EventHabitEscalate:
		return true
	}
	return false
}

// Check applies cooldown and the hourly cap to a candidate nudge at now.
// Entries older than Window are evicted on every call.
func (p *Policy) Check(now time.Time) Verdict {
	if p.IsPaused(now) {
		return Paused
	}
	if p.cfg.Cooldown > 0 && !p.lastNudge.IsZero() && now.Sub(p.lastNudge) < p.cfg.Cooldown {
		return CoolingDown
	}
	p.evict(now)
	if p.cfg.MaxPerHour > 0 && len(p.nudges) >= p.cfg.MaxPerHour {
		return RateLimited
	}
	return Allow
}

func (p *Policy) evict(now time.Time) {
	i := 0
	for i < len(p.nudges) && now.Sub(p.nudges[i]) > Window {
		i++
	}
	if i > 0 {
		p.nudges = append(p.nudges[:0], p.nudges[i:]...)
	}
}

// RecordNudge counts a delivered nudge.
func (p *Policy) RecordNudge(now time.Time) {
	p.lastNudge = now
	p.nudges = append(p.nudges, now)
}

// Observe updates the drift-persist streak. DRIFT_START and BLOCK_START
// end a streak.
func (p *Policy) Observe(t protocol.EventType) {
	switch t {
	case protocol.EventDriftPersist:
		p.persists++
	case protocol.EventDriftStart, protocol.EventBlockStart:
		p.persists = 0
	}
}

// ForceOverlay applies the drift overrides to a planner overlay: drift
// events are always level B, and a repeated DRIFT_PERSIST switches to the
// pattern_break style. Call Observe for the event first.
func (p *Policy) ForceOverlay(t protocol.EventType, cmd *protocol.OverlayCommand) {
	if !t.IsDrift() {
		return
	}
	cmd.Level = protocol.LevelB
	if t == protocol.EventDriftPersist && p.persists >= 2 {
		cmd.StyleID = protocol.StylePatternBreak
	}
}
