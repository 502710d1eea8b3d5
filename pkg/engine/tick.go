package engine

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"coach/pkg/protocol"
	"coach/pkg/schedule"
)

// Tick runs one pass of the engine:
//  1. drain overlay actions (even while paused)
//  2. reopen streams on day rollover
//  3. idle while paused
//  4. advance block, habit and drift machines when today's schedule exists
//  5. run the alignment flow instead of event handling when no schedule
//     exists for today
//  6. tail events and dispatch them under the policy
//
// Errors are logged; nothing here is fatal. A tick always finishes the
// batch it read: cancellation of ctx is observed by Run between ticks, and
// planner calls are bounded by their own timeout.
func (e *Engine) Tick(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	now := e.nowFunc()
	if e.streams == nil {
		e.checkRollover(ctx, now)
		e.restorePause(ctx)
	}

	e.drainActions(ctx, now)
	e.checkRollover(ctx, now)

	if e.policy.IsPaused(now) {
		return
	}

	if schedule.NeedsAlignment(e.cfg.Paths.SchedulePath, now) {
		e.alignmentPhase(ctx, now)
		return
	}
	sched, err := schedule.Read(e.cfg.Paths.SchedulePath)
	if err != nil {
		e.log.Warn("schedule unreadable", zap.String("path", e.cfg.Paths.SchedulePath), zap.Error(err))
		return
	}
	e.statePhase(ctx, sched, now)
	e.eventPhase(ctx, now)
}

// restorePause loads a persisted pause window.
func (e *Engine) restorePause(ctx context.Context) {
	p, found := loadDoc[protocol.PauseState](ctx, e, protocol.KeyPause)
	if found && !p.PauseUntil.IsZero() {
		e.policy.SetPauseUntil(p.PauseUntil.Time)
	}
}

// alignmentPending reports whether an alignment is in progress with no
// schedule on disk; the run budget is extended while it is.
func (e *Engine) alignmentPending(ctx context.Context) bool {
	if _, err := os.Stat(e.cfg.Paths.SchedulePath); err == nil {
		return false
	}
	_, found := loadDoc[protocol.AlignmentState](ctx, e, protocol.KeyAlignment)
	return found
}

// budgetExceeded implements the max-runtime rule. It returns the (possibly
// reset) start time and whether Run should stop.
func (e *Engine) budgetExceeded(ctx context.Context, start, now time.Time) (time.Time, bool) {
	if e.cfg.MaxRuntime <= 0 || now.Sub(start) < e.cfg.MaxRuntime {
		return start, false
	}
	if e.alignmentPending(ctx) {
		e.log.Info("run budget extended while alignment is pending")
		return now, false
	}
	return start, true
}
