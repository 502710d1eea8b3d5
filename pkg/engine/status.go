package engine

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"coach/pkg/config"
	"coach/pkg/eventlog"
	"coach/pkg/protocol"
	"coach/pkg/schedule"
	"coach/pkg/statestore"
)

// Status is a read-only snapshot of what the engine knows, for display.
type Status struct {
	Now            time.Time
	Schedule       *schedule.Schedule
	NeedsAlignment bool
	Current        *schedule.Block
	Next           *schedule.Block
	Alignment      protocol.AlignmentState
	Habit          protocol.HabitState
	OffSchedule    protocol.OffScheduleState
	Pause          protocol.PauseState
	LastActivity   *protocol.Activity
	Foreground     *protocol.NowSnapshot
	LastOverlay    *protocol.OverlayCommand
}

// Paused reports whether a pause window covers s.Now.
func (s Status) Paused() bool {
	return !s.Pause.PauseUntil.IsZero() && s.Now.Before(s.Pause.PauseUntil.Time)
}

// ReadStatus gathers a Status from disk and the store. Missing or
// malformed pieces are left zero.
func ReadStatus(ctx context.Context, paths config.Paths, store statestore.Store, now time.Time) Status {
	st := Status{Now: now}
	st.NeedsAlignment = schedule.NeedsAlignment(paths.SchedulePath, now)
	if s, err := schedule.Read(paths.SchedulePath); err == nil {
		st.Schedule = s
		if !st.NeedsAlignment {
			st.Current = schedule.Resolve(s, now)
			for _, b := range schedule.Remaining(s, now) {
				start, err := schedule.ParseClock(b.Start, now)
				if err == nil && start.After(now) {
					st.Next = &b
					break
				}
			}
		}
	}

	_, _ = store.Get(ctx, protocol.KeyAlignment, &st.Alignment)
	_, _ = store.Get(ctx, protocol.KeyHabit, &st.Habit)
	_, _ = store.Get(ctx, protocol.KeyOffSchedule, &st.OffSchedule)
	_, _ = store.Get(ctx, protocol.KeyPause, &st.Pause)

	var a protocol.Activity
	if found, err := eventlog.LastRecord(eventlog.DailyPath(paths.LogsDir, protocol.StreamActivity, now), &a); err == nil && found {
		st.LastActivity = &a
	}
	if data, err := os.ReadFile(paths.NowPath()); err == nil { //nolint:gosec // path is a resolved coach path
		var snap protocol.NowSnapshot
		if json.Unmarshal(data, &snap) == nil && snap.App != "" {
			st.Foreground = &snap
		}
	}
	var cmd protocol.OverlayCommand
	if found, err := eventlog.LastRecord(eventlog.DailyPath(paths.LogsDir, protocol.StreamOverlayCmd, now), &cmd); err == nil && found {
		st.LastOverlay = &cmd
	}
	return st
}
