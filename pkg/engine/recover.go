package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"coach/pkg/planner"
	"coach/pkg/protocol"
	"coach/pkg/schedule"
)

// recoverContext is the context document handed to the planner for a
// recovery.
type recoverContext struct {
	Now              protocol.Timestamp         `json:"now"`
	RemainingBlocks  []schedule.Block           `json:"remaining_blocks"`
	ActivityTail     []protocol.Activity        `json:"activity_tail"`
	OffScheduleState protocol.OffScheduleState  `json:"off_schedule_state"`
	LastHabit        protocol.HabitState        `json:"last_habit"`
	CurrentBlock     protocol.CurrentBlockState `json:"current_block"`
}

// recover asks the planner for a revised schedule and falls back to
// shifting the remaining blocks. A new schedule is backed up, written, and
// announced with SCHEDULE_UPDATED plus an overlay.
func (e *Engine) recover(ctx context.Context, now time.Time) {
	path := e.cfg.Paths.SchedulePath
	before, err := os.ReadFile(path) //nolint:gosec // configured schedule path
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		e.log.Warn("read schedule for recovery", zap.Error(err))
	}
	current := &schedule.Schedule{}
	if len(before) > 0 {
		if s, err := schedule.Parse(before); err == nil {
			current = s
		}
	}

	off, _ := loadDoc[protocol.OffScheduleState](ctx, e, protocol.KeyOffSchedule)
	habit, _ := loadDoc[protocol.HabitState](ctx, e, protocol.KeyHabit)
	block, _ := loadDoc[protocol.CurrentBlockState](ctx, e, protocol.KeyCurrentBlock)
	remaining := schedule.Remaining(current, now)
	if remaining == nil {
		remaining = []schedule.Block{}
	}
	doc := recoverContext{
		Now:              protocol.At(now),
		RemainingBlocks:  remaining,
		ActivityTail:     e.activityTail(),
		OffScheduleState: off,
		LastHabit:        habit,
		CurrentBlock:     block,
	}
	if err := writeJSON(e.cfg.Paths.RecoverContextPath(), doc); err != nil {
		e.log.Warn("write recover context", zap.Error(err))
	}

	var resp *planner.Response
	if e.planner != nil {
		resp, err = e.planner.Plan(ctx, planner.Request{
			Message: planner.RecoverMessage,
			Files: existing(
				path,
				e.cfg.Paths.RecoverContextPath(),
				e.cfg.Paths.NowPath(),
				e.cfg.Paths.GoalsPath(),
			),
		})
		if err != nil {
			e.log.Info("recovery planner unavailable, using fallback", zap.Error(err))
		}
	}

	revised := e.acceptRevision(resp, now)
	if revised == nil && len(current.Blocks) > 0 {
		revised = schedule.FallbackShift(current, now, e.cfg.FallbackShift)
		resp = nil
		e.log.Info("recovery fallback shift", zap.Duration("shift", e.cfg.FallbackShift))
	}
	if revised == nil {
		e.log.Info("recovery produced no schedule")
		return
	}

	if err := writeFile(e.cfg.Paths.ScheduleBackupPath(), before); err != nil {
		e.log.Warn("back up schedule", zap.Error(err))
	}
	if err := schedule.Write(path, revised); err != nil {
		e.log.Warn("write revised schedule", zap.Error(err))
		return
	}
	// Today has a schedule now; an unfinished alignment is void.
	e.deleteDoc(ctx, protocol.KeyAlignment)
	e.deleteDoc(ctx, protocol.KeyAlignPrompted)
	ev := e.emit(protocol.Event{TS: protocol.At(now), Type: protocol.EventScheduleUpdated})

	cmd := recoveryOverlay(ev.EventID)
	if resp != nil && resp.Overlay != nil {
		cmd = resp.Overlay.Command()
		cmd.SourceEventID = ev.EventID
		cmd.EventType = protocol.EventScheduleUpdated
	}
	e.writeOverlay(cmd, now)
}

// acceptRevision returns the planner's revised schedule when it parses,
// validates, and is for today. An empty day is taken to mean today.
func (e *Engine) acceptRevision(resp *planner.Response, now time.Time) *schedule.Schedule {
	if resp == nil || resp.RevisedScheduleYAML == "" {
		return nil
	}
	s, err := schedule.Parse([]byte(resp.RevisedScheduleYAML))
	if err != nil {
		e.log.Warn("planner schedule rejected", zap.Error(err))
		return nil
	}
	if s.Day == "" {
		s.Day = now.Format(schedule.DayLayout)
	}
	if s.Timezone == "" {
		s.Timezone = schedule.DefaultTimezone
	}
	if err := s.Validate(); err != nil {
		e.log.Warn("planner schedule rejected", zap.Error(err))
		return nil
	}
	if !s.IsToday(now) {
		e.log.Warn("planner schedule rejected", zap.String("day", s.Day))
		return nil
	}
	return s
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // context documents are read by the planner process
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
