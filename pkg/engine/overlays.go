package engine

import (
	"time"

	"go.uber.org/zap"

	"coach/pkg/dispatch"
	"coach/pkg/protocol"
	"coach/pkg/schedule"
)

// writeOverlay stamps cmd with a command id, timestamp and source and
// writes it to the slot.
func (e *Engine) writeOverlay(cmd protocol.OverlayCommand, now time.Time) {
	cmd.CmdID = e.newID()
	if cmd.TS.IsZero() {
		cmd.TS = protocol.At(now)
	}
	if cmd.Source == "" {
		cmd.Source = protocol.SourceRunner
	}
	if err := dispatch.WriteOverlay(e.streams.slot, cmd); err != nil {
		e.log.Warn("write overlay", zap.String("headline", cmd.Headline), zap.Error(err))
		return
	}
	e.log.Info("overlay queued",
		zap.String("cmd_id", cmd.CmdID),
		zap.String("event_type", string(cmd.EventType)),
		zap.String("level", string(cmd.Level)),
		zap.String("headline", cmd.Headline))
}

// blockStartOverlay is the banner shown when a block begins.
func blockStartOverlay(b schedule.Block, sourceEventID string) protocol.OverlayCommand {
	cmd := protocol.OverlayCommand{
		SourceEventID: sourceEventID,
		EventType:     protocol.EventBlockStart,
		Level:         protocol.LevelA,
		StyleID:       protocol.StyleCalm,
		BlockID:       b.ID,
		BlockName:     b.Title,
	}
	if b.IsHabit() {
		cmd.Headline = "Do it now"
		cmd.HumanLine = orDefault(b.Title, "Habit")
		cmd.NextAction = orDefault(b.Intent, "Do it now")
		return cmd
	}
	cmd.Headline = "Start now"
	cmd.HumanLine = "Begin " + orDefault(b.Title, "work")
	cmd.NextAction = orDefault(b.Intent, "Start now")
	return cmd
}

// bypassOverlay renders the deterministic overlay for OFF_SCHEDULE,
// HABIT_DUE and HABIT_ESCALATE.
func bypassOverlay(ev protocol.Event) (protocol.OverlayCommand, bool) {
	cmd := protocol.OverlayCommand{
		SourceEventID: ev.EventID,
		EventType:     ev.Type,
		BlockID:       ev.BlockID,
		BlockName:     ev.BlockName,
	}
	switch ev.Type {
	case protocol.EventOffSchedule:
		cmd.Level = protocol.LevelB
		cmd.StyleID = protocol.StyleStrict
		cmd.Headline = "Off schedule"
		cmd.HumanLine = "You drifted off the current block."
		cmd.Diagnosis = "Resume the scheduled task."
		cmd.NextAction = "Return to the planned work block now."
	case protocol.EventHabitDue:
		cmd.Level = protocol.LevelA
		cmd.StyleID = protocol.StyleCalm
		cmd.Headline = orDefault(ev.HabitKind, "Habit")
		cmd.HumanLine = orDefault(ev.Message, "Habit due")
		cmd.Diagnosis = "Quick habit now."
		cmd.NextAction = orDefault(ev.NextAction, "Do it now")
	case protocol.EventHabitEscalate:
		cmd.Level = protocol.LevelB
		cmd.StyleID = protocol.StyleStrict
		cmd.Headline = "Habit overdue"
		cmd.HumanLine = orDefault(ev.Message, "Habit overdue")
		cmd.Diagnosis = "Do the habit now."
		cmd.NextAction = orDefault(ev.NextAction, "Do it now")
	default:
		return protocol.OverlayCommand{}, false
	}
	return cmd, true
}

// recoveryOverlay is shown when a schedule was revised without a usable
// planner overlay.
func recoveryOverlay(sourceEventID string) protocol.OverlayCommand {
	return protocol.OverlayCommand{
		SourceEventID: sourceEventID,
		EventType:     protocol.EventScheduleUpdated,
		Level:         protocol.LevelB,
		StyleID:       protocol.StyleCalm,
		Headline:      "New plan accepted",
		HumanLine:     "Schedule updated.",
		NextAction:    "Resume the next block.",
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
