package engine

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"coach/pkg/align"
	"coach/pkg/protocol"
	"coach/pkg/schedule"
	"coach/pkg/statemachine"
)

// drainActions applies every complete overlay action appended since the
// last tick.
func (e *Engine) drainActions(ctx context.Context, now time.Time) {
	lines, err := e.streams.actionsTail.Next()
	if err != nil {
		e.log.Warn("tail overlay actions", zap.Error(err))
		return
	}
	if len(lines) == 0 {
		return
	}
	for _, line := range lines {
		var a protocol.OverlayAction
		if err := json.Unmarshal(line, &a); err != nil {
			e.log.Debug("skip malformed overlay action", zap.Error(err))
			continue
		}
		e.applyAction(ctx, a, now)
	}
	e.saveCursors(ctx)
}

func (e *Engine) applyAction(ctx context.Context, a protocol.OverlayAction, now time.Time) {
	e.log.Info("overlay action", zap.String("action", string(a.Action)), zap.String("block_id", a.BlockID))
	switch a.Action {
	case protocol.ActionPause:
		until := e.policy.Pause(now)
		e.saveDoc(ctx, protocol.KeyPause, protocol.PauseState{PauseUntil: protocol.At(until)})

	case protocol.ActionAlignChoice:
		st, _ := loadDoc[protocol.AlignmentState](ctx, e, protocol.KeyAlignment)
		st = align.Apply(st, a.QuestionID, a.Value)
		e.saveDoc(ctx, protocol.KeyAlignment, st)
		e.emit(protocol.Event{
			TS:         protocol.At(now),
			Type:       protocol.EventAlignAnswer,
			Source:     protocol.SourceOverlay,
			QuestionID: a.QuestionID,
			Answer:     a.Value,
		})
		e.deleteDoc(ctx, protocol.KeyAlignPrompted)

	case protocol.ActionBackOnTrack:
		habit, _ := loadDoc[protocol.HabitState](ctx, e, protocol.KeyHabit)
		var cur *schedule.Block
		if s, err := schedule.Read(e.cfg.Paths.SchedulePath); err == nil {
			cur = schedule.Resolve(s, now)
		}
		next, ev, done := statemachine.Acknowledge(habit, cur, a.BlockID, now)
		e.emit(ev)
		if done {
			e.saveDoc(ctx, protocol.KeyHabit, next)
		}

	case protocol.ActionRecover:
		e.recover(ctx, now)

	default:
		e.log.Debug("ignore unknown overlay action", zap.String("action", string(a.Action)))
	}
}
