package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"coach/pkg/eventlog"
	"coach/pkg/protocol"
	"coach/pkg/schedule"
	"coach/pkg/statemachine"
)

// statePhase advances the block, habit and drift machines against today's
// schedule.
func (e *Engine) statePhase(ctx context.Context, sched *schedule.Schedule, now time.Time) {
	cur := schedule.Resolve(sched, now)

	prev, _ := loadDoc[protocol.CurrentBlockState](ctx, e, protocol.KeyCurrentBlock)
	res := statemachine.StepBlock(prev, cur, now)
	var startID string
	for _, ev := range res.Events {
		ev = e.emit(ev)
		if ev.Type == protocol.EventBlockStart {
			startID = ev.EventID
		}
	}
	if res.Started != nil {
		e.writeOverlay(blockStartOverlay(*res.Started, startID), now)
	}
	if res.Changed {
		e.saveDoc(ctx, protocol.KeyCurrentBlock, res.State)
	}

	if cur == nil {
		return
	}
	switch {
	case cur.IsHabit():
		habit, _ := loadDoc[protocol.HabitState](ctx, e, protocol.KeyHabit)
		next, evs, changed := statemachine.StepHabit(habit, *cur, now, e.cfg.HabitEscalate)
		for _, ev := range evs {
			e.emit(ev)
		}
		if changed {
			e.saveDoc(ctx, protocol.KeyHabit, next)
		}

	case cur.Type.IsWork():
		last := e.lastActivity()
		off, _ := loadDoc[protocol.OffScheduleState](ctx, e, protocol.KeyOffSchedule)
		next, evs, changed := statemachine.StepDrift(off, *cur, last, now, e.cfg.RecoverAfter)
		for _, ev := range evs {
			e.emit(ev)
		}
		if changed {
			e.saveDoc(ctx, protocol.KeyOffSchedule, next)
		}
	}
}

// lastActivity returns the newest activity sample, or nil when there is
// none or it does not decode.
func (e *Engine) lastActivity() *protocol.Activity {
	var a protocol.Activity
	found, err := eventlog.LastRecord(e.streams.activity, &a)
	if err != nil {
		e.log.Debug("last activity unreadable", zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}
	return &a
}
