package statemachine

import (
	"time"

	"coach/pkg/protocol"
	"coach/pkg/schedule"
)

// DefaultHabitEscalation is how long a habit may stay undone before it is
// escalated.
const DefaultHabitEscalation = 120 * time.Second

// StepHabit advances the habit timer for the current habit block. A block
// the tracker has not seen resets it and emits HABIT_DUE; an undone,
// unescalated habit that has been due for at least escalateAfter emits
// HABIT_ESCALATE once. changed reports whether the state must be saved.
func StepHabit(prev protocol.HabitState, cur schedule.Block, now time.Time, escalateAfter time.Duration) (next protocol.HabitState, events []protocol.Event, changed bool) {
	if escalateAfter <= 0 {
		escalateAfter = DefaultHabitEscalation
	}
	if prev.BlockID != cur.ID {
		next = protocol.HabitState{BlockID: cur.ID, DueAt: protocol.At(now)}
		return next, []protocol.Event{habitEvent(protocol.EventHabitDue, cur, cur.Title+" now.", now)}, true
	}
	if prev.Done || prev.Escalated || prev.DueAt.IsZero() {
		return prev, nil, false
	}
	if now.Sub(prev.DueAt.Time) < escalateAfter {
		return prev, nil, false
	}
	next = prev
	next.Escalated = true
	return next, []protocol.Event{habitEvent(protocol.EventHabitEscalate, cur, cur.Title+" overdue.", now)}, true
}

func habitEvent(typ protocol.EventType, b schedule.Block, msg string, now time.Time) protocol.Event {
	next := b.Intent
	if next == "" {
		next = "Do it now"
	}
	return protocol.Event{
		TS:         protocol.At(now),
		Type:       typ,
		BlockID:    b.ID,
		BlockName:  b.Title,
		Source:     protocol.SourceRunner,
		HabitKind:  b.HabitKind,
		Message:    msg,
		NextAction: next,
	}
}

// Acknowledge handles a back_on_track action. When the action names the
// tracked habit, the current block is a habit block, and the habit is not
// yet done, it marks the habit done and emits HABIT_DONE. Any other
// acknowledgement emits NUDGE_ACK and leaves the state alone.
func Acknowledge(state protocol.HabitState, cur *schedule.Block, actionBlockID string, now time.Time) (next protocol.HabitState, ev protocol.Event, done bool) {
	ev = protocol.Event{TS: protocol.At(now), Source: protocol.SourceOverlay}
	if cur != nil && cur.IsHabit() && actionBlockID != "" && actionBlockID == state.BlockID && !state.Done {
		state.Done = true
		ev.Type = protocol.EventHabitDone
		ev.BlockID = cur.ID
		ev.BlockName = cur.Title
		ev.HabitKind = cur.HabitKind
		return state, ev, true
	}
	ev.Type = protocol.EventNudgeAck
	ev.BlockID = actionBlockID
	return state, ev, false
}
