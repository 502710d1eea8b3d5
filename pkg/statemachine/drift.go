package statemachine

import (
	"time"

	"coach/pkg/protocol"
	"coach/pkg/schedule"
)

// DefaultRecoverAfter is how long continuous off-task drift in one block
// lasts before a recovery is triggered.
const DefaultRecoverAfter = 600 * time.Second

// StepDrift advances off-schedule tracking for the current work block from
// the latest activity sample. An off_task sample in a block the tracker is
// not following starts tracking and emits OFF_SCHEDULE. Drift lasting at
// least recoverAfter emits RECOVER_TRIGGER once. An on_task sample clears
// the tracker; unsure or missing samples change nothing.
func StepDrift(prev protocol.OffScheduleState, cur schedule.Block, last *protocol.Activity, now time.Time, recoverAfter time.Duration) (next protocol.OffScheduleState, events []protocol.Event, changed bool) {
	if recoverAfter <= 0 {
		recoverAfter = DefaultRecoverAfter
	}
	if last == nil {
		return prev, nil, false
	}

	switch last.Status {
	case protocol.StatusOffTask:
		if prev.BlockID != cur.ID {
			next = protocol.OffScheduleState{
				BlockID:     cur.ID,
				Since:       protocol.At(now),
				LastEmitted: protocol.At(now),
			}
			return next, []protocol.Event{driftEvent(protocol.EventOffSchedule, cur, now)}, true
		}
		if prev.RecoverTriggered || prev.Since.IsZero() || now.Sub(prev.Since.Time) < recoverAfter {
			return prev, nil, false
		}
		next = prev
		next.RecoverTriggered = true
		next.LastEmitted = protocol.At(now)
		return next, []protocol.Event{driftEvent(protocol.EventRecoverTrigger, cur, now)}, true

	case protocol.StatusOnTask:
		if prev == (protocol.OffScheduleState{}) {
			return prev, nil, false
		}
		return protocol.OffScheduleState{}, nil, true
	}
	return prev, nil, false
}

func driftEvent(typ protocol.EventType, b schedule.Block, now time.Time) protocol.Event {
	return protocol.Event{
		TS:        protocol.At(now),
		Type:      typ,
		BlockID:   b.ID,
		BlockName: b.Title,
		Source:    protocol.SourceRunner,
	}
}
