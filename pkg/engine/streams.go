package engine

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"coach/pkg/eventlog"
	"coach/pkg/protocol"
)

// streams holds one day's stream paths and the two tailers the engine
// reads: the event log and the overlay action log.
type streams struct {
	day      string
	events   string
	activity string
	actions  string
	speech   string
	slot     eventlog.CommandSlot

	eventsTail  *eventlog.Tailer
	actionsTail *eventlog.Tailer
}

func newStreams(logsDir string, now time.Time) *streams {
	s := &streams{
		day:      now.Format(eventlog.DayLayout),
		events:   eventlog.DailyPath(logsDir, protocol.StreamEvents, now),
		activity: eventlog.DailyPath(logsDir, protocol.StreamActivity, now),
		actions:  eventlog.DailyPath(logsDir, protocol.StreamOverlayActions, now),
		speech:   eventlog.DailyPath(logsDir, protocol.StreamSpeech, now),
		slot: eventlog.CommandSlot{
			SlotPath:    eventlog.DailyPath(logsDir, protocol.StreamOverlayCmd, now),
			HistoryPath: eventlog.DailyPath(logsDir, protocol.StreamOverlayHistory, now),
		},
	}
	s.eventsTail = eventlog.NewTailer(s.events, 0)
	s.actionsTail = eventlog.NewTailer(s.actions, 0)
	return s
}

// openDay points the engine at now's streams. Tailers resume from the
// persisted cursors when a cursor exists for the same file and does not
// exceed its size; otherwise they start at 0. Trackers left from another
// day are cleared.
func (e *Engine) openDay(ctx context.Context, now time.Time) {
	e.streams = newStreams(e.cfg.Paths.LogsDir, now)
	for _, p := range []string{e.streams.actions, e.streams.slot.SlotPath, e.streams.speech} {
		if err := eventlog.Touch(p); err != nil {
			e.log.Warn("create stream file", zap.String("path", p), zap.Error(err))
		}
	}

	if e.cursors == nil {
		c, _ := loadDoc[protocol.Cursors](ctx, e, protocol.KeyCursors)
		e.cursors = c.Streams
		e.cursorDay = c.Day
	}
	if e.cursorDay != e.streams.day {
		e.resetTrackers(ctx)
	}
	for _, t := range []*eventlog.Tailer{e.streams.eventsTail, e.streams.actionsTail} {
		off, ok := e.cursors[t.Path]
		if !ok {
			continue
		}
		info, err := os.Stat(t.Path)
		if err != nil || off > info.Size() {
			continue
		}
		t.Offset = off
	}
	e.log.Info("streams opened",
		zap.String("day", e.streams.day),
		zap.Int64("events_offset", e.streams.eventsTail.Offset),
		zap.Int64("actions_offset", e.streams.actionsTail.Offset))
	e.saveCursors(ctx)
}

// resetTrackers forgets the block, habit and drift trackers. Block ids
// repeat across days, so trackers only hold for the day they were written.
func (e *Engine) resetTrackers(ctx context.Context) {
	for _, key := range []string{protocol.KeyCurrentBlock, protocol.KeyHabit, protocol.KeyOffSchedule} {
		e.deleteDoc(ctx, key)
	}
}

// checkRollover reopens the streams when the calendar date changed.
func (e *Engine) checkRollover(ctx context.Context, now time.Time) {
	if e.streams == nil {
		e.openDay(ctx, now)
		return
	}
	if now.Format(eventlog.DayLayout) == e.streams.day {
		return
	}
	e.log.Info("day rollover", zap.String("from", e.streams.day), zap.String("to", now.Format(eventlog.DayLayout)))
	e.cursors = map[string]int64{}
	e.openDay(ctx, now)
}

// saveCursors persists the tail offsets of the current day.
func (e *Engine) saveCursors(ctx context.Context) {
	cur := map[string]int64{
		e.streams.eventsTail.Path:  e.streams.eventsTail.Offset,
		e.streams.actionsTail.Path: e.streams.actionsTail.Offset,
	}
	same := e.cursorDay == e.streams.day && len(cur) == len(e.cursors)
	for k, v := range cur {
		if old, ok := e.cursors[k]; !ok || old != v {
			same = false
		}
	}
	if same {
		return
	}
	e.cursors = cur
	e.cursorDay = e.streams.day
	e.saveDoc(ctx, protocol.KeyCursors, protocol.Cursors{Day: e.cursorDay, Streams: cur})
}

// emit stamps ev with an id (if missing) and appends it to the event log.
func (e *Engine) emit(ev protocol.Event) protocol.Event {
	if ev.EventID == "" {
		ev.EventID = e.newID()
	}
	if ev.Source == "" {
		ev.Source = protocol.SourceRunner
	}
	if err := eventlog.Append(e.streams.events, ev); err != nil {
		e.log.Warn("append event", zap.String("type", string(ev.Type)), zap.Error(err))
		return ev
	}
	e.log.Debug("event emitted", zap.String("type", string(ev.Type)), zap.String("event_id", ev.EventID), zap.String("block_id", ev.BlockID))
	return ev
}
