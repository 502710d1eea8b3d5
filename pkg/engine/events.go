package engine

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"

	"coach/pkg/dispatch"
	"coach/pkg/eventlog"
	"coach/pkg/planner"
	"coach/pkg/policy"
	"coach/pkg/protocol"
)

// eventContext is the context document handed to the planner for one
// event.
type eventContext struct {
	Event             json.RawMessage         `json:"event"`
	ActivityTail      []protocol.Activity     `json:"activity_tail"`
	Now               json.RawMessage         `json:"now"`
	LastOverlayAction *protocol.OverlayAction `json:"last_overlay_action"`
}

// eventPhase tails the event log and dispatches each known event.
func (e *Engine) eventPhase(ctx context.Context, now time.Time) {
	lines, err := e.streams.eventsTail.Next()
	if err != nil {
		e.log.Warn("tail events", zap.Error(err))
		return
	}
	if len(lines) == 0 {
		return
	}
	e.log.Debug("events read", zap.Int("count", len(lines)))
	for _, line := range lines {
		var ev protocol.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			e.log.Debug("skip malformed event", zap.Error(err))
			continue
		}
		if !ev.Type.Known() {
			continue
		}
		e.dispatchEvent(ctx, ev, line, now)
	}
	e.saveCursors(ctx)
}

func (e *Engine) dispatchEvent(ctx context.Context, ev protocol.Event, line []byte, now time.Time) {
	e.policy.Observe(ev.Type)

	if policy.Bypass(ev.Type) {
		if cmd, ok := bypassOverlay(ev); ok {
			e.writeOverlay(cmd, now)
		}
		return
	}

	if v := e.policy.Check(now); v != policy.Allow {
		e.log.Debug("event suppressed", zap.String("type", string(ev.Type)), zap.Stringer("verdict", v))
		return
	}
	if e.planner == nil {
		return
	}

	e.writeEventContext(line)
	req := planner.Request{
		Message: planner.EventPrompt(string(line), ev.Type.IsDrift()),
		Files: existing(
			e.cfg.Paths.NowPath(),
			e.streams.activity,
			e.streams.actions,
			e.cfg.Paths.EventContextPath(),
			e.cfg.Paths.GoalsPath(),
		),
	}
	if ev.EventID == "" {
		e.log.Warn("event missing event_id", zap.String("type", string(ev.Type)))
	}
	resp, err := e.planner.Plan(ctx, req)
	if err != nil || resp.Empty() {
		e.log.Info("no usable planner response", zap.String("type", string(ev.Type)), zap.Error(err))
		return
	}

	var headline, blockID, blockName string
	if resp.Overlay != nil {
		cmd := resp.Overlay.Command()
		cmd.SourceEventID = ev.EventID
		cmd.EventType = ev.Type
		e.policy.ForceOverlay(ev.Type, &cmd)
		e.writeOverlay(cmd, now)
		headline, blockID, blockName = cmd.Headline, cmd.BlockID, cmd.BlockName
	}

	if err := dispatch.WriteHUD(e.cfg.Paths.HUDPath, resp.HUDText); err != nil {
		e.log.Warn("write hud", zap.Error(err))
	}
	speech := protocol.SpeechEntry{
		TS:         protocol.At(now),
		EventID:    ev.EventID,
		EventType:  ev.Type,
		SpeechText: resp.SpeechText,
		Headline:   headline,
		BlockID:    blockID,
		BlockName:  blockName,
	}
	if err := dispatch.QueueSpeech(e.streams.speech, speech, e.speaker); err != nil {
		e.log.Warn("queue speech", zap.Error(err))
	}
	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, "Coach", resp.NotificationText); err != nil {
			e.log.Warn("notify", zap.Error(err))
		}
	}

	e.policy.RecordNudge(now)
}

// writeEventContext writes the context document for one event line.
func (e *Engine) writeEventContext(line []byte) {
	doc := eventContext{
		Event:        json.RawMessage(line),
		ActivityTail: e.activityTail(),
		Now:          readRawJSON(e.cfg.Paths.NowPath()),
	}
	var last protocol.OverlayAction
	if found, err := eventlog.LastRecord(e.streams.actions, &last); err == nil && found {
		doc.LastOverlayAction = &last
	}
	if err := writeJSON(e.cfg.Paths.EventContextPath(), doc); err != nil {
		e.log.Warn("write event context", zap.Error(err))
	}
}

func (e *Engine) activityTail() []protocol.Activity {
	recs, err := eventlog.ReadRecords[protocol.Activity](e.streams.activity, e.cfg.ActivityTail)
	if err != nil {
		e.log.Debug("activity tail unreadable", zap.Error(err))
	}
	if recs == nil {
		recs = []protocol.Activity{}
	}
	return recs
}

// readRawJSON returns the file's JSON content, or {} when it is missing or
// not valid JSON.
func readRawJSON(path string) json.RawMessage {
	data, err := os.ReadFile(path) //nolint:gosec // path is a resolved coach path
	if err != nil || !json.Valid(data) {
		return json.RawMessage("{}")
	}
	return json.RawMessage(data)
}

// existing filters paths down to files that exist.
func existing(paths ...string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}
