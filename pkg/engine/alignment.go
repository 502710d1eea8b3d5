package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"coach/pkg/align"
	"coach/pkg/protocol"
	"coach/pkg/schedule"
)

// alignmentPhase asks the current alignment question, or commits the
// synthesized schedule once every question is answered.
func (e *Engine) alignmentPhase(ctx context.Context, now time.Time) {
	st, _ := loadDoc[protocol.AlignmentState](ctx, e, protocol.KeyAlignment)

	if align.Complete(st) {
		s := align.Build(st.Answers, now)
		if err := schedule.Write(e.cfg.Paths.SchedulePath, s); err != nil {
			e.log.Warn("commit schedule", zap.Error(err))
			return
		}
		e.emit(protocol.Event{TS: protocol.At(now), Type: protocol.EventScheduleCommitted})
		e.deleteDoc(ctx, protocol.KeyAlignment)
		e.deleteDoc(ctx, protocol.KeyAlignPrompted)
		e.log.Info("schedule committed", zap.String("day", s.Day), zap.Int("blocks", len(s.Blocks)))
		return
	}

	q, ok := align.Current(st)
	if !ok {
		return
	}
	last, _ := loadDoc[protocol.AlignPrompted](ctx, e, protocol.KeyAlignPrompted)
	if !align.ShouldPrompt(last, q, now, e.cfg.AlignMinInterval) {
		return
	}

	ev := e.emit(align.Event(q, now))
	cmd := align.Overlay(q, now)
	cmd.SourceEventID = ev.EventID
	e.writeOverlay(cmd, now)

	if st.Answers == nil {
		st.Answers = map[string]string{}
	}
	e.saveDoc(ctx, protocol.KeyAlignment, st)
	e.saveDoc(ctx, protocol.KeyAlignPrompted, protocol.AlignPrompted{QuestionID: q.ID, PromptedAt: protocol.At(now)})
}
