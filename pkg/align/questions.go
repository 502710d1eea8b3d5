// Package align runs the morning alignment: a fixed list of multiple-choice
// questions whose answers are turned into the day's schedule.
package align

import (
	"time"

	"coach/pkg/protocol"
)

// Question is one alignment prompt.
type Question struct {
	ID      string
	Text    string
	Choices []string
}

// Question ids.
const (
	QStartTime    = "start_time"
	QEndTime      = "end_time"
	QFocusBlock   = "focus_block"
	QBreakCadence = "break_cadence"
	QGymToday     = "gym_today"
	QMeditate     = "meditate"
)

// Questions is the ordered alignment question list.
var Questions = []Question{ //nolint:gochecknoglobals // fixed table
	{ID: QStartTime, Text: "Start time today?", Choices: []string{"09:00", "09:30", "10:00", "10:30"}},
	{ID: QEndTime, Text: "End time today?", Choices: []string{"17:00", "18:00", "19:00", "20:00"}},
	{ID: QFocusBlock, Text: "Primary focus block?", Choices: []string{"Eval harness", "Research", "Features", "Bugfix"}},
	{ID: QBreakCadence, Text: "Break cadence?", Choices: []string{"60m", "90m", "120m"}},
	{ID: QGymToday, Text: "Gym today?", Choices: []string{"Yes", "No"}},
	{ID: QMeditate, Text: "Meditation today?", Choices: []string{"Yes", "No"}},
}

// Current returns the question at state.Step, or false once every question
// has been answered.
func Current(state protocol.AlignmentState) (Question, bool) {
	if state.Step < 0 || state.Step >= len(Questions) {
		return Question{}, false
	}
	return Questions[state.Step], true
}

// Complete reports whether state has reached the terminal step.
func Complete(state protocol.AlignmentState) bool {
	return state.Step >= len(Questions)
}

// Apply records answer for questionID and moves Step to the first
// unanswered question (or len(Questions) when none remain). An empty
// questionID only recomputes Step.
func Apply(state protocol.AlignmentState, questionID, answer string) protocol.AlignmentState {
	answers := make(map[string]string, len(state.Answers)+1)
	for k, v := range state.Answers {
		answers[k] = v
	}
	if questionID != "" {
		answers[questionID] = answer
	}
	next := protocol.AlignmentState{Answers: answers, Step: len(Questions)}
	for i, q := range Questions {
		if _, ok := answers[q.ID]; !ok {
			next.Step = i
			break
		}
	}
	return next
}

// ShouldPrompt reports whether q may be shown now. A question prompted less
// than minInterval ago is suppressed; a different question is always shown.
func ShouldPrompt(last protocol.AlignPrompted, q Question, now time.Time, minInterval time.Duration) bool {
	if last.QuestionID != q.ID || last.PromptedAt.IsZero() {
		return true
	}
	return now.Sub(last.PromptedAt.Time) >= minInterval
}

// Event returns the ALIGN_REQUIRED event for q.
func Event(q Question, now time.Time) protocol.Event {
	return protocol.Event{
		TS:         protocol.At(now),
		Type:       protocol.EventAlignRequired,
		Source:     protocol.SourceRunner,
		QuestionID: q.ID,
		Question:   q.Text,
		Choices:    append([]string(nil), q.Choices...),
	}
}

// Overlay returns the blocking overlay that asks q.
func Overlay(q Question, now time.Time) protocol.OverlayCommand {
	return protocol.OverlayCommand{
		TS:         protocol.At(now),
		EventType:  protocol.EventAlignRequired,
		Source:     protocol.SourceRunner,
		Level:      protocol.LevelB,
		StyleID:    protocol.StyleCalm,
		Headline:   "ALIGN REQUIRED",
		HumanLine:  q.Text,
		Diagnosis:  "Answer to commit today's schedule.",
		NextAction: "Pick one option.",
		BlockName:  "Alignment",
		Choices:    append([]string(nil), q.Choices...),
		QuestionID: q.ID,
	}
}
