package align_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coach/pkg/align"
	"coach/pkg/protocol"
	"coach/pkg/schedule"
)

var day = time.Date(2026, 3, 7, 8, 30, 0, 0, time.Local)

func TestApply_WalksQuestionsInOrder(t *testing.T) {
	var st protocol.AlignmentState
	for i, q := range align.Questions {
		cur, ok := align.Current(st)
		require.True(t, ok)
		assert.Equal(t, q.ID, cur.ID)
		assert.Equal(t, i, st.Step)
		st = align.Apply(st, q.ID, q.Choices[0])
	}
	assert.Equal(t, len(align.Questions), st.Step)
	assert.True(t, align.Complete(st))
	_, ok := align.Current(st)
	assert.False(t, ok)
}

func TestApply_OutOfOrderAnswerPicksFirstGap(t *testing.T) {
	st := align.Apply(protocol.AlignmentState{}, align.QFocusBlock, "Research")
	assert.Equal(t, 0, st.Step)
	st = align.Apply(st, align.QStartTime, "10:00")
	assert.Equal(t, 1, st.Step)

	orig := protocol.AlignmentState{Answers: map[string]string{"x": "y"}}
	_ = align.Apply(orig, align.QStartTime, "09:00")
	assert.Len(t, orig.Answers, 1, "input answers must not be mutated")
}

func TestShouldPrompt(t *testing.T) {
	q := align.Questions[0]
	last := protocol.AlignPrompted{QuestionID: q.ID, PromptedAt: protocol.At(day)}

	assert.True(t, align.ShouldPrompt(protocol.AlignPrompted{}, q, day, 10*time.Second))
	assert.False(t, align.ShouldPrompt(last, q, day.Add(9*time.Second), 10*time.Second))
	assert.True(t, align.ShouldPrompt(last, q, day.Add(10*time.Second), 10*time.Second))
	assert.True(t, align.ShouldPrompt(last, align.Questions[1], day.Add(time.Second), 10*time.Second))
}

func TestOverlay(t *testing.T) {
	q := align.Questions[4]
	cmd := align.Overlay(q, day)
	assert.Equal(t, protocol.LevelB, cmd.Level)
	assert.Equal(t, "ALIGN REQUIRED", cmd.Headline)
	assert.Equal(t, q.Text, cmd.HumanLine)
	assert.Equal(t, q.ID, cmd.QuestionID)
	assert.Equal(t, []string{"Yes", "No"}, cmd.Choices)
	assert.Equal(t, "Alignment", cmd.BlockName)

	ev := align.Event(q, day)
	assert.Equal(t, protocol.EventAlignRequired, ev.Type)
	assert.Equal(t, q.Choices, ev.Choices)
}

func ids(s *schedule.Schedule) []string {
	out := make([]string, 0, len(s.Blocks))
	for _, b := range s.Blocks {
		out = append(out, b.ID+" "+b.Start+"-"+b.End)
	}
	return out
}

func TestBuild_FullDay(t *testing.T) {
	s := align.Build(map[string]string{
		align.QStartTime:    "09:00",
		align.QEndTime:      "12:00",
		align.QFocusBlock:   "Research",
		align.QBreakCadence: "60m",
		align.QGymToday:     "Yes",
		align.QMeditate:     "Yes",
	}, day)

	require.NoError(t, s.Validate())
	assert.Equal(t, "2026-03-07", s.Day)
	assert.True(t, s.IsToday(day))
	assert.Equal(t, schedule.DefaultTimezone, s.Timezone)
	assert.Equal(t, []string{
		"meditation_2026-03-07 09:00-09:10",
		"work_0 09:10-10:10",
		"break_1 10:10-10:20",
		"water_1 10:20-10:22",
		"work_1 10:22-11:22",
		"break_2 11:22-11:32",
		"water_2 11:32-11:34",
		"work_2 11:34-11:50",
		"gym_2026-03-07 11:50-12:00",
	}, ids(s))

	work := s.Blocks[1]
	assert.Equal(t, schedule.TypeCoding, work.Type)
	assert.Equal(t, "Research", work.Title)
	assert.Equal(t, "Focus on Research", work.Intent)
	assert.Equal(t, "break", s.Blocks[2].HabitKind)
	assert.Equal(t, "Stand and stretch", s.Blocks[2].Intent)
	assert.Equal(t, "Drink water", s.Blocks[3].Intent)
	assert.Equal(t, "Workout", s.Blocks[8].Intent)
}

func TestBuild_Defaults(t *testing.T) {
	s := align.Build(map[string]string{
		align.QStartTime: "18:00",
		align.QEndTime:   "17:00",
	}, day)
	require.NoError(t, s.Validate())
	require.NotEmpty(t, s.Blocks)
	assert.Equal(t, "09:00", s.Blocks[0].Start)
	assert.Equal(t, "work_0", s.Blocks[0].ID)
	assert.Equal(t, "10:30", s.Blocks[0].End, "default cadence is 90m")
	assert.Equal(t, "Focus", s.Blocks[0].Title)
	assert.Equal(t, "17:00", s.Blocks[len(s.Blocks)-1].End)
}

func TestBuild_GymDroppedWhenDayTooShort(t *testing.T) {
	s := align.Build(map[string]string{
		align.QStartTime: "09:00",
		align.QEndTime:   "09:05",
		align.QGymToday:  "Yes",
	}, day)
	require.NoError(t, s.Validate())
	for _, b := range s.Blocks {
		assert.NotEqual(t, "gym", b.HabitKind)
	}
}
