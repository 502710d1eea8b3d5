package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coach/pkg/engine"
	"coach/pkg/protocol"
	"coach/pkg/schedule"
)

func testSchedule(day time.Time) *schedule.Schedule {
	return &schedule.Schedule{
		Timezone: schedule.DefaultTimezone,
		Day:      day.Format(schedule.DayLayout),
		Blocks: []schedule.Block{
			{ID: "work_0", Start: "09:00", End: "10:00", Type: schedule.TypeCoding, Title: "Eval harness"},
			{ID: "water_1", Start: "10:00", End: "10:02", Type: schedule.TypeHabit, HabitKind: "water", Title: "Water"},
			{ID: "work_1", Start: "10:02", End: "11:00", Type: schedule.TypeResearch},
		},
	}
}

func TestRenderStatus(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 1, 0, 0, time.Local)
	s := testSchedule(now)
	st := engine.Status{
		Now:      now,
		Schedule: s,
		Current:  &s.Blocks[1],
		Next:     &s.Blocks[2],
		Habit:    protocol.HabitState{BlockID: "water_1", DueAt: protocol.At(now.Add(-time.Minute)), Escalated: true},
		OffSchedule: protocol.OffScheduleState{
			BlockID: "work_0", Since: protocol.At(now.Add(-20 * time.Minute)), RecoverTriggered: true,
		},
		Pause:       protocol.PauseState{PauseUntil: protocol.At(now.Add(10 * time.Minute))},
		Foreground:  &protocol.NowSnapshot{App: "Code", Title: "engine.go"},
		LastOverlay: &protocol.OverlayCommand{Level: protocol.LevelB, StyleID: protocol.StyleStrict, Headline: "Habit overdue"},
	}

	var buf bytes.Buffer
	renderStatus(&buf, DefaultTheme(), engineRunning, 99, st)
	out := buf.String()

	for _, want := range []string{
		"running (PID 99)",
		"2026-03-07, 3 blocks",
		"10:00-10:02 Water (habit)",
		"10:02-11:00 work_1 (research)",
		"overdue",
		"off schedule in work_0 since 09:41, recovery triggered",
		"until 10:11",
		"Code engine.go",
		"Habit overdue",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderStatusNeedsAlignment(t *testing.T) {
	var buf bytes.Buffer
	renderStatus(&buf, DefaultTheme(), engineStopped, 0, engine.Status{
		Now:            time.Now(),
		NeedsAlignment: true,
		Alignment:      protocol.AlignmentState{Step: 2, Answers: map[string]string{"start_time": "09:00", "end_time": "17:00"}},
	})
	out := buf.String()
	for _, want := range []string{"stopped", "alignment required", "question 3"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "between blocks", "no block line while aligning")
}

func TestRenderSchedule(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 30, 0, 0, time.Local)
	var buf bytes.Buffer
	renderSchedule(&buf, DefaultTheme(), testSchedule(now), now)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	require.Len(t, lines, 4, "header + 3 blocks:\n%s", buf.String())
	assert.Contains(t, lines[0], "2026-03-07")
	assert.Contains(t, lines[3], "> 10:02-11:00", "current block is marked")
	assert.NotContains(t, lines[1], ">", "ended block is not marked")

	buf.Reset()
	renderSchedule(&buf, DefaultTheme(), testSchedule(now.AddDate(0, 0, -1)), now)
	assert.Contains(t, buf.String(), "not today's schedule")
}
