package align

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"coach/pkg/schedule"
)

const (
	defaultStart   = "09:00"
	defaultEnd     = "17:00"
	defaultFocus   = "Focus"
	defaultCadence = 90 * time.Minute

	meditationLen = 10 * time.Minute
	breakLen      = 10 * time.Minute
	waterLen      = 2 * time.Minute
	gymLen        = 10 * time.Minute
)

// Build synthesizes the schedule for day from alignment answers. Missing or
// unparseable answers fall back to a 09:00-17:00 day with 90 minute work
// blocks. The result always validates.
func Build(answers map[string]string, day time.Time) *schedule.Schedule {
	dayStr := day.Format(schedule.DayLayout)

	start, errS := schedule.ParseClock(orDefault(answers[QStartTime], defaultStart), day)
	end, errE := schedule.ParseClock(orDefault(answers[QEndTime], defaultEnd), day)
	if errS != nil || errE != nil || !end.After(start) {
		start, _ = schedule.ParseClock(defaultStart, day)
		end, _ = schedule.ParseClock(defaultEnd, day)
	}
	focus := orDefault(answers[QFocusBlock], defaultFocus)
	cadence := parseMinutes(answers[QBreakCadence], defaultCadence)
	gym := answers[QGymToday] == "Yes"
	meditate := answers[QMeditate] == "Yes"

	var blocks []schedule.Block
	add := func(b schedule.Block, from, to time.Time) {
		b.Start = schedule.FormatClock(from)
		b.End = schedule.FormatClock(to)
		blocks = append(blocks, b)
	}

	sessionEnd := end
	var gymStart time.Time
	if gym {
		if gs := end.Add(-gymLen); gs.After(start) {
			gymStart = gs
			sessionEnd = gs
		}
	}

	cursor := start
	if meditate {
		medEnd := minTime(cursor.Add(meditationLen), end)
		add(schedule.Block{
			ID: "meditation_" + dayStr, Type: schedule.TypeHabit, HabitKind: "meditation",
			Title: "Meditation", Intent: "10 minute reset",
		}, cursor, medEnd)
		cursor = medEnd
	}

	for n := 0; cursor.Before(sessionEnd); {
		workEnd := minTime(cursor.Add(cadence), sessionEnd)
		add(schedule.Block{
			ID: fmt.Sprintf("work_%d", n), Type: schedule.TypeCoding,
			Title: focus, Intent: "Focus on " + focus,
		}, cursor, workEnd)
		cursor = workEnd
		n++
		if !cursor.Before(sessionEnd) {
			break
		}

		breakEnd := minTime(cursor.Add(breakLen), sessionEnd)
		add(schedule.Block{
			ID: fmt.Sprintf("break_%d", n), Type: schedule.TypeHabit, HabitKind: "break",
			Title: "Break", Intent: "Stand and stretch",
		}, cursor, breakEnd)
		cursor = breakEnd
		if !cursor.Before(sessionEnd) {
			break
		}

		waterEnd := minTime(cursor.Add(waterLen), sessionEnd)
		add(schedule.Block{
			ID: fmt.Sprintf("water_%d", n), Type: schedule.TypeHabit, HabitKind: "water",
			Title: "Water", Intent: "Drink water",
		}, cursor, waterEnd)
		cursor = waterEnd
	}

	if !gymStart.IsZero() {
		add(schedule.Block{
			ID: "gym_" + dayStr, Type: schedule.TypeHabit, HabitKind: "gym",
			Title: "Gym", Intent: "Workout",
		}, gymStart, gymStart.Add(gymLen))
	}

	return &schedule.Schedule{
		Timezone: schedule.DefaultTimezone,
		Day:      dayStr,
		Blocks:   blocks,
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// parseMinutes reads "90m" or "90". Non-positive or unparseable values
// return def.
func parseMinutes(v string, def time.Duration) time.Duration {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "m"))
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Minute
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
