package schedule_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coach/pkg/schedule"
)

func at(hhmm string) time.Time {
	day := time.Date(2026, 3, 7, 0, 0, 0, 0, time.Local)
	t, err := schedule.ParseClock(hhmm, day)
	if err != nil {
		panic(err)
	}
	return t
}

func sample() *schedule.Schedule {
	return &schedule.Schedule{
		Timezone: schedule.DefaultTimezone,
		Day:      "2026-03-07",
		Blocks: []schedule.Block{
			{ID: "meditation", Start: "09:00", End: "09:10", Type: schedule.TypeHabit, HabitKind: "meditation", Title: "Meditation", Intent: "10 minute reset"},
			{ID: "work_0", Start: "09:10", End: "10:40", Type: schedule.TypeCoding, Title: "Research", Intent: "Focus on Research", AllowedApps: []string{"Code", "iTerm2"}},
			{ID: "broken", Start: "1O:00", End: "11:00", Type: schedule.TypeAdmin, Title: "Typo"},
			{ID: "break_1", Start: "10:40", End: "10:50", Type: schedule.TypeHabit, HabitKind: "break", Title: "Break", Intent: "Stand and stretch"},
		},
	}
}

func TestResolve_HalfOpenIntervals(t *testing.T) {
	s := sample()
	tests := []struct {
		at   string
		want string
	}{
		{"08:59", ""},
		{"09:00", "meditation"},
		{"09:09", "meditation"},
		{"09:10", "work_0"},
		{"10:39", "work_0"},
		{"10:40", "break_1"},
		{"10:50", ""},
		{"23:00", ""},
	}
	for _, tt := range tests {
		t.Run(tt.at, func(t *testing.T) {
			got := schedule.Resolve(s, at(tt.at))
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestResolve_AtMostOneBlockEveryMinute(t *testing.T) {
	s := sample()
	day := at("00:00")
	for m := 0; m < 24*60; m++ {
		now := day.Add(time.Duration(m) * time.Minute)
		got := schedule.Resolve(s, now)
		matches := 0
		for _, b := range s.Blocks {
			start, end, err := b.Span(now)
			if err != nil {
				continue
			}
			if !now.Before(start) && now.Before(end) {
				matches++
				require.NotNil(t, got)
				assert.Equal(t, b.ID, got.ID)
			}
		}
		assert.LessOrEqual(t, matches, 1)
		if matches == 0 {
			assert.Nil(t, got, "minute %d", m)
		}
	}
	assert.Nil(t, schedule.Resolve(nil, day))
}

func TestFallbackShift(t *testing.T) {
	s := &schedule.Schedule{
		Day: "2026-03-07",
		Blocks: []schedule.Block{
			{ID: "early", Start: "08:00", End: "09:00", Type: schedule.TypeCoding},
			{ID: "w", Start: "10:00", End: "11:00", Type: schedule.TypeCoding},
			{ID: "evening", Start: "23:00", End: "23:40", Type: schedule.TypeAdmin},
			{ID: "late", Start: "23:45", End: "23:55", Type: schedule.TypeAdmin},
		},
	}

	got := schedule.FallbackShift(s, at("09:30"), schedule.DefaultShift)

	assert.Equal(t, "08:00", got.Blocks[0].Start, "ended block is untouched")
	assert.Equal(t, "09:00", got.Blocks[0].End)
	assert.Equal(t, "10:30", got.Blocks[1].Start)
	assert.Equal(t, "11:30", got.Blocks[1].End)
	assert.Equal(t, "23:30", got.Blocks[2].Start)
	assert.Equal(t, "23:59", got.Blocks[2].End, "clamped at midnight")
	require.Len(t, got.Blocks, 3, "a block pushed entirely past midnight is dropped")
	require.NoError(t, got.Validate())
	assert.Len(t, s.Blocks, 4)
	assert.Equal(t, "10:00", s.Blocks[1].Start, "input must not be mutated")
	assert.Equal(t, schedule.DefaultTimezone, got.Timezone)
}

func TestRemaining(t *testing.T) {
	got := schedule.Remaining(sample(), at("10:00"))
	ids := make([]string, 0, len(got))
	for _, b := range got {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"work_0", "broken", "break_1"}, ids)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "schedule.yaml")
	in := sample()
	require.NoError(t, schedule.Write(path, in))

	out, err := schedule.Read(path)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ToleratesHandWrittenYAML(t *testing.T) {
	doc := `timezone: America/Los_Angeles
day: 2026-03-07
blocks:
  - id: work_0
    start: "09:00"
    end: 10:30
    type: coding
    title: Eval harness
    intent: Focus on Eval harness
    allowed_apps: ['Code', 'Terminal']
`
	s, err := schedule.Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, s.Blocks, 1)
	assert.Equal(t, "2026-03-07", s.Day)
	assert.Equal(t, "10:30", s.Blocks[0].End)
	assert.Equal(t, []string{"Code", "Terminal"}, s.Blocks[0].AllowedApps)
	assert.NoError(t, s.Validate())
}

func TestValidate(t *testing.T) {
	base := func() *schedule.Schedule {
		return &schedule.Schedule{Day: "2026-03-07", Blocks: []schedule.Block{
			{ID: "a", Start: "09:00", End: "10:00", Type: schedule.TypeCoding, Title: "A"},
		}}
	}
	tests := []struct {
		name   string
		mutate func(*schedule.Schedule)
	}{
		{"bad day", func(s *schedule.Schedule) { s.Day = "today" }},
		{"duplicate id", func(s *schedule.Schedule) { s.Blocks = append(s.Blocks, s.Blocks[0]) }},
		{"bad clock", func(s *schedule.Schedule) { s.Blocks[0].Start = "9am" }},
		{"end before start", func(s *schedule.Schedule) { s.Blocks[0].End = "08:00" }},
		{"unknown type", func(s *schedule.Schedule) { s.Blocks[0].Type = "nap" }},
		{"habit without kind", func(s *schedule.Schedule) { s.Blocks[0].Type = schedule.TypeHabit }},
		{"kind without habit", func(s *schedule.Schedule) { s.Blocks[0].HabitKind = "water" }},
	}
	require.NoError(t, base().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(s)
			err := s.Validate()
			assert.True(t, errors.Is(err, schedule.ErrInvalid), "err = %v", err)
		})
	}
}

func TestNeedsAlignment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.yaml")
	today := at("12:00")

	assert.True(t, schedule.NeedsAlignment(path, today), "missing file")

	require.NoError(t, os.WriteFile(path, []byte("blocks: [unclosed"), 0o644))
	assert.True(t, schedule.NeedsAlignment(path, today), "unreadable file")

	s := sample()
	s.Day = "2026-03-06"
	require.NoError(t, schedule.Write(path, s))
	assert.True(t, schedule.NeedsAlignment(path, today), "stale day")

	s.Day = "2026-03-07"
	require.NoError(t, schedule.Write(path, s))
	assert.False(t, schedule.NeedsAlignment(path, today))
}

func TestParseClock(t *testing.T) {
	day := at("00:00")
	got, err := schedule.ParseClock("9:05", day)
	require.NoError(t, err)
	assert.Equal(t, "09:05", schedule.FormatClock(got))

	for _, bad := range []string{"", "9", "25:00", "10:5", "10:60", "ab:cd"} {
		_, err := schedule.ParseClock(bad, day)
		assert.Error(t, err, bad)
	}
}
