package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockLayout is the wall-clock format used by block boundaries.
const ClockLayout = "15:04"

// ParseClock parses "HH:MM" (a single-digit hour is accepted) and returns
// that wall-clock time on day's date in day's location.
func ParseClock(value string, day time.Time) (time.Time, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return time.Time{}, fmt.Errorf("clock %q: missing ':'", value)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("clock %q: bad hour", value)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 || len(m) != 2 {
		return time.Time{}, fmt.Errorf("clock %q: bad minute", value)
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, hour, minute, 0, 0, day.Location()), nil
}

// FormatClock renders t as "HH:MM".
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// Span returns the block's [start, end) on day's date.
func (b Block) Span(day time.Time) (start, end time.Time, err error) {
	start, err = ParseClock(b.Start, day)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("block %s start: %w", b.ID, err)
	}
	end, err = ParseClock(b.End, day)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("block %s end: %w", b.ID, err)
	}
	return start, end, nil
}
