package schedule

import "time"

// DefaultShift is how far FallbackShift pushes the remaining blocks.
const DefaultShift = 30 * time.Minute

// Resolve returns the first block whose [start, end) contains now, or nil.
// Blocks with unparseable times are skipped.
func Resolve(s *Schedule, now time.Time) *Block {
	if s == nil {
		return nil
	}
	for i := range s.Blocks {
		start, end, err := s.Blocks[i].Span(now)
		if err != nil {
			continue
		}
		if !now.Before(start) && now.Before(end) {
			b := s.Blocks[i]
			return &b
		}
	}
	return nil
}

// NeedsAlignment reports whether the schedule at path is missing,
// unreadable, or for a day other than today.
func NeedsAlignment(path string, today time.Time) bool {
	s, err := Read(path)
	if err != nil {
		return true
	}
	return !s.IsToday(today)
}

// Remaining returns the blocks that have not ended by now, in order.
func Remaining(s *Schedule, now time.Time) []Block {
	if s == nil {
		return nil
	}
	var out []Block
	for _, b := range s.Blocks {
		end, err := ParseClock(b.End, now)
		if err != nil {
			continue
		}
		if end.After(now) {
			out = append(out, b)
		}
	}
	return out
}

// FallbackShift returns a copy of s with every block that has not ended by
// now moved later by shift. Ended blocks are unchanged. Shifted boundaries
// that would cross midnight are clamped to 23:59, and a block left with no
// time before midnight is dropped.
func FallbackShift(s *Schedule, now time.Time, shift time.Duration) *Schedule {
	out := s.Clone()
	if out == nil {
		return nil
	}
	if out.Timezone == "" {
		out.Timezone = DefaultTimezone
	}
	if out.Day == "" {
		out.Day = now.Format(DayLayout)
	}
	blocks := out.Blocks[:0]
	for _, b := range out.Blocks {
		start, end, err := b.Span(now)
		if err != nil || !end.After(now) {
			blocks = append(blocks, b)
			continue
		}
		b.Start = shiftClock(start, shift)
		b.End = shiftClock(end, shift)
		if b.Start == b.End {
			continue
		}
		blocks = append(blocks, b)
	}
	out.Blocks = blocks
	return out
}

func shiftClock(t time.Time, d time.Duration) string {
	shifted := t.Add(d)
	if shifted.YearDay() != t.YearDay() || shifted.Year() != t.Year() {
		return "23:59"
	}
	return FormatClock(shifted)
}
