package protocol

import (
	"bytes"
	"encoding/json"
	"time"
)

// Timestamp is a time.Time that tolerates the timestamp shapes other
// processes write into the shared logs: RFC 3339 with or without fractional
// seconds, and naive ISO-8601 local times without an offset. An unparseable
// or null value decodes to the zero time instead of failing the record.
type Timestamp struct {
	time.Time
}

// naiveLayouts are tried, in order, when a value carries no UTC offset.
var naiveLayouts = []string{ //nolint:gochecknoglobals // fixed table
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// At wraps t.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses s using the tolerant layouts. ok is false when no
// layout matched.
func ParseTimestamp(s string) (ts Timestamp, ok bool) {
	if s == "" {
		return Timestamp{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t}, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Timestamp{Time: t}, true
		}
	}
	return Timestamp{}, false
}

// MarshalJSON writes RFC 3339 with nanoseconds, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.Time = time.Time{}
		return nil //nolint:nilerr // non-string timestamps are treated as absent
	}
	parsed, _ := ParseTimestamp(s)
	*t = parsed
	return nil
}
