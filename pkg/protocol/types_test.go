package protocol_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coach/pkg/protocol"
)

func TestEventTypeKnown(t *testing.T) {
	tests := []struct {
		typ  protocol.EventType
		want bool
	}{
		{protocol.EventDriftStart, true},
		{protocol.EventHabitEscalate, true},
		{protocol.EventScheduleUpdated, true},
		{protocol.EventBlockBoundary, true},
		{protocol.EventNudgeAck, false},
		{"SOMETHING_NEW", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Known())
		})
	}
}

func TestEventTypeIsDrift(t *testing.T) {
	assert.True(t, protocol.EventDriftStart.IsDrift())
	assert.True(t, protocol.EventDriftPersist.IsDrift())
	assert.False(t, protocol.EventOffSchedule.IsDrift(), "OFF_SCHEDULE comes from the engine, not the sampler")
}

func TestEventDecode_SamplerLine(t *testing.T) {
	line := `{"ts": "2026-10-19T10:15:02.123456", "type": "DRIFT_START", "event_id": "e-1", "block_id": null, "app": "Safari", "url_domain": null, "confidence": 0.82, "reason": "video site", "source": "monitor"}`

	var ev protocol.Event
	require.NoError(t, json.Unmarshal([]byte(line), &ev))
	assert.Equal(t, protocol.EventDriftStart, ev.Type)
	assert.Empty(t, ev.BlockID, "null block_id decodes empty")
	require.NotNil(t, ev.Confidence)
	assert.InDelta(t, 0.82, *ev.Confidence, 1e-9)
	want := time.Date(2026, 10, 19, 10, 15, 2, 123456000, time.Local)
	assert.True(t, ev.TS.Equal(want), "ts = %v, want %v", ev.TS.Time, want)
}

func TestTimestampTolerance(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantZero bool
	}{
		{"rfc3339", `"2026-10-19T10:00:00Z"`, false},
		{"rfc3339 nano with offset", `"2026-10-19T10:00:00.5-07:00"`, false},
		{"naive iso", `"2026-10-19T10:00:00"`, false},
		{"space separated", `"2026-10-19 10:00:00"`, false},
		{"null", `null`, true},
		{"garbage string", `"yesterday-ish"`, true},
		{"number", `12345`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts protocol.Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			assert.Equal(t, tt.wantZero, ts.IsZero(), "parsed %v", ts.Time)
		})
	}
}

func TestTimestampMarshal(t *testing.T) {
	data, err := json.Marshal(protocol.Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	ts := protocol.At(time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC))
	data, err = json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-10-19T09:30:00Z"`, string(data))

	var back protocol.Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(ts.Time))
}

func TestLevelValid(t *testing.T) {
	assert.True(t, protocol.LevelA.Valid())
	assert.True(t, protocol.LevelB.Valid())
	assert.False(t, protocol.Level("C").Valid())
	assert.False(t, protocol.Level("").Valid())
}
