package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coach/pkg/eventlog"
	"coach/pkg/protocol"
)

func TestParseAction(t *testing.T) {
	now := time.Date(2026, 3, 7, 9, 0, 0, 0, time.Local)
	tests := []struct {
		name    string
		args    []string
		block   string
		want    protocol.OverlayAction
		wantErr bool
	}{
		{name: "pause alias", args: []string{"pause"}, want: protocol.OverlayAction{Action: protocol.ActionPause}},
		{name: "pause log name", args: []string{"pause_15"}, want: protocol.OverlayAction{Action: protocol.ActionPause}},
		{name: "recover", args: []string{"recover"}, want: protocol.OverlayAction{Action: protocol.ActionRecover}},
		{
			name: "answer",
			args: []string{"answer", "start_time", "09:30"},
			want: protocol.OverlayAction{Action: protocol.ActionAlignChoice, QuestionID: "start_time", Value: "09:30"},
		},
		{name: "back with flag", args: []string{"back"}, block: "water_1", want: protocol.OverlayAction{Action: protocol.ActionBackOnTrack, BlockID: "water_1"}},
		{name: "back with arg", args: []string{"back_on_track", "break_2"}, want: protocol.OverlayAction{Action: protocol.ActionBackOnTrack, BlockID: "break_2"}},
		{name: "answer missing value", args: []string{"answer", "start_time"}, wantErr: true},
		{name: "pause with extra arg", args: []string{"pause", "now"}, wantErr: true},
		{name: "unknown", args: []string{"snooze"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAction(tt.args, tt.block, now)
			if tt.wantErr {
				assert.Error(t, err, "got %+v", got)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.TS.Equal(now))
			got.TS = protocol.Timestamp{}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActCommandAppendsAction(t *testing.T) {
	home := t.TempDir()
	out, err := executeRoot(t, "--home", home, "act", "answer", "gym_today", "Yes")
	require.NoError(t, err)
	assert.Equal(t, "queued align_choice\n", out)

	path := eventlog.DailyPath(filepath.Join(home, "logs"), protocol.StreamOverlayActions, time.Now())
	actions, err := eventlog.ReadRecords[protocol.OverlayAction](path, 10)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "gym_today", actions[0].QuestionID)
	assert.Equal(t, "Yes", actions[0].Value)
}
