package dispatch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"coach/pkg/dispatch"
	"coach/pkg/eventlog"
	"coach/pkg/protocol"
)

type call struct {
	name string
	args []string
}

type recordingRunner struct {
	mu    sync.Mutex
	calls []call
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{name: name, args: args})
	return nil, nil
}

func (r *recordingRunner) Calls() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

type captureSpeaker struct{ said []string }

func (c *captureSpeaker) Speak(text string, _ dispatch.Intensity) { c.said = append(c.said, text) }

func TestWriteOverlay_RejectsBadLevel(t *testing.T) {
	dir := t.TempDir()
	slot := eventlog.CommandSlot{SlotPath: filepath.Join(dir, "slot.ndjson"), HistoryPath: filepath.Join(dir, "hist.ndjson")}

	assert.Error(t, dispatch.WriteOverlay(slot, protocol.OverlayCommand{CmdID: "x", Level: "C"}))
	_, err := os.Stat(slot.SlotPath)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, dispatch.WriteOverlay(slot, protocol.OverlayCommand{CmdID: "y", Level: protocol.LevelA}))
	var got protocol.OverlayCommand
	found, err := eventlog.LastRecord(slot.SlotPath, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "y", got.CmdID)
}

func TestWriteHUD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hud", "hud.md")
	require.NoError(t, dispatch.WriteHUD(path, "   "))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "blank text must not create the file")

	require.NoError(t, dispatch.WriteHUD(path, "# Focus\nShip the harness."))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Focus\nShip the harness.", string(data))
}

func TestQueueSpeech(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speech.ndjson")
	sp := &captureSpeaker{}

	require.NoError(t, dispatch.QueueSpeech(path, protocol.SpeechEntry{SpeechText: ""}, sp))
	require.NoError(t, dispatch.QueueSpeech(path, protocol.SpeechEntry{EventID: "e1", SpeechText: "Back to work."}, sp))

	entries, err := eventlog.ReadRecords[protocol.SpeechEntry](path, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].EventID)
	assert.Equal(t, []string{"Back to work."}, sp.said)
}

func TestSaySpeaker(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &recordingRunner{}
	s := dispatch.NewSaySpeaker("say", "Fred", 200, r, nil)
	s.Speak("first\nline", dispatch.IntensityNormal)
	s.Speak("urgent", dispatch.IntensityUrgent)
	s.Close()
	s.Close()

	calls := r.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "say", calls[0].name)
	assert.Equal(t, []string{"-v", "Fred", "-r", "200", "--", "first line"}, calls[0].args)
	assert.Equal(t, []string{"-v", "Fred", "-r", "230", "--", "urgent"}, calls[1].args)
}

func TestDesktopNotifier(t *testing.T) {
	ctx := context.Background()

	r := &recordingRunner{}
	mac := dispatch.NewDesktopNotifierFor("darwin", r)
	require.NoError(t, mac.Notify(ctx, "Coach", `Say "hi"`))
	require.NoError(t, mac.Notify(ctx, "Coach", "  "))

	linux := dispatch.NewDesktopNotifierFor("linux", r)
	require.NoError(t, linux.Notify(ctx, "Coach", "Drink water"))

	calls := r.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "osascript", calls[0].name)
	assert.Equal(t, []string{"-e", `display notification "Say \"hi\"" with title "Coach"`}, calls[0].args)
	assert.Equal(t, "notify-send", calls[1].name)
	assert.Equal(t, []string{"--app-name=coach", "--", "Coach", "Drink water"}, calls[1].args)
}
