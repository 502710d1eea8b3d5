// Package dispatch delivers rendered coaching output to its targets: the
// overlay command slot, the HUD file, the speech queue and the desktop
// notifier.
package dispatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"coach/pkg/eventlog"
	"coach/pkg/protocol"
)

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// WriteOverlay puts cmd in the slot and its history.
func WriteOverlay(slot eventlog.CommandSlot, cmd protocol.OverlayCommand) error {
	if !cmd.Level.Valid() {
		return fmt.Errorf("overlay %s: invalid level %q", cmd.CmdID, cmd.Level)
	}
	if err := slot.Write(cmd); err != nil {
		return fmt.Errorf("write overlay %s: %w", cmd.CmdID, err)
	}
	return nil
}

// WriteHUD replaces the HUD file with text. Blank text is ignored.
func WriteHUD(path, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create hud dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil { //nolint:gosec // hud is read by other local tools
		return fmt.Errorf("write hud: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace hud: %w", err)
	}
	return nil
}

// QueueSpeech appends entry to the speech log and, when speaker is set,
// hands the text to it. Blank text is ignored.
func QueueSpeech(logPath string, entry protocol.SpeechEntry, speaker Speaker) error {
	if strings.TrimSpace(entry.SpeechText) == "" {
		return nil
	}
	if err := eventlog.Append(logPath, entry); err != nil {
		return fmt.Errorf("append speech: %w", err)
	}
	if speaker != nil {
		speaker.Speak(entry.SpeechText, IntensityUrgent)
	}
	return nil
}

// oneLine flattens text for single-line command arguments.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}
