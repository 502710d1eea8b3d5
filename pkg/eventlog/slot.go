package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CommandSlot is the overlay command channel: a "current" file that only
// ever holds the newest command, plus an unbounded history log.
type CommandSlot struct {
	SlotPath    string
	HistoryPath string
}

// Write truncates the slot, writes cmd as its only line, and appends cmd to
// the history log.
func (s CommandSlot) Write(cmd any) error {
	line, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode overlay command: %w", err)
	}
	line = append(line, '\n')

	if err := os.MkdirAll(filepath.Dir(s.SlotPath), 0o755); err != nil {
		return fmt.Errorf("create slot dir: %w", err)
	}
	if err := os.WriteFile(s.SlotPath, line, 0o644); err != nil { //nolint:gosec // renderers run as other users
		return fmt.Errorf("write slot %s: %w", s.SlotPath, err)
	}
	if s.HistoryPath == "" {
		return nil
	}
	if err := AppendLine(s.HistoryPath, line[:len(line)-1]); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}
