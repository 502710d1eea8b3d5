package eventlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"coach/pkg/protocol"
)

const maxLineSize = 1024 * 1024

// ReadLastLines returns up to n trailing non-blank lines of path, oldest
// first. A missing file returns nil.
func ReadLastLines(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(ring) == n {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return ring, nil
}

// LastRecord decodes the last non-blank line of path into v. found is false
// when the file is missing or empty. A line that does not decode returns a
// *protocol.MalformedRecordError.
func LastRecord(path string, v any) (found bool, err error) {
	lines, err := ReadLastLines(path, 1)
	if err != nil || len(lines) == 0 {
		return false, err
	}
	if err := json.Unmarshal([]byte(lines[0]), v); err != nil {
		return false, &protocol.MalformedRecordError{Source: path, Err: err}
	}
	return true, nil
}

// ReadRecords decodes the last n lines of path as T, skipping lines that do
// not decode.
func ReadRecords[T any](path string, n int) ([]T, error) {
	lines, err := ReadLastLines(path, n)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(lines))
	for _, line := range lines {
		var rec T
		if json.Unmarshal([]byte(line), &rec) != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
