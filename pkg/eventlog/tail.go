package eventlog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// Tailer incrementally reads complete lines appended to one file. The
// offset lives only in the Tailer; callers that want to resume across
// restarts persist Offset themselves.
type Tailer struct {
	Path   string
	Offset int64
}

// NewTailer returns a Tailer positioned at offset.
func NewTailer(path string, offset int64) *Tailer {
	return &Tailer{Path: path, Offset: offset}
}

// Next returns every complete, non-blank line appended since the last call.
//
// If the bytes between the offset and end-of-file do not end with a newline
// a writer is mid-line: Next returns no lines and leaves the offset alone so
// the same bytes are read again once the line is complete. A missing file
// yields no lines. A file that shrank below the offset was truncated or
// replaced and is re-read from the start.
func (t *Tailer) Next() ([][]byte, error) {
	f, err := os.Open(t.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", t.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", t.Path, err)
	}
	size := info.Size()
	if size < t.Offset {
		t.Offset = 0
	}
	if size == t.Offset {
		return nil, nil
	}

	if _, err := f.Seek(t.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", t.Path, err)
	}
	data := make([]byte, size-t.Offset)
	n, err := io.ReadFull(f, data)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read %s: %w", t.Path, err)
	}
	data = data[:n]
	if len(data) == 0 || data[len(data)-1] != '\n' {
		return nil, nil
	}

	t.Offset += int64(len(data))
	return splitLines(data), nil
}

// splitLines splits newline-terminated data into non-blank lines.
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimRight(line, "\r")
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
