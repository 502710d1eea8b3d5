// Package eventlog implements the day-partitioned NDJSON streams that the
// sampler, the engine and the overlay renderer use as a message bus.
//
// Every stream is one file per calendar day. Writers only ever append whole
// lines; readers tail a file from a byte offset and never surface a line
// whose terminating newline has not been written yet.
package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DayLayout is the date suffix layout of day-partitioned files.
const DayLayout = "2006-01-02"

// Ext is the file extension of every stream.
const Ext = ".ndjson"

// DailyPath returns dir/<stream>_<YYYY-MM-DD>.ndjson for day's calendar date.
func DailyPath(dir, stream string, day time.Time) string {
	return filepath.Join(dir, stream+"_"+day.Format(DayLayout)+Ext)
}

// parseDailyName extracts the date suffix of a stream file name. ok is false
// when name does not belong to stream or the suffix is not a date.
func parseDailyName(name, stream string, loc *time.Location) (day time.Time, ok bool) {
	prefix := stream + "_"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, Ext) {
		return time.Time{}, false
	}
	suffix := strings.TrimSuffix(strings.TrimPrefix(name, prefix), Ext)
	day, err := time.ParseInLocation(DayLayout, suffix, loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// Append encodes record as one JSON line and appends it to path, creating
// the file and its parent directories as needed. The line is written with a
// single write call on an O_APPEND descriptor so concurrent tailers observe
// either nothing or the complete line.
func Append(path string, record any) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record for %s: %w", path, err)
	}
	return AppendLine(path, line)
}

// AppendLine appends raw (without a trailing newline) plus "\n" to path.
func AppendLine(path string, raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // path is derived from the configured log dir
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	buf := make([]byte, 0, len(raw)+1)
	buf = append(buf, raw...)
	buf = append(buf, '\n')
	if _, err := f.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Touch creates path (and parents) if it does not exist, leaving existing
// content alone.
func Touch(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // path is derived from the configured log dir
	if err != nil {
		return fmt.Errorf("touch %s: %w", path, err)
	}
	return f.Close()
}
