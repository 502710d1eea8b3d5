package eventlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Prune deletes stream files in dir whose date is strictly older than
// today minus keepDays. Files whose suffix is not a date are kept.
// keepDays <= 0 disables pruning. It returns the removed paths.
func Prune(dir, stream string, keepDays int, today time.Time) ([]string, error) {
	if keepDays <= 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log dir: %w", err)
	}

	loc := today.Location()
	y, m, d := today.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, -keepDays)

	var removed []string
	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		day, ok := parseDailyName(e.Name(), stream, loc)
		if !ok || !day.Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
			continue
		}
		removed = append(removed, path)
	}
	sort.Strings(removed)
	return removed, errors.Join(errs...)
}

// PruneAll runs Prune for every stream and collects the removed paths.
func PruneAll(dir string, streams []string, keepDays int, today time.Time) ([]string, error) {
	var removed []string
	var errs []error
	for _, s := range streams {
		r, err := Prune(dir, s, keepDays, today)
		removed = append(removed, r...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return removed, errors.Join(errs...)
}
