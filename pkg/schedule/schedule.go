// Package schedule holds the day plan: a list of time blocks, its YAML
// codec, and the queries the engine runs against it each tick.
package schedule

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DayLayout is the layout of Schedule.Day.
const DayLayout = "2006-01-02"

// DefaultTimezone is written into synthesized schedules.
const DefaultTimezone = "America/Los_Angeles"

// ErrInvalid is returned (wrapped) by Validate and by Parse when the
// document decodes but breaks a structural rule.
var ErrInvalid = errors.New("invalid schedule")

// BlockType classifies a block.
type BlockType string

// Block types.
const (
	TypeCoding   BlockType = "coding"
	TypeResearch BlockType = "research"
	TypeAdmin    BlockType = "admin"
	TypeHabit    BlockType = "habit"
)

// Valid reports whether t is a known block type.
func (t BlockType) Valid() bool {
	switch t {
	case TypeCoding, TypeResearch, TypeAdmin, TypeHabit:
		return true
	}
	return false
}

// IsWork reports whether t is tracked for drift.
func (t BlockType) IsWork() bool {
	return t == TypeCoding || t == TypeResearch || t == TypeAdmin
}

// Block is one [start, end) interval of the day.
type Block struct {
	ID          string    `yaml:"id" json:"id"`
	Start       string    `yaml:"start" json:"start"`
	End         string    `yaml:"end" json:"end"`
	Type        BlockType `yaml:"type" json:"type"`
	HabitKind   string    `yaml:"habit_kind,omitempty" json:"habit_kind,omitempty"`
	Title       string    `yaml:"title" json:"title"`
	Intent      string    `yaml:"intent" json:"intent"`
	AllowedApps []string  `yaml:"allowed_apps,omitempty" json:"allowed_apps,omitempty"`
}

// IsHabit reports whether b is a habit block.
func (b Block) IsHabit() bool { return b.Type == TypeHabit }

// Schedule is one day's plan.
type Schedule struct {
	Timezone string  `yaml:"timezone" json:"timezone"`
	Day      string  `yaml:"day" json:"day"`
	Blocks   []Block `yaml:"blocks" json:"blocks"`
}

// IsToday reports whether the schedule's day is now's calendar date.
func (s *Schedule) IsToday(now time.Time) bool {
	return s != nil && s.Day == now.Format(DayLayout)
}

// Clone returns a deep copy of s.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	out := &Schedule{Timezone: s.Timezone, Day: s.Day, Blocks: make([]Block, len(s.Blocks))}
	for i, b := range s.Blocks {
		if b.AllowedApps != nil {
			b.AllowedApps = append([]string(nil), b.AllowedApps...)
		}
		out.Blocks[i] = b
	}
	return out
}

// Parse decodes a YAML schedule. It does not validate.
func Parse(data []byte) (*Schedule, error) {
	var s Schedule
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	return &s, nil
}

// Marshal encodes s as YAML.
func Marshal(s *Schedule) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("encode schedule: %w: nil", ErrInvalid)
	}
	out := s
	if out.Blocks == nil {
		out = s.Clone()
		out.Blocks = []Block{}
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode schedule: %w", err)
	}
	return data, nil
}

// Read loads the schedule at path. A missing file returns os.ErrNotExist
// (wrapped).
func Read(path string) (*Schedule, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the configured schedule file
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	return Parse(data)
}

// Write replaces the schedule at path atomically.
func Write(path string, s *Schedule) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create schedule dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp schedule: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp schedule: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp schedule: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace schedule: %w", err)
	}
	return nil
}

// Validate checks the structural rules a schedule must satisfy before it
// replaces the current one.
func (s *Schedule) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: empty document", ErrInvalid)
	}
	if _, err := time.Parse(DayLayout, s.Day); err != nil {
		return fmt.Errorf("%w: day %q", ErrInvalid, s.Day)
	}
	ref := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	seen := make(map[string]struct{}, len(s.Blocks))
	for i, b := range s.Blocks {
		if b.ID == "" {
			return fmt.Errorf("%w: block %d has no id", ErrInvalid, i)
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("%w: duplicate block id %q", ErrInvalid, b.ID)
		}
		seen[b.ID] = struct{}{}
		start, end, err := b.Span(ref)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if !end.After(start) {
			return fmt.Errorf("%w: block %q ends before it starts", ErrInvalid, b.ID)
		}
		if !b.Type.Valid() {
			return fmt.Errorf("%w: block %q has unknown type %q", ErrInvalid, b.ID, b.Type)
		}
		if b.IsHabit() != (b.HabitKind != "") {
			return fmt.Errorf("%w: block %q habit_kind must be set exactly for habit blocks", ErrInvalid, b.ID)
		}
	}
	return nil
}
