package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"coach/pkg/config"
	"coach/pkg/eventlog"
	"coach/pkg/planner"
	"coach/pkg/protocol"
	"coach/pkg/schedule"
	"coach/pkg/statestore"
)

func testPaths(dir string) config.Paths {
	return config.Paths{
		Home:         dir,
		LogsDir:      filepath.Join(dir, "logs"),
		StateDir:     filepath.Join(dir, "state"),
		SchedulePath: filepath.Join(dir, "state", "schedule.yaml"),
		StateDBPath:  filepath.Join(dir, "state.db"),
		PIDPath:      filepath.Join(dir, "coach.pid"),
		ConfigPath:   filepath.Join(dir, "coach.toml"),
		HUDPath:      filepath.Join(dir, "hud", "hud.md"),
	}
}

type fakePlanner struct {
	mu      sync.Mutex
	reqs    []planner.Request
	ctxErrs []error
	respond func(req planner.Request) (*planner.Response, error)
}

func (f *fakePlanner) Plan(ctx context.Context, req planner.Request) (*planner.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.respond == nil {
		return nil, planner.ErrNoResponse
	}
	return f.respond(req)
}

func (f *fakePlanner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

// overlayReply returns a planner that always answers with ov.
func overlayReply(ov planner.Overlay) func(planner.Request) (*planner.Response, error) {
	return func(planner.Request) (*planner.Response, error) {
		o := ov
		if err := o.Validate(); err != nil {
			return nil, err
		}
		return &planner.Response{Overlay: &o, HUDText: "hud", SpeechText: "speak"}, nil
	}
}

// recoverOnly answers recovery requests with resp() and nothing else.
func recoverOnly(resp func() *planner.Response) func(planner.Request) (*planner.Response, error) {
	return func(req planner.Request) (*planner.Response, error) {
		if req.Message != planner.RecoverMessage {
			return nil, planner.ErrNoResponse
		}
		return resp(), nil
	}
}

type harness struct {
	t       *testing.T
	e       *Engine
	now     time.Time
	paths   config.Paths
	store   statestore.Store
	planner *fakePlanner
	ids     int
}

var day0 = time.Date(2026, 3, 7, 10, 0, 0, 0, time.Local)

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	paths := testPaths(t.TempDir())
	h := &harness{
		t:       t,
		now:     day0,
		paths:   paths,
		store:   statestore.NewFileStore(paths.StateDir),
		planner: &fakePlanner{},
	}
	h.e = h.newEngine(mutate)
	return h
}

// newEngine builds another engine over the same files and store, as after
// a restart.
func (h *harness) newEngine(mutate func(*Config)) *Engine {
	cfg := DefaultConfig(h.paths)
	cfg.Cooldown = 0
	if mutate != nil {
		mutate(&cfg)
	}
	e := New(cfg, Deps{Store: h.store, Planner: h.planner})
	e.nowFunc = func() time.Time { return h.now }
	e.newID = func() string {
		h.ids++
		return fmt.Sprintf("id-%d", h.ids)
	}
	return e
}

func (h *harness) tick()                    { h.e.Tick(context.Background()) }
func (h *harness) advance(d time.Duration) { h.now = h.now.Add(d) }
func (h *harness) at(hhmm string) {
	t, err := schedule.ParseClock(hhmm, h.now)
	require.NoError(h.t, err)
	h.now = t
}

func (h *harness) logPath(stream string) string {
	return eventlog.DailyPath(h.paths.LogsDir, stream, h.now)
}

func (h *harness) append(stream string, v any) {
	h.t.Helper()
	require.NoError(h.t, eventlog.Append(h.logPath(stream), v), "append %s", stream)
}

func (h *harness) act(a protocol.OverlayAction) { h.append(protocol.StreamOverlayActions, a) }

func (h *harness) event(typ protocol.EventType, id string) {
	h.append(protocol.StreamEvents, protocol.Event{TS: protocol.At(h.now), Type: typ, EventID: id, Source: protocol.SourceMonitor})
}

func (h *harness) activity(status protocol.ActivityStatus) {
	h.append(protocol.StreamActivity, protocol.Activity{TS: protocol.At(h.now), App: "Safari", Title: "news", Status: status})
}

func (h *harness) events() []protocol.Event {
	h.t.Helper()
	evs, err := eventlog.ReadRecords[protocol.Event](h.logPath(protocol.StreamEvents), 100000)
	require.NoError(h.t, err)
	return evs
}

func (h *harness) count(typ protocol.EventType) int {
	n := 0
	for _, ev := range h.events() {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func (h *harness) overlays() []protocol.OverlayCommand {
	h.t.Helper()
	cmds, err := eventlog.ReadRecords[protocol.OverlayCommand](h.logPath(protocol.StreamOverlayHistory), 100000)
	require.NoError(h.t, err)
	return cmds
}

func (h *harness) overlaysFor(typ protocol.EventType) []protocol.OverlayCommand {
	var out []protocol.OverlayCommand
	for _, c := range h.overlays() {
		if c.EventType == typ {
			out = append(out, c)
		}
	}
	return out
}

func (h *harness) writeSchedule(blocks ...schedule.Block) {
	h.t.Helper()
	s := &schedule.Schedule{Timezone: schedule.DefaultTimezone, Day: h.now.Format(schedule.DayLayout), Blocks: blocks}
	require.NoError(h.t, schedule.Write(h.paths.SchedulePath, s))
}

func (h *harness) readSchedule() *schedule.Schedule {
	h.t.Helper()
	s, err := schedule.Read(h.paths.SchedulePath)
	require.NoError(h.t, err)
	return s
}

// idleSchedule is a schedule for today whose only block is in the evening,
// so morning ticks run the event phase without block transitions.
func (h *harness) idleSchedule() {
	h.writeSchedule(schedule.Block{ID: "evening", Start: "20:00", End: "21:00", Type: schedule.TypeAdmin, Title: "Inbox"})
}
