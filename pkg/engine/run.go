package engine

import (
	"context"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"coach/pkg/eventlog"
	"coach/pkg/protocol"
)

// Run prunes old logs, then ticks until ctx is cancelled or the run budget
// is spent. Writes in the logs directory wake the loop early; the ticker
// alone drives it when the watcher is unavailable. Run returns nil on a
// clean stop.
func (e *Engine) Run(ctx context.Context) error {
	start := e.nowFunc()
	e.prune(start)

	var wake <-chan fsnotify.Event
	var watchErrs <-chan error
	if w := e.watch(); w != nil {
		defer func() { _ = w.Close() }()
		wake, watchErrs = w.Events, w.Errors
	}

	ticker := time.NewTicker(e.cfg.Tick)
	defer ticker.Stop()

	e.log.Info("engine running",
		zap.String("logs", e.cfg.Paths.LogsDir),
		zap.String("schedule", e.cfg.Paths.SchedulePath),
		zap.Duration("tick", e.cfg.Tick))

	var lastTick time.Time
	for {
		e.Tick(ctx)
		lastTick = time.Now()
		if ctx.Err() != nil {
			e.log.Info("engine stopped")
			return nil
		}

		var stop bool
		if start, stop = e.budgetExceeded(ctx, start, e.nowFunc()); stop {
			e.log.Info("engine exiting after max runtime")
			return nil
		}

	wait:
		for {
			select {
			case <-ctx.Done():
				e.log.Info("engine stopped")
				return nil
			case <-ticker.C:
				break wait
			case ev, ok := <-wake:
				if !ok {
					wake = nil
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 || time.Since(lastTick) < e.cfg.WakeDebounce {
					continue
				}
				break wait
			case err, ok := <-watchErrs:
				if !ok {
					watchErrs = nil
					continue
				}
				e.log.Warn("log watcher error", zap.Error(err))
			}
		}
	}
}

// watch returns a watcher on the logs directory, or nil when one cannot be
// set up.
func (e *Engine) watch() *fsnotify.Watcher {
	dir := e.cfg.Paths.LogsDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.log.Warn("create logs dir", zap.Error(err))
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		e.log.Info("fsnotify unavailable, polling only", zap.Error(err))
		return nil
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		e.log.Info("fsnotify watch failed, polling only", zap.String("dir", dir), zap.Error(err))
		return nil
	}
	return w
}

// prune runs the retention sweep over every stream.
func (e *Engine) prune(now time.Time) {
	removed, err := eventlog.PruneAll(e.cfg.Paths.LogsDir, protocol.Streams, e.cfg.LogKeepDays, now)
	if err != nil {
		e.log.Warn("prune logs", zap.Error(err))
	}
	if len(removed) > 0 {
		e.log.Info("pruned logs", zap.Int("files", len(removed)))
	}
}
