package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// engineState is what the pid file says about the engine process.
type engineState string

const (
	engineRunning engineState = "running"
	engineStopped engineState = "stopped"
	engineStale   engineState = "stale" // pid file left behind by a dead process
)

// pidFile is the engine's pid file. `coach run` holds it while the engine
// runs; stop and status only read it.
type pidFile string

func (f pidFile) write(pid int) error {
	path := string(f)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create pid dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

func (f pidFile) read() (int, error) {
	data, err := os.ReadFile(string(f)) //nolint:gosec // path comes from the resolved coach home
	if err != nil {
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pid file %s holds %q", f, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

// remove deletes the pid file; a missing file is fine.
func (f pidFile) remove() error {
	if err := os.Remove(string(f)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove pid file: %w", err)
	}
	return nil
}

// state reports whether the engine named by the pid file is alive. The pid
// is 0 when there is no pid file.
func (f pidFile) state() (engineState, int, error) {
	pid, err := f.read()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return engineStopped, 0, nil
	case err != nil:
		return engineStopped, 0, err
	case processAlive(pid):
		return engineRunning, pid, nil
	}
	return engineStale, pid, nil
}

// hold returns a context that ends on SIGINT or SIGTERM. release ends it
// as well and gives up the pid file.
func (f pidFile) hold(parent context.Context) (ctx context.Context, release func()) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	return ctx, func() {
		stop()
		_ = f.remove()
	}
}

// processAlive sends signal 0 to pid.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// terminate asks the engine to finish its current tick and exit.
func terminate(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find engine process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal engine process %d: %w", pid, err)
	}
	return nil
}
