package planner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner implements CommandRunner using os/exec.
type ExecCommandRunner struct {
	// Dir is the working directory of the command; empty means the
	// current directory.
	Dir string
}

// Run executes a command and returns its stdout. A non-zero exit returns an
// error carrying stderr.
func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s %s: %w: %s", name, summarize(args), err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s %s: %w", name, summarize(args), err)
	}
	return out, nil
}

// summarize keeps error messages short: prompts can be long.
func summarize(args []string) string {
	s := strings.Join(args, " ")
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
