// Package planner talks to the external planning agent: it builds the
// prompts, runs the agent as a subprocess, and checks what comes back.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrNoResponse is returned when the agent failed, timed out, or printed
// nothing that parses as a response object.
var ErrNoResponse = errors.New("no response from planner")

// DefaultTimeout bounds one planner call.
const DefaultTimeout = 90 * time.Second

// Request is one planner call: a message plus files the agent may read.
type Request struct {
	Message string
	Files   []string
}

// Planner produces coaching output for a request.
type Planner interface {
	Plan(ctx context.Context, req Request) (*Response, error)
}

// ExecPlanner runs `<Command> run --agent <Agent> -f <file>... -- <message>`.
type ExecPlanner struct {
	Command string
	Agent   string
	Timeout time.Duration
	Runner  CommandRunner
	Logger  *zap.Logger
}

// NewExecPlanner returns an ExecPlanner with the opencode defaults.
func NewExecPlanner(command, agent string, timeout time.Duration, logger *zap.Logger) *ExecPlanner {
	if command == "" {
		command = "opencode"
	}
	if agent == "" {
		agent = "coach_plan"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecPlanner{
		Command: command,
		Agent:   agent,
		Timeout: timeout,
		Runner:  &ExecCommandRunner{},
		Logger:  logger,
	}
}

// Args returns the argument vector for req.
func (p *ExecPlanner) Args(req Request) []string {
	args := []string{"run", "--agent", p.Agent}
	for _, f := range req.Files {
		args = append(args, "-f", f)
	}
	return append(args, "--", req.Message)
}

// Plan implements Planner.
func (p *ExecPlanner) Plan(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	out, err := p.Runner.Run(ctx, p.Command, p.Args(req)...)
	if err != nil {
		p.Logger.Warn("planner call failed", zap.String("agent", p.Agent), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNoResponse, err)
	}
	resp, err := ParseResponse(out)
	if err != nil {
		p.Logger.Warn("planner output unusable", zap.String("agent", p.Agent), zap.Int("bytes", len(out)))
		return nil, err
	}
	return resp, nil
}
