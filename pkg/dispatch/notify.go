package dispatch

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// DesktopNotifier uses osascript on macOS and notify-send elsewhere.
type DesktopNotifier struct {
	goos   string
	runner CommandRunner
}

// NewDesktopNotifier returns a notifier for the running OS.
func NewDesktopNotifier(runner CommandRunner) *DesktopNotifier {
	return &DesktopNotifier{goos: runtime.GOOS, runner: runner}
}

// NewDesktopNotifierFor returns a notifier for goos.
func NewDesktopNotifierFor(goos string, runner CommandRunner) *DesktopNotifier {
	return &DesktopNotifier{goos: goos, runner: runner}
}

// Notify implements Notifier. Blank bodies are ignored.
func (n *DesktopNotifier) Notify(ctx context.Context, title, body string) error {
	body = oneLine(body)
	if body == "" {
		return nil
	}
	name, args := n.command(oneLine(title), body)
	if _, err := n.runner.Run(ctx, name, args...); err != nil {
		return fmt.Errorf("notify via %s: %w", name, err)
	}
	return nil
}

func (n *DesktopNotifier) command(title, body string) (string, []string) {
	if n.goos == "darwin" {
		script := fmt.Sprintf("display notification %s with title %s", appleQuote(body), appleQuote(title))
		return "osascript", []string{"-e", script}
	}
	return "notify-send", []string{"--app-name=coach", "--", title, body}
}

// appleQuote renders s as an AppleScript string literal.
func appleQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
