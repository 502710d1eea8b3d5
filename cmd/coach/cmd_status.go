package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"coach/pkg/engine"
	"coach/pkg/schedule"
)

// newStatusCmd creates the "coach status" subcommand.
func newStatusCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the engine, block, habit, drift and pause state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, a.settings.Store.Backend, a.paths)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			daemon, pid, err := pidFile(a.paths.PIDPath).state()
			if err != nil {
				return err
			}
			st := engine.ReadStatus(ctx, *a.paths, store, time.Now())

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Engine engineState `json:"engine"`
					PID    int         `json:"pid,omitempty"`
					engine.Status
				}{daemon, pid, st})
			}
			renderStatus(cmd.OutOrStdout(), DefaultTheme(), daemon, pid, st)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")
	return cmd
}

// renderStatus writes a one-screen summary of st.
func renderStatus(w io.Writer, t Theme, daemon engineState, pid int, st engine.Status) {
	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(t.Label(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	switch daemon {
	case engineRunning:
		line("engine", lipgloss.NewStyle().Foreground(t.Success).Render(fmt.Sprintf("running (PID %d)", pid)))
	case engineStale:
		line("engine", lipgloss.NewStyle().Foreground(t.Warning).Render(fmt.Sprintf("stale PID file (%d)", pid)))
	default:
		line("engine", lipgloss.NewStyle().Foreground(t.Muted).Render("stopped"))
	}

	switch {
	case st.Schedule == nil:
		line("schedule", "none; alignment required")
	case st.NeedsAlignment:
		line("schedule", fmt.Sprintf("%s is stale; alignment required", st.Schedule.Day))
	default:
		line("schedule", fmt.Sprintf("%s, %d blocks", st.Schedule.Day, len(st.Schedule.Blocks)))
	}
	if st.Alignment.Answers != nil {
		line("align", fmt.Sprintf("question %d answered so far: %d", st.Alignment.Step+1, len(st.Alignment.Answers)))
	}

	if st.Current != nil {
		line("now", blockLine(*st.Current))
	} else if !st.NeedsAlignment {
		line("now", "between blocks")
	}
	if st.Next != nil {
		line("next", blockLine(*st.Next))
	}

	if st.Current != nil && st.Current.IsHabit() && st.Habit.BlockID == st.Current.ID {
		switch {
		case st.Habit.Done:
			line("habit", "done")
		case st.Habit.Escalated:
			line("habit", lipgloss.NewStyle().Foreground(t.Error).Render("overdue"))
		default:
			line("habit", "due since "+st.Habit.DueAt.Format(schedule.ClockLayout))
		}
	}

	if st.OffSchedule.BlockID != "" {
		drift := fmt.Sprintf("off schedule in %s since %s", st.OffSchedule.BlockID, st.OffSchedule.Since.Format(schedule.ClockLayout))
		if st.OffSchedule.RecoverTriggered {
			drift += ", recovery triggered"
		}
		line("drift", lipgloss.NewStyle().Foreground(t.Warning).Render(drift))
	}

	if st.Paused() {
		line("pause", "until "+st.Pause.PauseUntil.Format(schedule.ClockLayout))
	}

	if a := st.LastActivity; a != nil {
		line("activity", fmt.Sprintf("%s %s %s", a.TS.Format(schedule.ClockLayout), a.App, a.Status))
	}
	if f := st.Foreground; f != nil {
		line("window", strings.TrimSpace(f.App+" "+f.Title))
	}
	if o := st.LastOverlay; o != nil {
		tag := lipgloss.NewStyle().Foreground(t.StyleColor(o.StyleID)).Render(fmt.Sprintf("[%s %s]", o.Level, o.StyleID))
		line("overlay", tag+" "+o.Headline)
	}

	fmt.Fprint(w, b.String())
}

func blockLine(b schedule.Block) string {
	title := b.Title
	if title == "" {
		title = b.ID
	}
	return fmt.Sprintf("%s-%s %s (%s)", b.Start, b.End, title, b.Type)
}
