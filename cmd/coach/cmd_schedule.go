package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"coach/pkg/schedule"
)

// newScheduleCmd creates the "coach schedule" subcommand.
func newScheduleCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print today's schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.paths.SchedulePath
			if raw {
				data, err := os.ReadFile(path) //nolint:gosec // configured schedule path
				if err != nil {
					return fmt.Errorf("read schedule: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			s, err := schedule.Read(path)
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(cmd.OutOrStdout(), "no schedule; run the engine to start alignment")
				return nil
			}
			if err != nil {
				return err
			}
			renderSchedule(cmd.OutOrStdout(), DefaultTheme(), s, time.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "yaml", false, "print the schedule document as stored")
	return cmd
}

// renderSchedule writes one line per block, marking ended blocks and the
// current one.
func renderSchedule(w io.Writer, t Theme, s *schedule.Schedule, now time.Time) {
	var b strings.Builder
	header := lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	b.WriteString(header.Render(fmt.Sprintf("%s (%s)", s.Day, s.Timezone)))
	b.WriteByte('\n')
	if !s.IsToday(now) {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Warning).Render("not today's schedule"))
		b.WriteByte('\n')
	}

	var cur *schedule.Block
	if s.IsToday(now) {
		cur = schedule.Resolve(s, now)
	}
	ended := lipgloss.NewStyle().Foreground(t.Muted)
	active := lipgloss.NewStyle().Bold(true).Foreground(t.Success)

	for _, blk := range s.Blocks {
		marker := " "
		style := lipgloss.NewStyle()
		switch {
		case cur != nil && blk.ID == cur.ID:
			marker, style = ">", active
		case s.IsToday(now) && blockEnded(blk, now):
			style = ended
		}
		row := fmt.Sprintf("%s %s-%s  %-8s %s", marker, blk.Start, blk.End, blk.Type, blockTitle(blk))
		b.WriteString(style.Render(row))
		b.WriteByte('\n')
	}
	fmt.Fprint(w, b.String())
}

func blockEnded(b schedule.Block, now time.Time) bool {
	_, end, err := b.Span(now)
	return err == nil && !end.After(now)
}

func blockTitle(b schedule.Block) string {
	if b.Title != "" {
		return b.Title
	}
	return b.ID
}
