package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"coach/pkg/eventlog"
	"coach/pkg/protocol"
)

// logsConfig holds configuration for the logs command.
type logsConfig struct {
	tail   int
	follow bool
	day    string
}

// newLogsCmd creates the "coach logs" subcommand.
func newLogsCmd(a *app) *cobra.Command {
	var cfg logsConfig

	cmd := &cobra.Command{
		Use:       "logs [stream]",
		Short:     "Show and follow a day-partitioned stream",
		Long:      "Prints the last lines of one stream (default: events) for today or --day.\nWith --follow, new lines are printed as they are appended.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: protocol.Streams,
		RunE: func(cmd *cobra.Command, args []string) error {
			stream := protocol.StreamEvents
			if len(args) == 1 {
				stream = args[0]
			}
			if !slices.Contains(protocol.Streams, stream) {
				return fmt.Errorf("unknown stream %q", stream)
			}
			day := time.Now()
			if cfg.day != "" {
				d, err := time.ParseInLocation(eventlog.DayLayout, cfg.day, time.Local)
				if err != nil {
					return fmt.Errorf("parse --day: %w", err)
				}
				day = d
			}
			path := eventlog.DailyPath(a.paths.LogsDir, stream, day)

			w := cmd.OutOrStdout()
			if err := printLines(w, path, cfg.tail); err != nil {
				return err
			}
			if cfg.follow {
				return followLines(cmd.Context(), w, path, time.Second)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.tail, "tail", 20, "number of recent lines to show")
	cmd.Flags().BoolVarP(&cfg.follow, "follow", "f", false, "poll for new lines every 1s")
	cmd.Flags().StringVar(&cfg.day, "day", "", "date to read (YYYY-MM-DD, default today)")

	return cmd
}

// printLines writes the last n lines of path.
func printLines(w io.Writer, path string, n int) error {
	lines, err := eventlog.ReadLastLines(path, n)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Fprintln(w, "no records found")
		return nil
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}

// followLines polls path for appended lines until ctx is done.
func followLines(ctx context.Context, w io.Writer, path string, every time.Duration) error {
	t := eventlog.NewTailer(path, 0)
	if _, err := t.Next(); err != nil {
		return err
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			lines, err := t.Next()
			if err != nil {
				return err
			}
			for _, l := range lines {
				fmt.Fprintln(w, string(l))
			}
		}
	}
}
