package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"coach/pkg/eventlog"
	"coach/pkg/protocol"
)

// newPruneCmd creates the "coach prune" subcommand.
func newPruneCmd(a *app) *cobra.Command {
	var keepDays int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete day-partitioned logs older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("keep-days") {
				keepDays = a.settings.Engine.LogKeepDays
			}
			removed, err := eventlog.PruneAll(a.paths.LogsDir, protocol.Streams, keepDays, time.Now())
			out := cmd.OutOrStdout()
			for _, p := range removed {
				fmt.Fprintf(out, "removed %s\n", filepath.Base(p))
			}
			fmt.Fprintf(out, "%d files removed\n", len(removed))
			return err
		},
	}

	cmd.Flags().IntVar(&keepDays, "keep-days", 7, "days of logs to keep (0 keeps everything)")
	return cmd
}
