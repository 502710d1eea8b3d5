package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newStopCmd creates the "coach stop" subcommand.
func newStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running engine",
		Long:  "Sends SIGTERM to the engine named by the PID file.\nA stale PID file is removed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pf := pidFile(a.paths.PIDPath)
			state, pid, err := pf.state()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch state {
			case engineStopped:
				fmt.Fprintln(out, "engine is not running")
			case engineStale:
				fmt.Fprintln(out, "removing stale PID file (process already dead)")
				return pf.remove()
			case engineRunning:
				fmt.Fprintf(out, "sending SIGTERM to engine (PID %d)\n", pid)
				if err := terminate(pid); err != nil {
					return err
				}
				fmt.Fprintln(out, "stop signal sent")
			}
			return nil
		},
	}
}
