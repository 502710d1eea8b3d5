package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"coach/pkg/eventlog"
	"coach/pkg/protocol"
)

// actionFor maps a command-line action name, short or as written in the
// log, to an overlay action.
func actionFor(name string) (protocol.ActionType, bool) {
	switch name {
	case "pause", string(protocol.ActionPause):
		return protocol.ActionPause, true
	case "answer", string(protocol.ActionAlignChoice):
		return protocol.ActionAlignChoice, true
	case "back", "back-on-track", string(protocol.ActionBackOnTrack):
		return protocol.ActionBackOnTrack, true
	case string(protocol.ActionRecover):
		return protocol.ActionRecover, true
	}
	return "", false
}

// newActCmd creates the "coach act" subcommand.
func newActCmd(a *app) *cobra.Command {
	var blockID string

	cmd := &cobra.Command{
		Use:   "act <action> [question-id value]",
		Short: "Send an overlay action to the engine",
		Long: "Appends one action to today's overlay action log, as an overlay would.\n\n" +
			"Actions:\n" +
			"  pause                      pause nudges for the configured window\n" +
			"  answer <question-id> <v>   answer an alignment question\n" +
			"  back [--block id]          acknowledge a nudge or finish a habit\n" +
			"  recover                    ask for a revised schedule",
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			action, err := parseAction(args, blockID, now)
			if err != nil {
				return err
			}
			if err := writeAction(a.paths.LogsDir, action, now); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %s\n", action.Action)
			return nil
		},
	}

	cmd.Flags().StringVar(&blockID, "block", "", "block id for back_on_track")
	return cmd
}

// parseAction turns command-line arguments into an overlay action.
func parseAction(args []string, blockID string, now time.Time) (protocol.OverlayAction, error) {
	if len(args) == 0 {
		return protocol.OverlayAction{}, fmt.Errorf("missing action")
	}
	typ, ok := actionFor(args[0])
	if !ok {
		return protocol.OverlayAction{}, fmt.Errorf("unknown action %q", args[0])
	}
	a := protocol.OverlayAction{TS: protocol.At(now), Action: typ}

	switch typ {
	case protocol.ActionAlignChoice:
		if len(args) != 3 {
			return protocol.OverlayAction{}, fmt.Errorf("answer needs <question-id> <value>")
		}
		a.QuestionID, a.Value = args[1], args[2]
	case protocol.ActionBackOnTrack:
		if len(args) > 2 {
			return protocol.OverlayAction{}, fmt.Errorf("%s takes at most a block id", typ)
		}
		a.BlockID = blockID
		if len(args) == 2 {
			a.BlockID = args[1]
		}
	default:
		if len(args) > 1 {
			return protocol.OverlayAction{}, fmt.Errorf("%s takes no arguments", typ)
		}
	}
	return a, nil
}

// writeAction appends a to the overlay action log for now's date.
func writeAction(logsDir string, a protocol.OverlayAction, now time.Time) error {
	path := eventlog.DailyPath(logsDir, protocol.StreamOverlayActions, now)
	if err := eventlog.Append(path, a); err != nil {
		return fmt.Errorf("write overlay action: %w", err)
	}
	return nil
}
