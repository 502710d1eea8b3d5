package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// newOverlayCmd creates the "coach overlay" subcommand.
func newOverlayCmd(a *app) *cobra.Command {
	var altScreen bool

	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "Render overlay commands in the terminal",
		Long: "Shows the newest overlay command and writes overlay actions from key presses.\n" +
			"It refreshes when the logs directory changes and polls once a second.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := os.MkdirAll(a.paths.LogsDir, 0o755); err != nil {
				return fmt.Errorf("create logs dir: %w", err)
			}
			watcher := initWatcher(a.paths.LogsDir)
			if watcher != nil {
				defer func() { _ = watcher.Close() }()
			}

			opts := []tea.ProgramOption{tea.WithContext(cmd.Context())}
			if altScreen {
				opts = append(opts, tea.WithAltScreen())
			}
			p := tea.NewProgram(newOverlayModel(a.paths.LogsDir, watcher), opts...)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run overlay: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&altScreen, "alt-screen", true, "use the terminal's alternate screen")
	return cmd
}
