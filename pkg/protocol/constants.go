package protocol

// Directory and path constants used throughout coach.
const (
	// CoachDir is the user-level state directory (e.g., ~/.coach).
	CoachDir = ".coach"

	// LogsDir holds the day-partitioned NDJSON streams.
	LogsDir = "logs"

	// StateDir holds the schedule and the state documents.
	StateDir = "state"

	// HUDDir holds the HUD text written for editor/status-bar integrations.
	HUDDir = "hud"
)

// Stream names. Each stream is one NDJSON file per calendar day named
// <stream>_<YYYY-MM-DD>.ndjson inside the logs directory.
const (
	StreamEvents         = "events"
	StreamActivity       = "activity"
	StreamOverlayActions = "overlay_actions"
	StreamOverlayCmd     = "overlay_cmd"
	StreamOverlayHistory = "overlay_cmd_history"
	StreamSpeech         = "speech"
)

// Streams lists every day-partitioned stream, in retention-sweep order.
var Streams = []string{ //nolint:gochecknoglobals // fixed table
	StreamActivity,
	StreamEvents,
	StreamOverlayCmd,
	StreamOverlayHistory,
	StreamOverlayActions,
	StreamSpeech,
}

// Event and command sources.
const (
	SourceRunner  = "runner"
	SourceOverlay = "overlay"
	SourceMonitor = "monitor"
)
