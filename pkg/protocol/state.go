package protocol

// State document keys. Each key has exactly one writer: the engine.
const (
	KeyAlignment     = "align_state"
	KeyAlignPrompted = "align_prompted"
	KeyHabit         = "last_habit"
	KeyOffSchedule   = "off_schedule_state"
	KeyCurrentBlock  = "current_block"
	KeyPause         = "pause"
	KeyCursors       = "cursors"
)

// AlignmentState tracks progress through the alignment questions.
type AlignmentState struct {
	Step    int               `json:"step"`
	Answers map[string]string `json:"answers"`
}

// AlignPrompted records the last question shown and when, for re-prompt
// suppression.
type AlignPrompted struct {
	QuestionID string    `json:"question_id,omitempty"`
	PromptedAt Timestamp `json:"prompted_at"`
}

// HabitState tracks the habit block that is (or was last) current.
type HabitState struct {
	BlockID   string    `json:"block_id,omitempty"`
	DueAt     Timestamp `json:"due_at"`
	Escalated bool      `json:"escalated"`
	Done      bool      `json:"done"`
}

// OffScheduleState tracks continuous off-task drift in one work block.
// The zero value means "not tracking".
type OffScheduleState struct {
	BlockID          string    `json:"block_id,omitempty"`
	Since            Timestamp `json:"since"`
	LastEmitted      Timestamp `json:"last_emitted"`
	RecoverTriggered bool      `json:"recover_triggered"`
}

// CurrentBlockState caches the block that was current on the last tick.
type CurrentBlockState struct {
	BlockID   string `json:"block_id,omitempty"`
	BlockType string `json:"block_type,omitempty"`
	BlockName string `json:"block_name,omitempty"`
}

// PauseState holds the end of the active pause window, if any.
type PauseState struct {
	PauseUntil Timestamp `json:"pause_until"`
}

// Cursors holds tail offsets keyed by stream file path, and the day the
// engine last opened streams for.
type Cursors struct {
	Day     string           `json:"day,omitempty"`
	Streams map[string]int64 `json:"streams"`
}
