package protocol

// EventType names one entry of the closed event vocabulary.
type EventType string

// Event types understood by the engine.
const (
	EventDriftStart        EventType = "DRIFT_START"
	EventDriftPersist      EventType = "DRIFT_PERSIST"
	EventRecoverTrigger    EventType = "RECOVER_TRIGGER"
	EventBlockBoundary     EventType = "BLOCK_BOUNDARY"
	EventStuck             EventType = "STUCK"
	EventAlignRequired     EventType = "ALIGN_REQUIRED"
	EventAlignAnswer       EventType = "ALIGN_ANSWER"
	EventBlockStart        EventType = "BLOCK_START"
	EventBlockEnd          EventType = "BLOCK_END"
	EventLate              EventType = "LATE"
	EventOffSchedule       EventType = "OFF_SCHEDULE"
	EventHabitDue          EventType = "HABIT_DUE"
	EventHabitEscalate     EventType = "HABIT_ESCALATE"
	EventHabitDone         EventType = "HABIT_DONE"
	EventScheduleCommitted EventType = "SCHEDULE_COMMITTED"
	EventScheduleUpdated   EventType = "SCHEDULE_UPDATED"
)

// EventNudgeAck is written when the user acknowledges a nudge outside a
// habit block. It is outside the closed set: the event phase ignores it.
const EventNudgeAck EventType = "NUDGE_ACK"

var knownEvents = map[EventType]struct{}{ //nolint:gochecknoglobals // fixed table
	EventDriftStart:        {},
	EventDriftPersist:      {},
	EventRecoverTrigger:    {},
	EventBlockBoundary:     {},
	EventStuck:             {},
	EventAlignRequired:     {},
	EventAlignAnswer:       {},
	EventBlockStart:        {},
	EventBlockEnd:          {},
	EventLate:              {},
	EventOffSchedule:       {},
	EventHabitDue:          {},
	EventHabitEscalate:     {},
	EventHabitDone:         {},
	EventScheduleCommitted: {},
	EventScheduleUpdated:   {},
}

// Known reports whether t belongs to the closed event vocabulary.
func (t EventType) Known() bool {
	_, ok := knownEvents[t]
	return ok
}

// IsDrift reports whether t is one of the sampler's drift events.
func (t EventType) IsDrift() bool {
	return t == EventDriftStart || t == EventDriftPersist
}

// Event is one immutable line of the event log. Fields after Source are
// type-specific and omitted when empty.
type Event struct {
	TS        Timestamp `json:"ts"`
	Type      EventType `json:"type"`
	EventID   string    `json:"event_id"`
	BlockID   string    `json:"block_id,omitempty"`
	BlockName string    `json:"block_name,omitempty"`
	Source    string    `json:"source"`

	HabitKind  string   `json:"habit_kind,omitempty"`
	Message    string   `json:"message,omitempty"`
	NextAction string   `json:"next_action,omitempty"`
	QuestionID string   `json:"question_id,omitempty"`
	Question   string   `json:"question,omitempty"`
	Choices    []string `json:"choices,omitempty"`
	Answer     string   `json:"answer,omitempty"`
	App        string   `json:"app,omitempty"`
	URLDomain  string   `json:"url_domain,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

// ActivityStatus is the sampler's classification of one sample.
type ActivityStatus string

// Activity statuses.
const (
	StatusOnTask  ActivityStatus = "on_task"
	StatusOffTask ActivityStatus = "off_task"
	StatusUnsure  ActivityStatus = "unsure"
)

// Activity is one classification record written by the sampler.
type Activity struct {
	TS           Timestamp      `json:"ts"`
	BlockID      string         `json:"block_id,omitempty"`
	App          string         `json:"app"`
	Title        string         `json:"title"`
	URLDomain    string         `json:"url_domain,omitempty"`
	Status       ActivityStatus `json:"status"`
	Confidence   *float64       `json:"confidence,omitempty"`
	Reason       string         `json:"reason"`
	ShortCaption string         `json:"short_caption,omitempty"`
}

// ActionType names a user action emitted by an overlay renderer.
type ActionType string

// Overlay actions.
const (
	ActionPause       ActionType = "pause_15"
	ActionAlignChoice ActionType = "align_choice"
	ActionBackOnTrack ActionType = "back_on_track"
	ActionRecover     ActionType = "recover"
)

// OverlayAction is one line of the overlay action log.
type OverlayAction struct {
	TS         Timestamp  `json:"ts"`
	Action     ActionType `json:"action"`
	QuestionID string     `json:"question_id,omitempty"`
	Value      string     `json:"value,omitempty"`
	BlockID    string     `json:"block_id,omitempty"`
}

// Level is the overlay intrusiveness: A is a banner, B is a blocking prompt.
type Level string

// Overlay levels.
const (
	LevelA Level = "A"
	LevelB Level = "B"
)

// Valid reports whether l is A or B.
func (l Level) Valid() bool {
	return l == LevelA || l == LevelB
}

// Overlay style ids.
const (
	StyleCalm         = "calm"
	StyleStrict       = "strict"
	StylePatternBreak = "pattern_break"
)

// OverlayCommand is a rendering instruction for the overlay surface.
type OverlayCommand struct {
	TS            Timestamp `json:"ts"`
	CmdID         string    `json:"cmd_id"`
	SourceEventID string    `json:"source_event_id,omitempty"`
	EventType     EventType `json:"event_type,omitempty"`
	Source        string    `json:"source"`
	Level         Level     `json:"level"`
	StyleID       string    `json:"style_id"`
	Headline      string    `json:"headline"`
	HumanLine     string    `json:"human_line"`
	Diagnosis     string    `json:"diagnosis"`
	NextAction    string    `json:"next_action"`
	BlockID       string    `json:"block_id,omitempty"`
	BlockName     string    `json:"block_name"`
	Choices       []string  `json:"choices,omitempty"`
	QuestionID    string    `json:"question_id,omitempty"`
}

// NowSnapshot is the sampler's latest view of the foreground window.
type NowSnapshot struct {
	TS      Timestamp `json:"ts"`
	App     string    `json:"app"`
	Title   string    `json:"title"`
	BlockID string    `json:"block_id,omitempty"`
}

// SpeechEntry is one line of the speech queue log.
type SpeechEntry struct {
	TS         Timestamp `json:"ts"`
	EventID    string    `json:"event_id"`
	EventType  EventType `json:"event_type"`
	SpeechText string    `json:"speech_text"`
	Headline   string    `json:"headline,omitempty"`
	BlockID    string    `json:"block_id,omitempty"`
	BlockName  string    `json:"block_name,omitempty"`
}
