package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"coach/pkg/protocol"
)

// Overlay is the overlay object a planner response may carry.
type Overlay struct {
	Level      protocol.Level `json:"level"`
	StyleID    string         `json:"style_id"`
	Headline   string         `json:"headline"`
	HumanLine  string         `json:"human_line"`
	Diagnosis  string         `json:"diagnosis"`
	NextAction string         `json:"next_action"`
	BlockID    string         `json:"block_id"`
	BlockName  string         `json:"block_name"`
}

// Response is the planner's output object.
type Response struct {
	Overlay             *Overlay `json:"-"`
	HUDText             string   `json:"hud_text"`
	NotificationText    string   `json:"notification_text"`
	SpeechText          string   `json:"speech_text"`
	RevisedScheduleYAML string   `json:"revised_schedule_yaml"`
}

// rawResponse decodes loosely: agents sometimes emit a non-object overlay
// or non-string text fields.
type rawResponse struct {
	Overlay             json.RawMessage `json:"overlay"`
	HUDText             json.RawMessage `json:"hud_text"`
	NotificationText    json.RawMessage `json:"notification_text"`
	SpeechText          json.RawMessage `json:"speech_text"`
	RevisedScheduleYAML json.RawMessage `json:"revised_schedule_yaml"`
}

// ParseResponse extracts a response object from raw agent output. The whole
// output is tried first, then each non-blank line from last to first.
// Fields of the wrong JSON type are dropped; an overlay that fails Validate
// is dropped.
func ParseResponse(out []byte) (*Response, error) {
	raw, ok := decodeObject(bytes.TrimSpace(out))
	if !ok {
		lines := bytes.Split(out, []byte{'\n'})
		for i := len(lines) - 1; i >= 0 && !ok; i-- {
			line := bytes.TrimSpace(lines[i])
			if len(line) == 0 {
				continue
			}
			raw, ok = decodeObject(line)
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: output is not a JSON object", ErrNoResponse)
	}

	resp := &Response{
		HUDText:             asString(raw.HUDText),
		NotificationText:    asString(raw.NotificationText),
		SpeechText:          asString(raw.SpeechText),
		RevisedScheduleYAML: asString(raw.RevisedScheduleYAML),
	}
	if len(raw.Overlay) > 0 && raw.Overlay[0] == '{' {
		var ov Overlay
		if json.Unmarshal(raw.Overlay, &ov) == nil && ov.Validate() == nil {
			resp.Overlay = &ov
		}
	}
	return resp, nil
}

func decodeObject(b []byte) (rawResponse, bool) {
	var raw rawResponse
	if len(b) == 0 || b[0] != '{' {
		return raw, false
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return raw, false
	}
	return raw, true
}

func asString(b json.RawMessage) string {
	var s string
	if len(b) == 0 || json.Unmarshal(b, &s) != nil {
		return ""
	}
	return s
}

// Validate fills defaults (level A, style calm) and rejects overlays with
// nothing to show or an unknown level.
func (o *Overlay) Validate() error {
	if o.Level == "" {
		o.Level = protocol.LevelA
	}
	if !o.Level.Valid() {
		return fmt.Errorf("overlay level %q", o.Level)
	}
	if o.StyleID == "" {
		o.StyleID = protocol.StyleCalm
	}
	if strings.TrimSpace(o.Headline) == "" && strings.TrimSpace(o.HumanLine) == "" {
		return fmt.Errorf("overlay has no text")
	}
	return nil
}

// Command converts o into an overlay command. Identity fields (ts, ids,
// source) are left for the caller.
func (o *Overlay) Command() protocol.OverlayCommand {
	return protocol.OverlayCommand{
		Level:      o.Level,
		StyleID:    o.StyleID,
		Headline:   o.Headline,
		HumanLine:  o.HumanLine,
		Diagnosis:  o.Diagnosis,
		NextAction: o.NextAction,
		BlockID:    o.BlockID,
		BlockName:  o.BlockName,
	}
}

// Empty reports whether r carries nothing the engine can use.
func (r *Response) Empty() bool {
	return r == nil || (r.Overlay == nil &&
		strings.TrimSpace(r.HUDText) == "" &&
		strings.TrimSpace(r.NotificationText) == "" &&
		strings.TrimSpace(r.SpeechText) == "" &&
		strings.TrimSpace(r.RevisedScheduleYAML) == "")
}
