package planner

import "strings"

// RecoverMessage asks the agent for a revised schedule.
const RecoverMessage = "RECOVER_MODE: Update schedule YAML based on remaining blocks. " +
	"Overlay must state what changed."

const eventPreamble = `You are coach_plan. Do not call tools. Output JSON only.
Return an object with keys: overlay (object), hud_text (string), notification_text (string), speech_text (string).
overlay must include: level, style_id, headline, human_line, diagnosis, next_action, block_id, block_name.
Use context to reference the current task or distraction path.
If you cannot infer details, default to level A (unless it was mentioned to force level B), style_id 'calm', and short text.
Use the attached files for context (event, activity tail, now, last action, goals).
`

// EventPrompt builds the message for one tailed event line. Drift events
// are prefixed with a level B instruction.
func EventPrompt(eventLine string, drift bool) string {
	var b strings.Builder
	if drift {
		b.WriteString("Force level B overlay for drift.\n")
	}
	b.WriteString(eventPreamble)
	b.WriteString("Event line: ")
	b.WriteString(strings.TrimSpace(eventLine))
	return b.String()
}
