package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"coach/pkg/eventlog"
	"coach/pkg/protocol"
)

// overlayKeys are the overlay's key bindings.
type overlayKeys struct {
	Choose  key.Binding
	Pause   key.Binding
	Back    key.Binding
	Recover key.Binding
	Dismiss key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newOverlayKeys() overlayKeys {
	return overlayKeys{
		Choose:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "answer")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause 15m")),
		Back:    key.NewBinding(key.WithKeys("b", "enter"), key.WithHelp("b", "back on track")),
		Recover: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recover")),
		Dismiss: key.NewBinding(key.WithKeys("d", "esc"), key.WithHelp("d", "dismiss")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k overlayKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Choose, k.Back, k.Pause, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k overlayKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Choose, k.Back, k.Pause},
		{k.Recover, k.Dismiss},
		{k.Help, k.Quit},
	}
}

// slotMsg carries the overlay command read from the slot; nil means the
// slot is empty.
type slotMsg struct {
	cmd *protocol.OverlayCommand
}

// pollMsg drives the fallback poll.
type pollMsg time.Time

// actionMsg reports the outcome of writing an action.
type actionMsg struct {
	action protocol.ActionType
	err    error
}

// overlayModel renders the newest overlay command and turns key presses
// into overlay actions.
type overlayModel struct {
	logsDir string
	watcher *fsnotify.Watcher
	poll    time.Duration
	nowFunc func() time.Time

	keys  overlayKeys
	help  help.Model
	theme Theme

	cmd       *protocol.OverlayCommand
	dismissed string // cmd_id hidden by the user
	feedback  string
	width     int
}

func newOverlayModel(logsDir string, watcher *fsnotify.Watcher) overlayModel {
	return overlayModel{
		logsDir: logsDir,
		watcher: watcher,
		poll:    time.Second,
		nowFunc: time.Now,
		keys:    newOverlayKeys(),
		help:    help.New(),
		theme:   DefaultTheme(),
	}
}

// Init implements tea.Model.
func (m overlayModel) Init() tea.Cmd {
	return tea.Batch(m.readSlot(), m.pollCmd(), waitForChange(m.watcher))
}

func (m overlayModel) slotPath() string {
	return eventlog.DailyPath(m.logsDir, protocol.StreamOverlayCmd, m.nowFunc())
}

func (m overlayModel) readSlot() tea.Cmd {
	path := m.slotPath()
	return func() tea.Msg {
		var cmd protocol.OverlayCommand
		found, err := eventlog.LastRecord(path, &cmd)
		if err != nil || !found {
			return slotMsg{}
		}
		return slotMsg{cmd: &cmd}
	}
}

func (m overlayModel) pollCmd() tea.Cmd {
	return tea.Tick(m.poll, func(t time.Time) tea.Msg { return pollMsg(t) })
}

func (m overlayModel) sendAction(a protocol.OverlayAction) tea.Cmd {
	logsDir, now := m.logsDir, m.nowFunc()
	return func() tea.Msg {
		a.TS = protocol.At(now)
		return actionMsg{action: a.Action, err: writeAction(logsDir, a, now)}
	}
}

// Update implements tea.Model.
func (m overlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case slotMsg:
		if msg.cmd == nil || m.cmd == nil || msg.cmd.CmdID != m.cmd.CmdID {
			m.feedback = ""
		}
		m.cmd = msg.cmd

	case fsChangeMsg:
		return m, tea.Batch(m.readSlot(), waitForChange(m.watcher))

	case pollMsg:
		return m, tea.Batch(m.readSlot(), m.pollCmd())

	case actionMsg:
		if msg.err != nil {
			m.feedback = "error: " + msg.err.Error()
		} else {
			m.feedback = "sent " + string(msg.action)
		}
	}
	return m, nil
}

func (m overlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Pause):
		return m, m.sendAction(protocol.OverlayAction{Action: protocol.ActionPause})
	case key.Matches(msg, m.keys.Recover):
		return m, m.sendAction(protocol.OverlayAction{Action: protocol.ActionRecover})
	case key.Matches(msg, m.keys.Back):
		a := protocol.OverlayAction{Action: protocol.ActionBackOnTrack}
		if m.cmd != nil {
			a.BlockID = m.cmd.BlockID
		}
		return m, m.sendAction(a)
	case key.Matches(msg, m.keys.Dismiss):
		if m.cmd != nil {
			m.dismissed = m.cmd.CmdID
		}
	case key.Matches(msg, m.keys.Choose):
		if m.cmd == nil || m.cmd.QuestionID == "" {
			return m, nil
		}
		n, err := strconv.Atoi(msg.String())
		if err != nil || n < 1 || n > len(m.cmd.Choices) {
			return m, nil
		}
		return m, m.sendAction(protocol.OverlayAction{
			Action:     protocol.ActionAlignChoice,
			QuestionID: m.cmd.QuestionID,
			Value:      m.cmd.Choices[n-1],
		})
	}
	return m, nil
}

// visible reports whether there is an overlay to draw.
func (m overlayModel) visible() bool {
	return m.cmd != nil && m.cmd.CmdID != m.dismissed
}

// View implements tea.Model.
func (m overlayModel) View() string {
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)

	var body string
	if !m.visible() {
		body = muted.Render("No overlay. Waiting for the coach.")
	} else {
		body = m.renderCommand(*m.cmd)
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	if m.feedback != "" {
		b.WriteString(muted.Render(m.feedback))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m overlayModel) renderCommand(c protocol.OverlayCommand) string {
	accent := m.theme.StyleColor(c.StyleID)
	headline := lipgloss.NewStyle().Bold(true).Foreground(accent)
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)

	var lines []string
	lines = append(lines, headline.Render(c.Headline))
	if c.HumanLine != "" {
		lines = append(lines, c.HumanLine)
	}
	if c.Diagnosis != "" {
		lines = append(lines, muted.Render(c.Diagnosis))
	}
	if c.NextAction != "" {
		lines = append(lines, "Next: "+c.NextAction)
	}
	for i, choice := range c.Choices {
		lines = append(lines, fmt.Sprintf("  %d) %s", i+1, choice))
	}
	if c.BlockName != "" {
		lines = append(lines, muted.Render(c.BlockName))
	}

	box := m.theme.Box(c.Level, c.StyleID)
	if m.width > 4 {
		box = box.Width(min(m.width-4, 72))
	}
	return box.Render(strings.Join(lines, "\n"))
}
