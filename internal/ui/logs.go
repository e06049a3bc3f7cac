package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/lockdash/internal/logtail"
)

var logLevelCycle = []logtail.Level{logtail.LevelUnknown, logtail.LevelInfo, logtail.LevelWarn, logtail.LevelError}

// logState holds the log pane.
type logState struct {
	viewport viewport.Model
	entries  []logtail.Entry
	minLevel logtail.Level
	follow   bool
	err      string
}

func newLogState() logState {
	return logState{
		viewport: viewport.New(0, 0),
		follow:   true,
	}
}

type logLinesMsg struct {
	entries []logtail.Entry
	err     error
}

func (m Model) loadLogsCmd() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		if err != nil {
			return logLinesMsg{err: err}
		}
		entries := make([]logtail.Entry, 0, len(lines))
		for _, line := range lines {
			entries = append(entries, logtail.Parse(line))
		}
		return logLinesMsg{entries: entries}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	if msg.err != nil {
		m.logState.err = msg.err.Error()
		return
	}
	m.logState.err = ""
	m.logState.entries = msg.entries
	m.refreshLogViewport()
}

func (m *Model) resizeLogViewport() {
	// header, pane title, footer
	m.logState.viewport.Width = m.width
	m.logState.viewport.Height = m.height - 4
	if m.logState.viewport.Height < 1 {
		m.logState.viewport.Height = 1
	}
	m.refreshLogViewport()
}

func (m *Model) refreshLogViewport() {
	visible := logtail.Filter(m.logState.entries, m.logState.minLevel)
	lines := make([]string, 0, len(visible))
	for _, e := range visible {
		lines = append(lines, m.renderLogEntry(e))
	}
	m.logState.viewport.SetContent(strings.Join(lines, "\n"))
	if m.logState.follow {
		m.logState.viewport.GotoBottom()
	}
}

func (m Model) renderLogEntry(e logtail.Entry) string {
	styles := m.theme.Styles()
	if e.Level == logtail.LevelUnknown {
		return styles.Text.Render(e.Raw)
	}
	levelStyle := styles.MutedText
	switch e.Level {
	case logtail.LevelInfo:
		levelStyle = styles.SuccessText
	case logtail.LevelWarn:
		levelStyle = styles.WarningText.Bold(true)
	case logtail.LevelError, logtail.LevelFatal:
		levelStyle = styles.DangerText
	case logtail.LevelDebug, logtail.LevelTrace:
		levelStyle = styles.InfoText
	}
	parts := []string{
		styles.FaintText.Render(e.Time),
		levelStyle.Render(padRight(strings.ToUpper(string(e.Level)), 5)),
		styles.Text.Render(e.Message),
	}
	if e.Fields != "" {
		parts = append(parts, styles.MutedText.Render(e.Fields))
	}
	return strings.Join(parts, " ")
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.logState.follow = false
		m.logState.viewport.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logState.viewport.LineDown(1)
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logState.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logState.viewport.GotoBottom()
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logState.viewport.GotoBottom()
		}
	case key.Matches(msg, m.keys.CycleLevel):
		m.logState.minLevel = nextLogLevel(m.logState.minLevel)
		m.refreshLogViewport()
	}
	return m, nil
}

func nextLogLevel(current logtail.Level) logtail.Level {
	for i, lvl := range logLevelCycle {
		if lvl == current {
			return logLevelCycle[(i+1)%len(logLevelCycle)]
		}
	}
	return logLevelCycle[0]
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	level := "all"
	if m.logState.minLevel != logtail.LevelUnknown {
		level = string(m.logState.minLevel) + "+"
	}
	follow := "off"
	if m.logState.follow {
		follow = "on"
	}
	title := styles.PanelTitle.Render("Log") + " " +
		styles.MutedText.Render(truncateMiddle(m.logPath, 60)) + "  " +
		styles.FaintText.Render("level "+level+" · follow "+follow)
	if m.logState.err != "" {
		title += "  " + styles.DangerText.Render(m.logState.err)
	}
	body := m.logState.viewport.View()
	if len(m.logState.entries) == 0 && m.logState.err == "" {
		body = styles.FaintText.Render("log file is empty")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}
