package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/lockdash/internal/lockapi"
	"github.com/five82/lockdash/internal/scan"
)

// renderDashboard lays out the device, stats and scan panels.
func (m Model) renderDashboard() string {
	styles := m.theme.Styles()
	compact := m.width < LayoutCompactWidth

	var rows []string
	if m.snapshot.Error != "" {
		rows = append(rows, styles.DangerText.Render("ERROR ")+styles.Text.Render(truncate(m.snapshot.Error, m.width-8)))
	}
	if hint := connectionHint(m.conn); hint != "" {
		rows = append(rows, styles.WarningText.Render("! ")+styles.MutedText.Render(hint+" ("+m.socketURL+")"))
	}

	device := []string{m.renderDoorPanel(), m.renderModePanel(), m.renderConfigPanel()}
	activity := []string{m.renderStatsPanel(), m.renderScanPanel()}

	if compact {
		width := m.width - 2
		for _, p := range append(device, activity...) {
			rows = append(rows, m.panel(p, width))
		}
		rows = append(rows, m.panel(m.renderEventsPanel(), width))
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	third := (m.width - 6) / 3
	half := (m.width - 4) / 2
	rows = append(rows,
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.panel(device[0], third), m.panel(device[1], third), m.panel(device[2], third)),
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.panel(activity[0], half), m.panel(activity[1], half)),
		m.panel(m.renderEventsPanel(), m.width-2),
	)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) panel(content string, width int) string {
	if width < 10 {
		width = 10
	}
	return m.theme.Styles().Panel.Width(width).Render(content)
}

func (m Model) renderDoorPanel() string {
	styles := m.theme.Styles()
	door := string(m.snapshot.DoorStatus)
	lines := []string{
		styles.PanelTitle.Render("Door"),
		styles.StatusStyle(door).Render(strings.ToUpper(door)),
	}
	if m.snapshot.DoorStatus == lockapi.DoorUnlocked {
		lines = append(lines, styles.MutedText.Render("press l to lock"))
	} else {
		lines = append(lines, styles.MutedText.Render("press u to unlock"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderModePanel() string {
	styles := m.theme.Styles()
	mode := string(m.snapshot.Mode)
	return strings.Join([]string{
		styles.PanelTitle.Render("Mode"),
		styles.StatusStyle(mode).Render(titleCase(mode)),
		styles.MutedText.Render("press m to switch"),
	}, "\n")
}

func (m Model) renderConfigPanel() string {
	styles := m.theme.Styles()
	lines := []string{styles.PanelTitle.Render("Device config")}
	cfg := m.snapshot.Config
	if cfg == nil {
		lines = append(lines, styles.FaintText.Render("not loaded"))
		return strings.Join(lines, "\n")
	}
	lines = append(lines,
		kv(styles, "UART", fmt.Sprintf("%s @ %d", cfg.UARTPort, cfg.UARTBaudrate)),
		kv(styles, "Face threshold", fmt.Sprintf("%.2f", cfg.FaceSimilarityThreshold)),
	)
	return strings.Join(lines, "\n")
}

func (m Model) renderStatsPanel() string {
	styles := m.theme.Styles()
	days := m.statsDays
	if days <= 0 {
		days = 7
	}
	lines := []string{styles.PanelTitle.Render(fmt.Sprintf("Access (last %d days)", days))}
	stats := m.snapshot.Stats
	if stats == nil {
		lines = append(lines, styles.FaintText.Render("no data"))
		return strings.Join(lines, "\n")
	}

	failStyle := styles.MutedText
	if stats.FailedAccesses > 0 {
		failStyle = styles.DangerText
	}
	lines = append(lines,
		kv(styles, "Total", fmt.Sprintf("%d", stats.TotalAccesses)),
		styles.MutedText.Render(padRight("Granted", 16))+styles.SuccessText.Render(fmt.Sprintf("%d", stats.SuccessfulAccesses)),
		styles.MutedText.Render(padRight("Denied", 16))+failStyle.Render(fmt.Sprintf("%d", stats.FailedAccesses)),
		kv(styles, "Success rate", fmt.Sprintf("%.0f%%", stats.SuccessRate()*100)),
	)
	if methods := formatCounts(stats.ByMethod); methods != "" {
		lines = append(lines, kv(styles, "By method", methods))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderScanPanel() string {
	styles := m.theme.Styles()
	phase := string(m.progress.Phase)
	if phase == "" {
		phase = string(scan.PhaseIdle)
	}
	lines := []string{
		styles.PanelTitle.Render("Enrollment / scan"),
		styles.StatusStyle(phase).Render(strings.ToUpper(phase)),
	}
	if m.progress.Message != "" {
		lines = append(lines, styles.Text.Render(m.progress.Message))
	}
	if !m.progress.UpdatedAt.IsZero() {
		lines = append(lines, styles.FaintText.Render(m.progress.UpdatedAt.Format("15:04:05")))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEventsPanel() string {
	styles := m.theme.Styles()
	lines := []string{styles.PanelTitle.Render("Recent push events")}
	if len(m.events) == 0 {
		lines = append(lines, styles.FaintText.Render("none yet"))
		return strings.Join(lines, "\n")
	}
	for i, ev := range m.events {
		if i >= recentEventsShown {
			break
		}
		typeStyle := styles.SuccessText
		if ev.Failure() {
			typeStyle = styles.DangerText
		} else if ev.Type == "enrollment_status" {
			typeStyle = styles.InfoText
		}
		lines = append(lines,
			styles.FaintText.Render(ev.At.Format("15:04:05"))+" "+
				typeStyle.Render(padRight(ev.Type, 20))+" "+
				styles.Text.Render(truncate(ev.Message, m.width-40)))
	}
	return strings.Join(lines, "\n")
}

// renderFooter shows the last action result and the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var b strings.Builder
	if m.notice != "" {
		if m.noticeErr {
			b.WriteString(styles.DangerText.Render(m.notice))
		} else {
			b.WriteString(styles.SuccessText.Render(m.notice))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func kv(styles Styles, label, value string) string {
	return styles.MutedText.Render(padRight(label, 16)) + styles.Text.Render(value)
}

func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}
