package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/lockdash/internal/realtime"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)
	compact := m.width < LayoutCompactWidth

	parts := []string{
		bg.Render("lockdash", styles.Logo),
		m.connectionBadge(styles),
	}

	endpoint := ""
	if m.controller != nil {
		endpoint = m.controller.Endpoint()
	}
	if endpoint != "" {
		limit := 48
		if compact {
			limit = 24
		}
		parts = append(parts, bg.Render("API", styles.FaintText)+bg.Space()+
			bg.Render(truncateMiddle(endpoint, limit), styles.MutedText))
	}

	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if m.busy != "" {
		parts = append(parts, bg.Render(m.spinner.View()+" "+m.busy+"...", styles.InfoText))
	} else if m.snapshot.IsLoading {
		parts = append(parts, bg.Render("working...", styles.InfoText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, sep))
}

func (m Model) connectionBadge(styles Styles) string {
	label := "● " + strings.ToUpper(m.conn.String())
	return styles.StatusStyle(m.conn.String()).Render(label)
}

// formatTimestamp shows when the store last changed, relative when recent.
func (m Model) formatTimestamp() string {
	updated := m.snapshot.LastUpdated
	if updated.IsZero() {
		return ""
	}
	age := time.Since(updated)
	switch {
	case age < 5*time.Second:
		return "updated just now"
	case age < time.Minute:
		return fmt.Sprintf("updated %ds ago", int(age.Seconds()))
	default:
		return "updated " + updated.Format("15:04:05")
	}
}

// connectionHint explains a non-connected push channel.
func connectionHint(status realtime.Status) string {
	switch status {
	case realtime.StatusConnecting:
		return "Connecting to push channel"
	case realtime.StatusDisconnected:
		return "Push channel down, retrying"
	}
	return ""
}
