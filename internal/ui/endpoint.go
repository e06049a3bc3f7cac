package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// endpointState holds the API endpoint editor.
type endpointState struct {
	editing bool
	input   textinput.Model
	err     string
}

func newEndpointState() endpointState {
	ti := textinput.New()
	ti.Placeholder = "http://192.168.1.50:8000"
	ti.CharLimit = 200
	ti.Width = 40
	return endpointState{input: ti}
}

func (m Model) openEndpointEditor() (tea.Model, tea.Cmd) {
	if m.controller == nil {
		return m, nil
	}
	m.endpoint.editing = true
	m.endpoint.err = ""
	m.endpoint.input.SetValue(m.controller.Endpoint())
	m.endpoint.input.CursorEnd()
	return m, m.endpoint.input.Focus()
}

func (m Model) handleEndpointKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.endpoint.editing = false
		m.endpoint.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		value := strings.TrimSpace(m.endpoint.input.Value())
		if value == "" {
			m.endpoint.err = "endpoint cannot be empty"
			return m, nil
		}
		if err := m.controller.SetEndpoint(value); err != nil {
			m.endpoint.err = err.Error()
			return m, nil
		}
		m.endpoint.editing = false
		m.endpoint.input.Blur()
		controller := m.controller
		return m.startAction("Switch endpoint", func(ctx context.Context) error {
			controller.Refresh(ctx)
			return nil
		})

	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}
	return m.updateEndpointInput(msg)
}

func (m Model) updateEndpointInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.endpoint.input, cmd = m.endpoint.input.Update(msg)
	return m, cmd
}

func (m Model) renderEndpointModal() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Lock backend endpoint"))
	b.WriteString("\n\n")
	b.WriteString(m.endpoint.input.View())
	b.WriteString("\n\n")
	if m.endpoint.err != "" {
		b.WriteString(styles.DangerText.Render(m.endpoint.err))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("enter to apply and save, esc to cancel"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Focus)).
		Padding(1, 2).
		Width(56)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
	)
}
