package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette plus the badge colors derived from it.
type Theme struct {
	Name string

	Background string
	Surface    string
	Border     string
	Focus      string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// StatusColors maps door, connection, scan phase and mode values to a
	// badge color.
	StatusColors map[string]string
}

// palette lists a theme's colors in a fixed order:
// background, surface, border, text, muted, faint, accent, success, warning, danger, info.
type palette [11]string

func newTheme(name string, p palette) Theme {
	t := Theme{
		Name:       name,
		Background: p[0],
		Surface:    p[1],
		Border:     p[2],
		Text:       p[3],
		Muted:      p[4],
		Faint:      p[5],
		Accent:     p[6],
		Success:    p[7],
		Warning:    p[8],
		Danger:     p[9],
		Info:       p[10],
	}
	t.Focus = t.Accent
	t.StatusColors = map[string]string{
		// A locked door is the safe state; an unlocked one wants attention.
		"locked":   t.Success,
		"unlocked": t.Warning,

		"connected":    t.Success,
		"connecting":   t.Info,
		"disconnected": t.Danger,

		"idle":    t.Faint,
		"waiting": t.Info,
		"success": t.Success,
		"denied":  t.Danger,

		"entry_exit":   t.Accent,
		"registration": t.Warning,
	}
	return t
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

var themes = map[string]Theme{
	// https://github.com/EdenEast/nightfox.nvim
	"Nightfox": newTheme("Nightfox", palette{
		"#131a24", "#192330", "#39506d",
		"#cdcecf", "#738091", "#71839b",
		"#719cd6", "#81b29a", "#dbc074", "#c94f6d", "#63cdcf",
	}),
	// https://github.com/rebelot/kanagawa.nvim
	"Kanagawa": newTheme("Kanagawa", palette{
		"#16161D", "#1F1F28", "#54546D",
		"#DCD7BA", "#C8C093", "#727169",
		"#7E9CD8", "#98BB6C", "#E6C384", "#E46876", "#7FB4CA",
	}),
	// Tailwind slate with sky accents.
	"Slate": newTheme("Slate", palette{
		"#020617", "#0f172a", "#334155",
		"#f1f5f9", "#94a3b8", "#64748b",
		"#38bdf8", "#22c55e", "#f59e0b", "#ef4444", "#06b6d4",
	}),
}

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[themeOrder[0]]
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names in cycle order.
func ThemeNames() []string {
	return themeOrder
}

// Styles holds the lipgloss styles rendered for one theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Logo       lipgloss.Style
	Panel      lipgloss.Style
	PanelTitle lipgloss.Style

	statusColors map[string]string
	background   string
	fallback     string
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Styles builds the style set for t.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Logo: fg(t.Warning).Bold(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
		PanelTitle: fg(t.Accent).Bold(true),

		statusColors: t.StatusColors,
		background:   t.Background,
		fallback:     t.Muted,
	}
}

// StatusStyle returns the badge style for a status value. Unknown values get
// a muted badge.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	color, ok := s.statusColors[status]
	if !ok {
		color = s.fallback
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 1)
}

// WithBackground paints every text style onto bgColor, for rows drawn on a
// filled bar.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.InfoText,
		&out.Logo,
	} {
		*st = st.Background(bg)
	}
	return out
}
