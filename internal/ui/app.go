package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/lockdash/internal/lockapi"
	"github.com/five82/lockdash/internal/realtime"
	"github.com/five82/lockdash/internal/scan"
	"github.com/five82/lockdash/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewDashboard View = iota
	ViewLogs
)

// Controller runs operator actions against the backend.
type Controller interface {
	Endpoint() string
	SetEndpoint(raw string) error
	SaveTheme(name string) error
	SetDoor(ctx context.Context, status lockapi.DoorStatus) error
	ToggleMode(ctx context.Context) error
	Refresh(ctx context.Context)
}

// ConnectionSource reports the push channel's state.
type ConnectionSource interface {
	Status() realtime.Status
	URL() string
}

// ScanSource exposes enrollment and scan progress.
type ScanSource interface {
	Progress() scan.Progress
	Recent() []scan.Event
	Reset()
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Store      *state.Store
	Tracker    ScanSource
	Transport  ConnectionSource
	Controller Controller
	PollTick   time.Duration
	StatsDays  int
	ThemeName  string
	LogPath    string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	store      *state.Store
	tracker    ScanSource
	transport  ConnectionSource
	controller Controller
	pollTick   time.Duration
	statsDays  int
	logPath    string

	// UI state
	keys        keyMap
	help        help.Model
	spinner     spinner.Model
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// Data state
	snapshot    state.Snapshot
	conn        realtime.Status
	socketURL   string
	progress    scan.Progress
	events      []scan.Event
	lastUpdated time.Time

	// Action feedback
	busy      string
	notice    string
	noticeErr bool

	endpoint endpointState
	logState logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:         ctx,
		store:       opts.Store,
		tracker:     opts.Tracker,
		transport:   opts.Transport,
		controller:  opts.Controller,
		pollTick:    pollTick,
		statsDays:   opts.StatsDays,
		logPath:     opts.LogPath,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		theme:       GetTheme(opts.ThemeName),
		currentView: ViewDashboard,
		snapshot:    state.Initial(),
		progress:    scan.Progress{Phase: scan.PhaseIdle},
	}
	m.endpoint = newEndpointState()
	m.logState = newLogState()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.pollTick),
		m.fetchSnapshotCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.resizeLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.conn = msg.conn
		m.socketURL = msg.socketURL
		m.progress = msg.progress
		m.events = msg.events
		m.lastUpdated = msg.at
		return m, nil

	case actionMsg:
		m.busy = ""
		if msg.err != nil {
			m.notice = msg.label + " failed: " + errorText(msg.err)
			m.noticeErr = true
		} else {
			m.notice = msg.label + " done"
			m.noticeErr = false
		}
		return m, m.fetchSnapshotCmd()

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.endpoint.editing {
		return m.updateEndpointInput(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.endpoint.editing {
		return m.renderEndpointModal()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.endpoint.editing {
		return m.handleEndpointKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, m.saveThemeCmd(m.theme.Name)

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewDashboard
		m.notice = ""
		return m, nil

	case key.Matches(msg, m.keys.Unlock):
		return m.doorAction(lockapi.DoorUnlocked)

	case key.Matches(msg, m.keys.Lock):
		return m.doorAction(lockapi.DoorLocked)

	case key.Matches(msg, m.keys.ToggleMode):
		if m.controller == nil || m.busy != "" {
			return m, nil
		}
		next := m.snapshot.Mode.Toggle()
		return m.startAction("Switch to "+titleCase(string(next)), func(ctx context.Context) error {
			return m.controller.ToggleMode(ctx)
		})

	case key.Matches(msg, m.keys.Refresh):
		if m.controller == nil || m.busy != "" {
			return m, nil
		}
		return m.startAction("Refresh", func(ctx context.Context) error {
			m.controller.Refresh(ctx)
			return nil
		})

	case key.Matches(msg, m.keys.ResetScan):
		if m.tracker != nil {
			m.tracker.Reset()
		}
		return m, m.fetchSnapshotCmd()

	case key.Matches(msg, m.keys.EditEndpoint):
		return m.openEndpointEditor()

	case key.Matches(msg, m.keys.ToggleLogs):
		if m.currentView == ViewLogs {
			m.currentView = ViewDashboard
			return m, nil
		}
		m.currentView = ViewLogs
		return m, m.loadLogsCmd()
	}

	if m.currentView == ViewLogs {
		return m.handleLogsKey(msg)
	}
	return m, nil
}

// doorAction applies the believed door state to the view at once and sends
// the command in the background.
func (m Model) doorAction(status lockapi.DoorStatus) (tea.Model, tea.Cmd) {
	if m.controller == nil || m.busy != "" {
		return m, nil
	}
	m.snapshot.DoorStatus = status
	label := "Unlock"
	if status == lockapi.DoorLocked {
		label = "Lock"
	}
	return m.startAction(label, func(ctx context.Context) error {
		return m.controller.SetDoor(ctx, status)
	})
}

func (m Model) startAction(label string, fn func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	m.busy = label
	m.notice = ""
	return m, tea.Batch(actionCmd(m.ctx, label, fn), m.spinner.Tick)
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.fetchSnapshotCmd()}
	if m.currentView == ViewLogs && m.logState.follow {
		cmds = append(cmds, m.loadLogsCmd())
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	switch m.currentView {
	case ViewLogs:
		b.WriteString(m.renderLogs())
	default:
		b.WriteString(m.renderDashboard())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	snapshot  state.Snapshot
	conn      realtime.Status
	socketURL string
	progress  scan.Progress
	events    []scan.Event
	at        time.Time
}

type actionMsg struct {
	label string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchSnapshotCmd() tea.Cmd {
	store, transport, tracker := m.store, m.transport, m.tracker
	return func() tea.Msg {
		msg := snapshotMsg{snapshot: state.Initial(), at: time.Now()}
		if store != nil {
			msg.snapshot = store.Snapshot()
		}
		if transport != nil {
			msg.conn = transport.Status()
			msg.socketURL = transport.URL()
		}
		if tracker != nil {
			msg.progress = tracker.Progress()
			msg.events = tracker.Recent()
		} else {
			msg.progress = scan.Progress{Phase: scan.PhaseIdle}
		}
		return msg
	}
}

func actionCmd(parent context.Context, label string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, ActionTimeout)
		defer cancel()
		return actionMsg{label: label, err: fn(ctx)}
	}
}

func (m Model) saveThemeCmd(name string) tea.Cmd {
	controller := m.controller
	if controller == nil {
		return nil
	}
	return func() tea.Msg {
		if err := controller.SaveTheme(name); err != nil {
			return actionMsg{label: "Save theme", err: err}
		}
		return nil
	}
}

func errorText(err error) string {
	if detail := lockapi.Detail(err); detail != "" {
		return detail
	}
	return err.Error()
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
