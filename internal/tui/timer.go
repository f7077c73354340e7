// Package tui provides the Bubble Tea interfaces for focuswatch: the live
// session stopwatch and the journal browser.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/focuswatch/internal/session"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Padding(1, 4)

	pausedClockStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("240")).
				Padding(1, 4)

	statusRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	statusPaused  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	backupStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// timerKeys are the session keybindings.
type timerKeys struct {
	Pause   key.Binding
	Stop    key.Binding
	Minimal key.Binding
}

var defaultTimerKeys = timerKeys{
	Pause:   key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause/resume")),
	Stop:    key.NewBinding(key.WithKeys("q", "s", "ctrl+c"), key.WithHelp("q", "stop")),
	Minimal: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "minimal ui")),
}

// Messages delivered from outside the Bubble Tea loop.
type (
	// ArchiveMsg reports a persisted backup archive.
	ArchiveMsg struct {
		Name  string
		Files int
	}
	// RefreshMsg forces a redraw (sent after signal-driven pause/resume).
	RefreshMsg struct{}
	// StopRequestMsg asks the UI to end the session (sent on SIGTERM).
	StopRequestMsg struct{}

	tickMsg    time.Time
	stoppedMsg struct {
		elapsed time.Duration
		err     error
	}
)

// TimerModel is the live session view.
type TimerModel struct {
	ctrl    *session.Controller
	keys    timerKeys
	minimal bool
	width   int
	height  int

	backups  int
	lastZip  string
	stopping bool

	// FinalElapsed holds the session duration once stopped; read by the
	// caller after the program exits.
	FinalElapsed time.Duration
	// StopErr holds any error from the final stop.
	StopErr error
}

// NewTimer builds the stopwatch model for an already-started controller.
func NewTimer(ctrl *session.Controller, minimal bool) TimerModel {
	return TimerModel{ctrl: ctrl, keys: defaultTimerKeys, minimal: minimal}
}

func (m TimerModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		return m, tick()

	case ArchiveMsg:
		m.backups++
		m.lastZip = msg.Name
		return m, nil

	case RefreshMsg:
		return m, nil

	case StopRequestMsg:
		return m.stop()

	case stoppedMsg:
		m.FinalElapsed = msg.elapsed
		m.StopErr = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Stop):
			return m.stop()
		case key.Matches(msg, m.keys.Pause):
			_ = m.ctrl.TogglePause()
			return m, nil
		case key.Matches(msg, m.keys.Minimal):
			m.minimal = !m.minimal
			return m, nil
		}
	}
	return m, nil
}

// stop runs the controller stop (final backup included) off the UI loop.
func (m TimerModel) stop() (tea.Model, tea.Cmd) {
	if m.stopping {
		return m, nil
	}
	m.stopping = true
	ctrl := m.ctrl
	return m, func() tea.Msg {
		elapsed, err := ctrl.Stop()
		return stoppedMsg{elapsed: elapsed, err: err}
	}
}

func (m TimerModel) View() string {
	clock := formatClock(m.ctrl.Elapsed())

	style := clockStyle
	if m.ctrl.Paused() {
		style = pausedClockStyle
	}

	if m.minimal {
		return m.center(style.Render(clock))
	}

	status := statusRunning.Render("● recording")
	if m.stopping {
		status = statusPaused.Render("… stopping")
	} else if m.ctrl.Paused() {
		status = statusPaused.Render("‖ paused")
	}

	backupLine := backupStyle.Render("backups: none yet")
	if m.backups > 0 {
		backupLine = backupStyle.Render(fmt.Sprintf("backups: %d (last %s)", m.backups, m.lastZip))
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("focuswatch"),
		style.Render(clock),
		status,
		backupLine,
		"",
		hintStyle.Render("space pause · m minimal · q stop"),
	)
	return m.center(body)
}

func (m TimerModel) center(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

// formatClock renders a duration as H:MM:SS.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
