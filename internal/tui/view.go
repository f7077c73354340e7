package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/focuswatch/internal/journal"
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	timeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

var viewTabs = []string{"Sessions", "Backups"}

// ViewModel browses the session and backup journals.
type ViewModel struct {
	sessions []journal.SessionRecord
	backups  []journal.BackupRecord
	dir      string

	tab      int
	viewport viewport.Model
	ready    bool
}

// RunView starts the journal browser over the records found in dir.
func RunView(sessions []journal.SessionRecord, backups []journal.BackupRecord, dir string) error {
	m := ViewModel{sessions: sessions, backups: backups, dir: dir}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m ViewModel) Init() tea.Cmd { return nil }

func (m ViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.viewport.SetContent(m.tabContent())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab", "right", "l":
			m.tab = (m.tab + 1) % len(viewTabs)
			m.viewport.SetContent(m.tabContent())
			m.viewport.GotoTop()
			return m, nil
		case "shift+tab", "left", "h":
			m.tab = (m.tab + len(viewTabs) - 1) % len(viewTabs)
			m.viewport.SetContent(m.tabContent())
			m.viewport.GotoTop()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ViewModel) View() string {
	if !m.ready {
		return "loading…"
	}

	var tabs []string
	for i, name := range viewTabs {
		if i == m.tab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	footer := statusBarStyle.Render(fmt.Sprintf("%s · tab switch · q quit", m.dir))

	return header + "\n\n" + m.viewport.View() + "\n" + footer
}

// tabContent renders the journal for the active tab, newest first.
func (m ViewModel) tabContent() string {
	var sb strings.Builder
	switch m.tab {
	case 0:
		sb.WriteString(sectionHeader.Render("Session history") + "\n\n")
		if len(m.sessions) == 0 {
			sb.WriteString(dimStyle.Render("  (no sessions recorded)"))
			break
		}
		for i := len(m.sessions) - 1; i >= 0; i-- {
			rec := m.sessions[i]
			line := fmt.Sprintf("  %s  %-5s", timeStyle.Render(rec.At), rec.Event)
			if rec.DurationMs != nil {
				line += "  " + formatClock(time.Duration(*rec.DurationMs)*time.Millisecond)
			}
			sb.WriteString(line + "\n")
		}
	case 1:
		sb.WriteString(sectionHeader.Render("Backup archives") + "\n\n")
		if len(m.backups) == 0 {
			sb.WriteString(dimStyle.Render("  (no backups recorded)"))
			break
		}
		for i := len(m.backups) - 1; i >= 0; i-- {
			rec := m.backups[i]
			sb.WriteString(fmt.Sprintf("  %s  %s  %s\n",
				timeStyle.Render(rec.At), rec.Zip,
				dimStyle.Render(fmt.Sprintf("(%d files)", rec.Files))))
		}
	}
	return sb.String()
}
