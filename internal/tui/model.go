package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"sysup/pkg/manager"
	"sysup/pkg/orchestrator"
)

// statusMsg carries a finished discovery run into the update loop.
type statusMsg struct {
	report *orchestrator.RunReport
	err    error
}

// Model is the dashboard state: the manager list on top of the most recent
// discovery run.
type Model struct {
	orch    *orchestrator.Orchestrator
	styles  *Styles
	spinner spinner.Model

	managers []manager.ManagerStatus
	report   *orchestrator.RunReport
	err      error

	cursor   int
	expanded bool
	loading  bool
	width    int
	height   int
}

// New creates the dashboard model.
func New(orch *orchestrator.Orchestrator) Model {
	styles := DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return Model{
		orch:     orch,
		styles:   styles,
		spinner:  sp,
		managers: orch.ListManagers(),
		loading:  true,
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(orch *orchestrator.Orchestrator) error {
	_, err := tea.NewProgram(New(orch), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.discover())
}

// discover runs status discovery off the update loop.
func (m Model) discover() tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		report, err := orch.RunStatus(context.Background(), nil)
		return statusMsg{report: report, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusMsg:
		m.loading = false
		m.report = msg.report
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.managers)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.expanded = !m.expanded
		case "r":
			if !m.loading {
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, m.discover())
			}
		}
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("sysup"))
	if m.loading {
		b.WriteString("  " + m.spinner.View() + m.styles.Dim.Render("checking for updates..."))
	}
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(m.styles.Error.Render("  discovery failed: "+m.err.Error()) + "\n")
	}

	for i, mgr := range m.managers {
		b.WriteString(m.renderManager(i, mgr))
	}

	b.WriteString("\n")
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) renderManager(i int, mgr manager.ManagerStatus) string {
	cursor := "  "
	nameStyle := m.styles.ManagerStyle(mgr.Name)
	if i == m.cursor {
		cursor = m.styles.Selected.Render("> ")
	}

	line := cursor + nameStyle.Render(fmt.Sprintf("%-8s", mgr.Name))

	switch {
	case !mgr.Available:
		line += m.styles.Dim.Render("not installed")
	case !mgr.Enabled:
		line += m.styles.Dim.Render("disabled")
	case m.loading:
		line += m.styles.Dim.Render("...")
	default:
		line += m.pendingSummary(mgr.Name)
	}
	line += "\n"

	if m.expanded && i == m.cursor && m.report != nil {
		for _, pkg := range m.report.Pending[mgr.Name] {
			entry := "      " + pkg.Name
			if pkg.LatestVersion != "" {
				entry += m.styles.Dim.Render(fmt.Sprintf("  %s → %s", pkg.CurrentVersion, pkg.LatestVersion))
			}
			line += entry + "\n"
		}
	}

	return line
}

func (m Model) pendingSummary(name string) string {
	if m.report == nil {
		return ""
	}

	if res, ok := m.report.Result(name); ok && res.Status == manager.StatusFailed {
		return m.styles.Error.Render("discovery failed")
	}

	pending := m.report.Pending[name]
	if len(pending) == 0 {
		return m.styles.Success.Render("up to date")
	}
	return m.styles.Count.Render(fmt.Sprintf("%d update(s)", len(pending)))
}

func (m Model) helpView() string {
	keys := [][2]string{
		{"↑/↓", "navigate"},
		{"enter", "details"},
		{"r", "refresh"},
		{"q", "quit"},
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts, m.styles.HelpKey.Render(k[0])+" "+m.styles.HelpDesc.Render(k[1]))
	}
	return m.styles.Footer.Render(strings.Join(parts, "  "))
}
