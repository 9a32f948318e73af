// Package tui is an interactive terminal front end: pick a schema, validate
// a file against it and page through the report.
package tui

import (
	"context"
	"fmt"
	"strings"

	"sheetcheck/domain/report"
	"sheetcheck/domain/schema"
	"sheetcheck/internal/render"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RunFunc validates the file the TUI was opened with against one schema
type RunFunc func(ctx context.Context, name schema.Name) (*report.Run, error)

type phase int

const (
	phaseMenu phase = iota
	phaseRunning
	phaseReport
)

// runDoneMsg carries the result of a validation back into Update
type runDoneMsg struct {
	run *report.Run
	err error
}

// Model is the bubbletea model for the schema picker and report viewer
type Model struct {
	ctx      context.Context
	source   string
	choices  []schema.Schema
	cursor   int
	run      RunFunc
	phase    phase
	result   *report.Run
	err      error
	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

// New creates the model for one file
func New(ctx context.Context, source string, schemas []schema.Schema, run RunFunc) Model {
	return Model{
		ctx:     ctx,
		source:  source,
		choices: schemas,
		run:     run,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Result returns the last completed run, if any
func (m Model) Result() (*report.Run, error) {
	return m.result, m.err
}

// Update handles keyboard input, window sizing and finished runs
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case runDoneMsg:
		m.result, m.err = msg.run, msg.err
		m.phase = phaseReport
		m.resize()
		m.viewport.SetContent(m.reportContent())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch m.phase {
		case phaseMenu:
			return m.updateMenu(msg)
		case phaseReport:
			return m.updateReport(msg)
		default:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}

	case "enter":
		if len(m.choices) == 0 {
			return m, nil
		}
		m.phase = phaseRunning
		return m, m.validate(m.choices[m.cursor].Name)
	}
	return m, nil
}

func (m Model) updateReport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "esc", "backspace":
		m.phase = phaseMenu
		return m, nil

	case "up", "k":
		m.viewport.ScrollUp(1)

	case "down", "j":
		m.viewport.ScrollDown(1)

	case "pgup", "b":
		m.viewport.PageUp()

	case "pgdown", "f", " ":
		m.viewport.PageDown()
	}
	return m, nil
}

func (m Model) validate(name schema.Name) tea.Cmd {
	ctx, run := m.ctx, m.run
	return func() tea.Msg {
		r, err := run(ctx, name)
		return runDoneMsg{run: r, err: err}
	}
}

func (m *Model) resize() {
	const chrome = 4
	width, height := m.width-2, m.height-chrome
	if width < 20 {
		width = 80
	}
	if height < 5 {
		height = 20
	}
	if !m.ready {
		m.viewport = viewport.New(width, height)
		m.ready = true
		return
	}
	m.viewport.Width = width
	m.viewport.Height = height
}

func (m Model) reportContent() string {
	if m.err != nil {
		return errorStyle.Render("Error reading file: ") + m.err.Error()
	}
	if m.result == nil {
		return ""
	}
	return render.Text(m.result, render.Options{Color: true, ShowPreview: true, ShowFailures: true})
}

// View renders the current phase
func (m Model) View() string {
	var b strings.Builder

	switch m.phase {
	case phaseMenu:
		b.WriteString(titleStyle.Render("Select the type of data") + mutedStyle.Render("  "+m.source) + "\n")
		b.WriteString(mutedStyle.Render("  [↑/↓] Navigate    [Enter] Validate    [q] Quit") + "\n\n")
		if len(m.choices) == 0 {
			b.WriteString("  no schemas registered\n")
		}
		for i, choice := range m.choices {
			line := fmt.Sprintf("%s (%d columns)", choice.Name, len(choice.Columns))
			if m.cursor == i {
				b.WriteString("  " + selectedStyle.Render("> "+line) + "\n")
			} else {
				b.WriteString("    " + line + "\n")
			}
		}

	case phaseRunning:
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Validating %s against %s...", m.source, m.choices[m.cursor].Name)) + "\n")

	case phaseReport:
		b.WriteString(borderStyle.Render(fmt.Sprintf("─ %s · %s ", m.source, m.choices[m.cursor].Name)) + "\n")
		b.WriteString(m.viewport.View() + "\n")
		b.WriteString(borderStyle.Render(fmt.Sprintf(" %3.f%%  [↑/↓] Scroll    [esc] Schemas    [q] Quit", m.viewport.ScrollPercent()*100)) + "\n")
	}

	return b.String()
}

// Run starts the program on the alternate screen and returns the final model
func Run(model Model) (Model, error) {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(model.ctx))
	final, err := p.Run()
	if err != nil {
		return model, fmt.Errorf("tui: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return model, nil
	}
	return m, nil
}
