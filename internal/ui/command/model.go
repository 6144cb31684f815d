package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/daily-checkin/internal/theme"
)

// CommandMsg carries a command line the user ran.
type CommandMsg string

// Entry is a command the palette offers.
type Entry struct {
	Line string
	Desc string
}

// Commands is the palette's catalogue, in display order.
var Commands = []Entry{
	{"checkin", "go to the check-in screen"},
	{"dashboard", "go to the dashboard"},
	{"refresh", "reload status and history"},
	{"filter all", "list every day"},
	{"filter checked", "list checked-in days"},
	{"filter missed", "list missed days"},
	{"view calendar", "show the last week"},
	{"view list", "show recent history"},
	{"settings", "edit settings"},
	{"help", "show keyboard shortcuts"},
	{"quit", "exit"},
}

// Parse lowercases line and splits it into a command name and its first
// argument.
func Parse(line string) (name, arg string) {
	fields := strings.Fields(strings.ToLower(line))
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], fields[1]
	}
}

// Matching returns the catalogue entries that start with prefix.
func Matching(prefix string) []Entry {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	var out []Entry
	for _, e := range Commands {
		if strings.HasPrefix(e.Line, prefix) {
			out = append(out, e)
		}
	}
	return out
}

// Model is the command palette.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a focused palette.
func New(width, height int) Model {
	lines := make([]string, len(Commands))
	for i, e := range Commands {
		lines[i] = e.Line
	}

	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(lines)
	ti.Focus()

	m := Model{input: ti}
	m.SetSize(width, height)
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update emits a CommandMsg on enter and otherwise edits the input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEnter {
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if line == "" {
			return m, nil
		}
		return m, func() tea.Msg { return CommandMsg(line) }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the input above the commands matching it.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Command Palette")

	matches := Matching(m.input.Value())
	rows := make([]string, 0, len(matches))
	for _, e := range matches {
		rows = append(rows, fmt.Sprintf("%-16s %s", e.Line, theme.HelpStyle.Render(e.Desc)))
	}
	if len(rows) == 0 {
		rows = append(rows, theme.HelpStyle.Render("no matching command"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.input.View(),
		"",
		strings.Join(rows, "\n"),
		"",
		theme.HelpStyle.Render("tab completes, enter runs, esc cancels"),
	)

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(content)
}

// SetSize updates the palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-6, 0)
}

// Focus gives keyboard focus to the input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
