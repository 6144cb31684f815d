package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/daily-checkin/internal/keys"
	"github.com/nhle/daily-checkin/internal/theme"
)

// Screen selects which bindings the overlay lists.
type Screen int

const (
	ScreenCheckIn Screen = iota
	ScreenDashboard
)

var intros = map[Screen]string{
	ScreenCheckIn:   "Check in once a day to keep your streak going.",
	ScreenDashboard: "The calendar shows the last week. The list shows recent history and can be filtered.",
}

// bindings adapts one screen's groups to help.KeyMap.
type bindings struct {
	short []key.Binding
	full  [][]key.Binding
}

func (b bindings) ShortHelp() []key.Binding  { return b.short }
func (b bindings) FullHelp() [][]key.Binding { return b.full }

// Model is the help overlay.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	screen Screen
	width  int
	height int
}

// New creates the help overlay for the check-in screen.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.ShowAll = true
	m := Model{keys: k, help: h}
	m.SetSize(width, height)
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update is a no-op. Closing is handled by the parent.
func (m Model) Update(tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// SetScreen switches the overlay to the bindings of s.
func (m *Model) SetScreen(s Screen) {
	m.screen = s
}

// Screen returns the screen whose bindings are listed.
func (m Model) Screen() Screen {
	return m.screen
}

func (m Model) keyMap() bindings {
	if m.screen == ScreenDashboard {
		return bindings{short: m.keys.ShortHelp(), full: m.keys.DashboardHelp()}
	}
	return bindings{short: m.keys.ShortHelp(), full: m.keys.CheckInHelp()}
}

func (m Model) title() string {
	if m.screen == ScreenDashboard {
		return "Keyboard Shortcuts · Dashboard"
	}
	return "Keyboard Shortcuts · Check-in"
}

// View renders the overlay.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render(m.title())

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		theme.HelpStyle.Render(intros[m.screen]),
		"",
		m.help.View(m.keyMap()),
	)

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(content)
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = max(width-4, 0)
}
