package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down  key.Binding
	Up    key.Binding
	Left  key.Binding
	Right key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Check-in
	CheckIn key.Binding

	// Screens
	Dashboard   key.Binding
	CheckInView key.Binding
	Settings    key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Dashboard views
	CalendarView key.Binding
	ListView     key.Binding
	ToggleView   key.Binding

	// Dashboard filters
	FilterAll     key.Binding
	FilterChecked key.Binding
	FilterMissed  key.Binding
	CycleFilter   key.Binding

	// Modal
	CloseModal key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "previous day"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next day"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open day"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		CheckIn: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter/space", "check in"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dashboard"),
		),
		CheckInView: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "check-in screen"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		CalendarView: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "calendar view"),
		),
		ListView: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "list view"),
		),
		ToggleView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle view"),
		),
		FilterAll: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "show all"),
		),
		FilterChecked: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "show checked"),
		),
		FilterMissed: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "show missed"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle filter"),
		),
		CloseModal: key.NewBinding(
			key.WithKeys("esc", "x"),
			key.WithHelp("esc/x", "close detail"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.CheckIn, k.Dashboard, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns every keybinding, check-in screen first.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return append(k.CheckInHelp(), k.DashboardHelp()...)
}

// CheckInHelp groups the bindings that act on the check-in screen.
func (k *KeyMap) CheckInHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.CheckIn, k.Dashboard, k.Refresh},
		k.globalHelp(),
	}
}

// DashboardHelp groups the bindings that act on the dashboard.
func (k *KeyMap) DashboardHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.CalendarView, k.ListView, k.ToggleView, k.Refresh, k.CheckInView},
		{k.Left, k.Right, k.Up, k.Down, k.Select, k.CloseModal},
		{k.FilterAll, k.FilterChecked, k.FilterMissed, k.CycleFilter},
		k.globalHelp(),
	}
}

func (k *KeyMap) globalHelp() []key.Binding {
	return []key.Binding{k.Settings, k.Command, k.Help, k.Back, k.Quit}
}
