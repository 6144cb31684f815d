package detail

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/daily-checkin/internal/keys"
	"github.com/nhle/daily-checkin/internal/model"
	"github.com/nhle/daily-checkin/internal/theme"
)

// ClosedMsg signals the parent that the modal was dismissed.
type ClosedMsg struct{}

const (
	bodyWidth  = 32
	bodyHeight = 5
)

// Model is the day detail modal. It is shared by the calendar and list
// views and shows one day at a time.
type Model struct {
	day      *model.DisplayDay
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a closed modal centered in a width x height area.
func New(k *keys.KeyMap, width, height int) *Model {
	vp := viewport.New(bodyWidth, bodyHeight)
	vp.Style = lipgloss.NewStyle()

	return &Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Open shows the modal for day.
func (m *Model) Open(day model.DisplayDay) {
	m.day = &day
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Close hides the modal.
func (m *Model) Close() {
	m.day = nil
}

// IsOpen reports whether a day is being shown.
func (m *Model) IsOpen() bool {
	return m.day != nil
}

// Day returns the day being shown, or nil when closed.
func (m *Model) Day() *model.DisplayDay {
	return m.day
}

// Update handles messages while the modal is open.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if !m.IsOpen() {
		return nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.CloseModal) {
			m.Close()
			return func() tea.Msg { return ClosedMsg{} }
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress &&
			msg.Button == tea.MouseButtonLeft &&
			!m.Contains(msg.X, msg.Y) {
			m.Close()
			return func() tea.Msg { return ClosedMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// renderContent builds the modal body.
func (m *Model) renderContent() string {
	if m.day == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	dateStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(m.day.LongLabel()),
		dateStyle.Render(m.day.Date),
		"",
		theme.DayStyle(m.day.Checked).Render(m.day.StatusLabel()),
		theme.HelpStyle.Render("esc/x to close"),
	)
}

// box renders the framed modal without positioning.
func (m *Model) box() string {
	return theme.ModalStyle.Render(m.viewport.View())
}

// bounds returns the modal's top-left corner and size within the area.
func (m *Model) bounds() (x, y, w, h int) {
	b := m.box()
	w, h = lipgloss.Width(b), lipgloss.Height(b)
	x = max((m.width-w)/2, 0)
	y = max((m.height-h)/2, 0)
	return x, y, w, h
}

// Contains reports whether the area-relative cell (x, y) is inside the
// modal frame.
func (m *Model) Contains(x, y int) bool {
	bx, by, bw, bh := m.bounds()
	return x >= bx && x < bx+bw && y >= by && y < by+bh
}

// View renders the modal centered in its area, or nothing when closed.
func (m *Model) View() string {
	if !m.IsOpen() {
		return ""
	}
	x, y, _, _ := m.bounds()
	return lipgloss.NewStyle().
		MarginLeft(x).
		MarginTop(y).
		Render(m.box())
}

// SetSize updates the area the modal is centered in.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
