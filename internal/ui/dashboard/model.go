package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/daily-checkin/internal/api"
	"github.com/nhle/daily-checkin/internal/keys"
	"github.com/nhle/daily-checkin/internal/model"
	"github.com/nhle/daily-checkin/internal/theme"
	"github.com/nhle/daily-checkin/internal/ui/detail"
)

// LoadErrorMessage replaces both containers when a load fails.
const LoadErrorMessage = "Error loading dashboard."

const requestTimeout = 30 * time.Second

// loadSeq numbers loads across every dashboard instance.
var loadSeq atomic.Uint64

// API is the subset of the check-in API the dashboard uses.
type API interface {
	Status(ctx context.Context) (*model.CheckInStatus, error)
	Checkins(ctx context.Context) (model.DateSet, error)
}

// LoadedMsg carries the joined result of a dashboard load. Seq orders it
// against other loads.
type LoadedMsg struct {
	Seq      uint64
	Checkins model.DateSet
	Status   *model.CheckInStatus
	Err      error
}

// Screen rows, top to bottom.
const (
	toggleRow    = 2
	filterRow    = 3
	containerRow = 5
	cellRows     = 5
	cellStride   = theme.CellWidth + 3
)

// Model is the dashboard: a streak summary, a 7-day calendar, a filtered
// list of recent days and a shared day detail modal.
type Model struct {
	api    API
	keys   *keys.KeyMap
	logger *zap.Logger
	modal  *detail.Model
	now    func() time.Time

	state    model.DashboardState
	status   *model.CheckInStatus
	listDays int
	loaded   bool
	loading  bool
	loadErr  error
	applied  uint64 // Seq of the newest load applied

	calCursor  int
	listCursor int
	listOffset int

	width  int
	height int
}

// New creates the dashboard. modal may be nil, in which case selecting a
// day does nothing.
func New(
	client API,
	k *keys.KeyMap,
	logger *zap.Logger,
	modal *detail.Model,
	cfg model.DashboardConfig,
	width, height int,
) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	listDays := cfg.ListDays
	if model.ValidateListDays(listDays) != nil {
		listDays = model.DefaultListDays
	}

	m := Model{
		api:      client,
		keys:     k,
		logger:   logger,
		modal:    modal,
		now:      time.Now,
		listDays: listDays,
		applied:  loadSeq.Load(),
		state: model.DashboardState{
			Checkins: model.NewDateSet(),
			Filter:   model.ParseFilter(cfg.DefaultFilter),
			View:     model.ParseDashboardView(cfg.DefaultView),
		},
		calCursor: model.CalendarSize - 1,
	}
	m.SetSize(width, height)
	return m
}

// SetClock overrides the source of "today".
func (m *Model) SetClock(now func() time.Time) {
	m.now = now
}

// Init loads the dashboard data.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a command fetching check-ins and status concurrently. The
// load fails if either request fails. A result is dropped if a later load
// was already applied.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	client := m.api
	seq := loadSeq.Add(1)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var (
			checkins model.DateSet
			status   *model.CheckInStatus
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			set, err := client.Checkins(gctx)
			if err != nil {
				return fmt.Errorf("loading check-ins: %w", err)
			}
			checkins = set
			return nil
		})
		g.Go(func() error {
			st, err := client.Status(gctx)
			if err != nil {
				return fmt.Errorf("loading status: %w", err)
			}
			status = st
			return nil
		})

		if err := g.Wait(); err != nil {
			return LoadedMsg{Seq: seq, Err: err}
		}
		return LoadedMsg{Seq: seq, Checkins: checkins, Status: status}
	}
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if lm, ok := msg.(LoadedMsg); ok {
		return m.applyLoad(lm), nil
	}

	if m.ModalOpen() {
		switch msg.(type) {
		case tea.KeyMsg, tea.MouseMsg:
			return m, m.modal.Update(msg)
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			return m.handleClick(msg.X, msg.Y)
		}
		if msg.Button == tea.MouseButtonWheelUp && m.state.View == model.ViewList {
			m.moveList(-1)
		}
		if msg.Button == tea.MouseButtonWheelDown && m.state.View == model.ViewList {
			m.moveList(1)
		}
	}

	return m, nil
}

func (m Model) applyLoad(msg LoadedMsg) Model {
	if msg.Seq <= m.applied {
		m.logger.Debug("dropping stale dashboard load",
			zap.Uint64("seq", msg.Seq), zap.Uint64("applied", m.applied))
		return m
	}
	m.applied = msg.Seq
	m.loading = false
	if msg.Err != nil {
		m.logger.Error("failed to load dashboard", zap.Error(msg.Err))
		m.loadErr = msg.Err
		return m
	}

	checkins := msg.Checkins
	if checkins == nil {
		checkins = model.NewDateSet()
	}
	m.state.Checkins = checkins
	m.status = msg.Status
	m.loaded = true
	m.loadErr = nil
	m.clampList()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m, m.Load()

	case key.Matches(msg, m.keys.CalendarView):
		m.SetView(model.ViewCalendar)
	case key.Matches(msg, m.keys.ListView):
		m.SetView(model.ViewList)
	case key.Matches(msg, m.keys.ToggleView):
		m.SetView(m.state.View.Toggle())

	case key.Matches(msg, m.keys.FilterAll):
		m.SetFilter(model.FilterAll)
	case key.Matches(msg, m.keys.FilterChecked):
		m.SetFilter(model.FilterChecked)
	case key.Matches(msg, m.keys.FilterMissed):
		m.SetFilter(model.FilterMissed)
	case key.Matches(msg, m.keys.CycleFilter):
		m.SetFilter(m.state.Filter.Next())

	case key.Matches(msg, m.keys.Left):
		if m.state.View == model.ViewCalendar && m.calCursor > 0 {
			m.calCursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.state.View == model.ViewCalendar && m.calCursor < model.CalendarSize-1 {
			m.calCursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.state.View == model.ViewList {
			m.moveList(-1)
		}
	case key.Matches(msg, m.keys.Down):
		if m.state.View == model.ViewList {
			m.moveList(1)
		}

	case key.Matches(msg, m.keys.Select):
		m.openSelected()
	}

	return m, nil
}

// handleClick dispatches a left click at view-relative (x, y).
func (m Model) handleClick(x, y int) (Model, tea.Cmd) {
	switch {
	case y == toggleRow:
		if v, ok := hitSegment(x, viewLabels(m.state.View)); ok {
			m.SetView(model.Views[v])
		}

	case y == filterRow:
		if f, ok := hitSegment(x, filterLabels(m.state.Filter)); ok {
			m.SetFilter(model.Filters[f])
		}

	case y >= containerRow && m.loaded && m.loadErr == nil:
		if m.state.View == model.ViewCalendar {
			if idx, ok := calendarHit(x, y-containerRow); ok {
				m.calCursor = idx
				m.openSelected()
			}
			return m, nil
		}

		idx := m.listOffset + (y - containerRow)
		if idx < len(m.listRows()) && idx < m.listOffset+m.visibleRows() {
			m.listCursor = idx
			m.openSelected()
		}
	}

	return m, nil
}

// calendarHit maps a container-relative cell to a calendar index.
func calendarHit(x, y int) (int, bool) {
	if x < 0 || y < 0 || y >= cellRows {
		return 0, false
	}
	idx := x / cellStride
	if idx >= model.CalendarSize || x%cellStride >= theme.CellWidth+2 {
		return 0, false
	}
	return idx, true
}

// SetView switches the visible view.
func (m *Model) SetView(v model.DashboardView) {
	m.state.View = v
}

// SetFilter changes the list filter. The list is re-derived from the
// cached check-ins; nothing is fetched.
func (m *Model) SetFilter(f model.Filter) {
	m.state.Filter = f
	m.clampList()
}

func (m *Model) moveList(delta int) {
	n := len(m.listRows())
	if n == 0 {
		return
	}
	m.listCursor = min(max(m.listCursor+delta, 0), n-1)

	visible := m.visibleRows()
	if m.listCursor < m.listOffset {
		m.listOffset = m.listCursor
	}
	if m.listCursor >= m.listOffset+visible {
		m.listOffset = m.listCursor - visible + 1
	}
}

func (m *Model) clampList() {
	n := len(m.listRows())
	if n == 0 {
		m.listCursor, m.listOffset = 0, 0
		return
	}
	m.listCursor = min(m.listCursor, n-1)
	m.listOffset = min(m.listOffset, m.listCursor)
	m.moveList(0)
}

func (m Model) visibleRows() int {
	return max(m.height-containerRow, 1)
}

// openSelected opens the modal for the focused day of the active view.
func (m *Model) openSelected() {
	if m.modal == nil || !m.loaded || m.loadErr != nil {
		return
	}

	switch m.state.View {
	case model.ViewCalendar:
		days := m.calendarDays()
		if m.calCursor < len(days) {
			m.modal.Open(days[m.calCursor])
		}
	case model.ViewList:
		rows := m.listRows()
		if m.listCursor < len(rows) {
			m.modal.Open(rows[m.listCursor])
		}
	}
}

func (m Model) calendarDays() []model.DisplayDay {
	return model.CalendarDays(m.now(), m.state.Checkins)
}

func (m Model) listRows() []model.DisplayDay {
	return model.ListDays(m.now(), m.listDays, m.state.Filter, m.state.Checkins)
}

// State returns the dashboard's local state.
func (m Model) State() model.DashboardState { return m.state }

// Status returns the last loaded status.
func (m Model) Status() *model.CheckInStatus { return m.status }

// LoadErr returns the error of the last load, if it failed.
func (m Model) LoadErr() error { return m.loadErr }

// Loaded reports whether a load has succeeded at least once.
func (m Model) Loaded() bool { return m.loaded }

// Loading reports whether a load is in flight.
func (m Model) Loading() bool { return m.loading }

// ModalOpen reports whether the day detail modal is showing.
func (m Model) ModalOpen() bool {
	return m.modal != nil && m.modal.IsOpen()
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.modal != nil {
		m.modal.SetSize(width, height)
	}
	m.clampList()
}

// renderStreakSummary renders the current and best streak, each
// defaulting to 0.
func renderStreakSummary(status *model.CheckInStatus) string {
	label := lipgloss.NewStyle().Foreground(theme.ColorGray)
	value := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen)

	return label.Render("Current streak: ") + value.Render(fmt.Sprint(status.Current())) +
		"    " +
		label.Render("Best streak: ") + value.Render(fmt.Sprint(status.Best()))
}

// renderCalendarView renders the seven day cells, oldest first.
func (m Model) renderCalendarView() string {
	if body, ok := m.placeholder(); ok {
		return body
	}

	days := m.calendarDays()
	cells := make([]string, 0, len(days)*2)
	for i, d := range days {
		mark := "•"
		if d.Checked {
			mark = "✓"
		}
		content := lipgloss.JoinVertical(
			lipgloss.Center,
			d.WeekdayShort(),
			fmt.Sprint(d.DayOfMonth()),
			theme.DayStyle(d.Checked).Render(mark),
		)
		if i > 0 {
			cells = append(cells, " ")
		}
		cells = append(cells, theme.CellStyle(d.Checked, i == m.calCursor).Render(content))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// renderListView renders the filtered window, newest first. It is rebuilt
// from the cached check-ins on every call.
func (m Model) renderListView() string {
	if body, ok := m.placeholder(); ok {
		return body
	}

	rows := m.listRows()
	if len(rows) == 0 {
		return theme.HelpStyle.Render(fmt.Sprintf("No %s days in the last %d days.", strings.ToLower(m.state.Filter.Label()), m.listDays))
	}

	end := min(m.listOffset+m.visibleRows(), len(rows))
	lines := make([]string, 0, end-m.listOffset)
	for i := m.listOffset; i < end; i++ {
		d := rows[i]
		text := fmt.Sprintf("%-11s %s", d.ShortLabel(), theme.DayStyle(d.Checked).Render(d.StatusLabel()))
		if i == m.listCursor {
			lines = append(lines, theme.SelectedItemStyle.Render(text))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(text))
		}
	}
	return strings.Join(lines, "\n")
}

// placeholder returns the text shown instead of day data before the
// first load or after a failed one.
func (m Model) placeholder() (string, bool) {
	switch {
	case m.loadErr != nil:
		text := LoadErrorMessage
		if api.IsAuthError(m.loadErr) {
			text += "\n" + api.TokenRejectedMessage
		}
		return theme.MessageStyle(theme.MessageError).Render(text), true
	case !m.loaded:
		return theme.HelpStyle.Render("Loading..."), true
	default:
		return "", false
	}
}

func viewLabels(active model.DashboardView) []segment {
	out := make([]segment, len(model.Views))
	for i, v := range model.Views {
		out[i] = segment{label: v.Label(), active: v == active}
	}
	return out
}

func filterLabels(active model.Filter) []segment {
	out := make([]segment, len(model.Filters))
	for i, f := range model.Filters {
		out[i] = segment{label: f.Label(), active: f == active}
	}
	return out
}

type segment struct {
	label  string
	active bool
}

func (s segment) render() string {
	if s.active {
		return theme.ToggleActiveStyle.Render(s.label)
	}
	return theme.ToggleStyle.Render(s.label)
}

func renderSegments(segs []segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.render()
	}
	return strings.Join(parts, " ")
}

// hitSegment returns the index of the segment under column x.
func hitSegment(x int, segs []segment) (int, bool) {
	left := 0
	for i, s := range segs {
		w := lipgloss.Width(s.render())
		if x >= left && x < left+w {
			return i, true
		}
		left += w + 1
	}
	return 0, false
}

// View renders the dashboard, or the detail modal when it is open.
func (m Model) View() string {
	if m.ModalOpen() {
		return m.modal.View()
	}

	container := m.renderCalendarView()
	if m.state.View == model.ViewList {
		container = m.renderListView()
	}

	rows := []string{
		renderStreakSummary(m.status),
		"",
		renderSegments(viewLabels(m.state.View)),
		renderSegments(filterLabels(m.state.Filter)),
		"",
		container,
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Render(strings.Join(rows, "\n"))
}
