package checkin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nhle/daily-checkin/internal/api"
	"github.com/nhle/daily-checkin/internal/effects"
	"github.com/nhle/daily-checkin/internal/keys"
	"github.com/nhle/daily-checkin/internal/model"
	"github.com/nhle/daily-checkin/internal/theme"
)

// Status line texts.
const (
	PromptMessage  = "Did you pause and acknowledge yourself today?"
	PendingMessage = "Checking in..."
	AfterMessage   = "Good job. You showed up today."
	FailedMessage  = "Check-in failed."
	RetryMessage   = "Check-in failed. Please try again."
)

// requestTimeout bounds a single API call issued by this view.
const requestTimeout = 30 * time.Second

// API is the subset of the check-in API this view uses.
type API interface {
	Status(ctx context.Context) (*model.CheckInStatus, error)
	CheckIn(ctx context.Context) (*model.CheckInResult, error)
}

// StatusLoadedMsg carries the result of a status fetch.
type StatusLoadedMsg struct {
	Status *model.CheckInStatus
	Err    error
}

// ResultMsg carries the result of a check-in attempt.
type ResultMsg struct {
	Result *model.CheckInResult
	Err    error
}

// CheckedInMsg tells the parent that today is recorded (success or info).
type CheckedInMsg struct {
	Outcome model.Outcome
}

// Model is the check-in screen: a button, a status line and a streak card.
type Model struct {
	api     API
	keys    *keys.KeyMap
	logger  *zap.Logger
	effect  effects.Effect
	spinner spinner.Model
	now     func() time.Time

	status     *model.CheckInStatus
	message    string
	kind       theme.MessageKind
	submitting bool

	width  int
	height int
}

// New creates the check-in view. effect may be nil, in which case no
// success animation is played.
func New(
	client API,
	k *keys.KeyMap,
	logger *zap.Logger,
	effect effects.Effect,
	width, height int,
) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		api:     client,
		keys:    k,
		logger:  logger,
		effect:  effect,
		spinner: sp,
		now:     time.Now,
		message: PromptMessage,
		kind:    theme.MessageNeutral,
		width:   width,
		height:  height,
	}
}

// SetClock overrides the time source used to format the streak card.
func (m *Model) SetClock(now func() time.Time) {
	m.now = now
}

// Init loads the current streak status.
func (m Model) Init() tea.Cmd {
	return m.LoadStatus()
}

// LoadStatus returns a command that fetches /api/status.
func (m Model) LoadStatus() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		status, err := client.Status(ctx)
		return StatusLoadedMsg{Status: status, Err: err}
	}
}

// submitCheckIn returns a command that posts /api/checkin.
func (m Model) submitCheckIn() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, err := client.CheckIn(ctx)
		return ResultMsg{Result: result, Err: err}
	}
}

// Update handles messages for the check-in view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatusLoadedMsg:
		if msg.Err != nil {
			m.logger.Error("failed to load daily status", zap.Error(msg.Err))
			return m, nil
		}
		m.status = msg.Status
		return m, nil

	case ResultMsg:
		return m.handleResult(msg)

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case effects.FrameMsg:
		if m.effect == nil {
			return m, nil
		}
		return m, m.effect.Update(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.CheckIn) {
			return m.Submit()
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress &&
			msg.Button == tea.MouseButtonLeft &&
			m.buttonContains(msg.X, msg.Y) {
			return m.Submit()
		}
	}

	return m, nil
}

// Submit starts a check-in unless one is already in flight.
func (m Model) Submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	m.submitting = true
	m.message = PendingMessage
	m.kind = theme.MessageNeutral
	return m, tea.Batch(m.submitCheckIn(), m.spinner.Tick)
}

// handleResult applies a check-in outcome. The button is re-enabled on
// every path.
func (m Model) handleResult(msg ResultMsg) (Model, tea.Cmd) {
	m.submitting = false

	if msg.Err != nil {
		m.kind = theme.MessageError
		if api.IsAuthError(msg.Err) {
			m.logger.Warn("check-in rejected token", zap.Error(msg.Err))
			m.message = api.TokenRejectedMessage
			return m, nil
		}
		m.logger.Error("check-in failed", zap.Error(msg.Err))
		m.message = RetryMessage
		return m, nil
	}

	result := msg.Result
	if result == nil || result.IsFailure() {
		m.message = FailedMessage
		if result != nil && strings.TrimSpace(result.Message) != "" {
			m.message = result.Message
		}
		m.kind = theme.MessageError
		m.logger.Warn("check-in rejected", zap.String("message", m.message))
		return m, nil
	}

	m.message = AfterMessage
	outcome := result.Status
	notify := func() tea.Msg { return CheckedInMsg{Outcome: outcome} }

	if result.IsInfo() {
		m.kind = theme.MessageInfo
		m.logger.Info("already checked in today")
		return m, tea.Batch(m.LoadStatus(), notify)
	}

	m.kind = theme.MessageSuccess
	m.logger.Info("checked in")
	return m, tea.Batch(m.celebrate(), m.LoadStatus(), notify)
}

// celebrate starts the success effect if one is configured.
func (m Model) celebrate() tea.Cmd {
	if m.effect == nil {
		return nil
	}
	return m.effect.Start()
}

// Message returns the current status line text.
func (m Model) Message() string { return m.message }

// MessageKind returns the current status line color class.
func (m Model) MessageKind() theme.MessageKind { return m.kind }

// Submitting reports whether the button is disabled by an in-flight request.
func (m Model) Submitting() bool { return m.submitting }

// Status returns the last successfully loaded status, if any.
func (m Model) Status() *model.CheckInStatus { return m.status }

// CardVisible reports whether the streak card is shown.
func (m Model) CardVisible() bool { return m.status.ShowsStreak() }

// CardLines returns the streak card text, or nil when hidden.
func (m Model) CardLines() []string {
	if !m.CardVisible() {
		return nil
	}
	return []string{
		fmt.Sprintf("You are alive for %d days in a row", m.status.CurrentStreak),
		"Last check-in: " + FormatWhen(m.status.LastCheckInTime.Time, m.now()),
	}
}

// FormatWhen renders a check-in time relative to now, in local time.
func FormatWhen(t, now time.Time) string {
	t = t.In(now.Location())
	clock := t.Format("3:04 PM")

	switch model.FormatDate(t) {
	case model.FormatDate(now):
		return "Today at " + clock
	case model.FormatDate(now.AddDate(0, 0, -1)):
		return "Yesterday at " + clock
	default:
		return t.Format("Mon, Jan 2") + " at " + clock
	}
}

// Screen rows, top to bottom: title, blank, effect canvas, button.
const (
	effectRow  = 2
	effectRows = 6
	buttonRow  = effectRow + effectRows
	buttonRows = 3
)

func (m Model) renderButton() string {
	label := "Check in"
	style := theme.ButtonStyle
	switch {
	case m.submitting:
		label = m.spinner.View() + " Checking in"
		style = theme.ButtonDisabledStyle
	case m.effect != nil && m.effect.Active():
		style = theme.ButtonPulseStyle
	}
	return style.Render(label)
}

// buttonContains reports whether the view-relative cell (x, y) is on the button.
func (m Model) buttonContains(x, y int) bool {
	if y < buttonRow || y >= buttonRow+buttonRows {
		return false
	}
	w := lipgloss.Width(m.renderButton())
	left := (m.width - w) / 2
	if left < 0 {
		left = 0
	}
	return x >= left && x < left+w
}

// View renders the check-in screen.
func (m Model) View() string {
	center := func(s string) string {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, s)
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render("Daily Check-in")

	canvas := strings.Repeat("\n", effectRows-1)
	if m.effect != nil {
		canvas = m.effect.View()
	}

	rows := []string{
		center(title),
		"",
		center(canvas),
		center(m.renderButton()),
		"",
		center(theme.MessageStyle(m.kind).Render(m.message)),
		"",
	}

	if lines := m.CardLines(); lines != nil {
		body := lipgloss.JoinVertical(
			lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Render(lines[0]),
			lipgloss.NewStyle().Foreground(theme.ColorGray).Render(lines[1]),
		)
		rows = append(rows, center(theme.CardStyle.Render(body)))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
