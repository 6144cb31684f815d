package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/daily-checkin/internal/api"
	"github.com/nhle/daily-checkin/internal/effects"
	"github.com/nhle/daily-checkin/internal/keys"
	"github.com/nhle/daily-checkin/internal/model"
	appsync "github.com/nhle/daily-checkin/internal/sync"
	"github.com/nhle/daily-checkin/internal/ui"
	"github.com/nhle/daily-checkin/internal/ui/checkin"
	"github.com/nhle/daily-checkin/internal/ui/command"
	"github.com/nhle/daily-checkin/internal/ui/dashboard"
	"github.com/nhle/daily-checkin/internal/ui/detail"
	helpview "github.com/nhle/daily-checkin/internal/ui/help"
	"github.com/nhle/daily-checkin/internal/ui/settings"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewCheckIn ViewState = iota
	ViewDashboard
	ViewHelp
	ViewCommand
	ViewSettings
)

// ParseViewState maps a --view flag value to a view. Only the two main
// screens can be opened at startup.
func ParseViewState(s string) (ViewState, error) {
	switch s {
	case "", "checkin":
		return ViewCheckIn, nil
	case "dashboard":
		return ViewDashboard, nil
	default:
		return ViewCheckIn, fmt.Errorf("unknown view %q (want checkin or dashboard)", s)
	}
}

// ReminderMessage is shown in place of the status bar after a missed
// check-in is detected.
const ReminderMessage = "No check-in yet today. Press i, then enter, to check in."

// API is the check-in server as the views use it.
type API interface {
	Status(ctx context.Context) (*model.CheckInStatus, error)
	Checkins(ctx context.Context) (model.DateSet, error)
	CheckIn(ctx context.Context) (*model.CheckInResult, error)
}

// ClientFactory builds an API for a configuration and token.
type ClientFactory func(cfg model.APIConfig, token string, logger *zap.Logger) API

// DefaultClientFactory builds the HTTP client.
func DefaultClientFactory(cfg model.APIConfig, token string, logger *zap.Logger) API {
	return api.FromConfig(cfg, token, logger)
}

// Options configures the root model.
type Options struct {
	Config      *model.AppConfig
	ConfigPath  string
	Token       string
	Logger      *zap.Logger
	InitialView ViewState

	// NewClient defaults to DefaultClientFactory.
	NewClient ClientFactory

	// Now overrides the clock of every view. Used by tests.
	Now func() time.Time

	// SettingsOptions are passed through to the settings view.
	SettingsOptions []settings.Option
}

// Model is the root Bubble Tea model that manages view routing, layout,
// background polling and the shared API client.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	logger       *zap.Logger

	cfg        *model.AppConfig
	configPath string
	token      string
	newClient  ClientFactory
	now        func() time.Time
	api        API

	checkIn      checkin.Model
	dashboard    dashboard.Model
	modal        *detail.Model
	helpView     helpview.Model
	commandView  command.Model
	settingsView settings.Model
	poller       *appsync.Poller

	ready       bool
	reminder    string
	authAlert   string
	flash       string
	lastRefresh time.Time
}

// New creates a new root application model.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	newClient := opts.NewClient
	if newClient == nil {
		newClient = DefaultClientFactory
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	k := keys.DefaultKeyMap()
	m := Model{
		currentView:  opts.InitialView,
		previousView: opts.InitialView,
		layout:       ui.NewLayout(80, 24),
		keys:         k,
		logger:       logger,
		cfg:          cfg,
		configPath:   opts.ConfigPath,
		token:        opts.Token,
		newClient:    newClient,
		now:          now,
		modal:        detail.New(k, 80, 22),
		helpView:     helpview.New(k, 80, 22),
		commandView:  command.New(80, 22),
		settingsView: settings.New(cfg, opts.ConfigPath, k, logger, 80, 22, opts.SettingsOptions...),
	}
	m.buildViews()
	return m
}

// buildViews (re)creates the API client, the two main views and the
// poller from the current configuration.
func (m *Model) buildViews() {
	m.api = m.newClient(m.cfg.API, m.token, m.logger)

	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()

	m.checkIn = checkin.New(m.api, m.keys, m.logger.Named("checkin"), effectFor(m.cfg, m.now), w, h)
	m.checkIn.SetClock(m.now)

	m.modal.Close()
	m.dashboard = dashboard.New(m.api, m.keys, m.logger.Named("dashboard"), m.modal, m.cfg.Dashboard, w, h)
	m.dashboard.SetClock(m.now)

	pcfg, err := appsync.ConfigFrom(m.cfg)
	if err != nil {
		m.logger.Warn("reminder disabled", zap.Error(err))
		pcfg.ReminderEnabled = false
	}
	m.poller = appsync.New(m.api, pcfg, m.logger.Named("poller"))
	m.poller.SetClock(m.now)
}

// effectFor returns the success effect, or nil when it is turned off.
func effectFor(cfg *model.AppConfig, now func() time.Time) effects.Effect {
	if !cfg.Display.Confetti {
		return nil
	}
	return effects.NewConfetti(effects.WithClock(now))
}

// Init loads both main views and starts polling.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.checkIn.Init(),
		m.dashboard.Init(),
		m.poller.Start(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.checkIn.SetSize(contentWidth, contentHeight)
		m.dashboard.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	// Async results are routed to their owner whatever view is active.
	case checkin.StatusLoadedMsg:
		m.noteAuth(msg.Err)
		var cmd tea.Cmd
		m.checkIn, cmd = m.checkIn.Update(msg)
		return m, cmd

	case checkin.ResultMsg:
		if msg.Err != nil {
			m.noteAuth(msg.Err)
		}
		var cmd tea.Cmd
		m.checkIn, cmd = m.checkIn.Update(msg)
		return m, cmd

	case effects.FrameMsg:
		var cmd tea.Cmd
		m.checkIn, cmd = m.checkIn.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmds [2]tea.Cmd
		m.checkIn, cmds[0] = m.checkIn.Update(msg)
		m.settingsView, cmds[1] = m.settingsView.Update(msg)
		return m, tea.Batch(cmds[:]...)

	case checkin.CheckedInMsg:
		m.reminder = ""
		return m, m.dashboard.Load()

	case dashboard.LoadedMsg:
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		if m.dashboard.Loaded() || m.dashboard.LoadErr() != nil {
			m.noteAuth(m.dashboard.LoadErr())
		}
		return m, cmd

	case detail.ClosedMsg:
		return m, nil

	case appsync.RefreshMsg:
		m.lastRefresh = msg.At
		return m, tea.Batch(
			m.checkIn.LoadStatus(),
			m.dashboard.Load(),
			m.poller.WaitForNextResult(),
		)

	case appsync.MissedCheckInMsg:
		m.reminder = ReminderMessage
		return m, m.poller.WaitForNextResult()

	case appsync.AuthErrorMsg:
		m.noteAuth(msg.Err)
		return m, m.poller.WaitForNextResult()

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case settings.DoneMsg:
		m.currentView = m.previousView
		return m, nil

	case settings.SavedMsg:
		return m, m.applyConfig(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		// Views lay themselves out from row 0 of the content area.
		msg.Y -= m.layout.ContentTop()
		if msg.Y < 0 || msg.Y >= m.layout.ContentHeight() {
			return m, nil
		}
		return m.updateActiveView(msg)
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleKey processes global keys before the active view sees them.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""

	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	// Views that capture text or own esc get every other key.
	switch {
	case m.currentView == ViewSettings:
		return m.updateActiveView(msg)
	case m.currentView == ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil
		}
		return m.updateActiveView(msg)
	case m.currentView == ViewDashboard && m.dashboard.ModalOpen():
		return m.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil
		}
		m.open(ViewHelp)
		return m, nil

	case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
		m.currentView = m.previousView
		return m, nil

	case key.Matches(msg, m.keys.Command):
		m.open(ViewCommand)
		return m, m.commandView.Focus()

	case key.Matches(msg, m.keys.Settings) && m.currentView != ViewHelp:
		return m, m.openSettings()

	case key.Matches(msg, m.keys.Dashboard) && m.currentView == ViewCheckIn:
		m.currentView = ViewDashboard
		return m, nil

	case key.Matches(msg, m.keys.CheckInView) && m.currentView == ViewDashboard:
		m.currentView = ViewCheckIn
		return m, nil

	case key.Matches(msg, m.keys.Refresh) && m.currentView == ViewCheckIn:
		return m, m.checkIn.LoadStatus()
	}

	return m.updateActiveView(msg)
}

// open switches to an overlay view, remembering where to return.
func (m *Model) open(v ViewState) {
	if m.currentView == ViewCheckIn || m.currentView == ViewDashboard {
		m.previousView = m.currentView
	}
	m.currentView = v
	if v == ViewHelp {
		screen := helpview.ScreenCheckIn
		if m.previousView == ViewDashboard {
			screen = helpview.ScreenDashboard
		}
		m.helpView.SetScreen(screen)
	}
}

func (m *Model) openSettings() tea.Cmd {
	m.open(ViewSettings)
	m.settingsView.SetConfig(m.cfg, m.token)
	return m.settingsView.Init()
}

func (m *Model) quit() tea.Cmd {
	m.poller.Stop()
	return tea.Quit
}

// applyConfig switches to a saved configuration. A blank token keeps the
// current one unless the stored token was cleared.
func (m *Model) applyConfig(saved settings.SavedMsg) tea.Cmd {
	if saved.Token != "" || saved.ClearToken {
		m.token = saved.Token
	}
	cfg := saved.Config
	m.cfg = cfg
	m.authAlert = ""
	m.poller.Stop()
	m.buildViews()
	m.logger.Info("configuration applied", zap.String("base_url", cfg.API.BaseURL))

	return tea.Batch(
		m.checkIn.Init(),
		m.dashboard.Init(),
		m.poller.Start(),
	)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewCheckIn:
		m.checkIn, cmd = m.checkIn.Update(msg)
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.title(), m.refreshStatus())
	content := m.renderContent()

	var statusBar string
	switch {
	case m.flash != "":
		statusBar = m.layout.RenderAlertBar(m.flash)
	case m.authAlert != "" && m.currentView != ViewHelp:
		statusBar = m.layout.RenderAlertBar(m.authAlert)
	case m.reminder != "" && m.currentView != ViewHelp:
		statusBar = m.layout.RenderAlertBar(m.reminder)
	default:
		statusBar = m.layout.RenderStatusBar(m.keyHints())
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCheckIn:
		return m.checkIn.View()
	case ViewDashboard:
		return m.dashboard.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return ""
	}
}

func (m Model) title() string {
	switch m.currentView {
	case ViewDashboard:
		return "Daily Check-in · Dashboard"
	case ViewSettings:
		return "Daily Check-in · Settings"
	default:
		return "Daily Check-in"
	}
}

// refreshStatus returns a short string describing background activity.
func (m Model) refreshStatus() string {
	switch {
	case m.dashboard.Loading():
		return "refreshing..."
	case api.IsAuthError(m.dashboard.LoadErr()):
		return "⚠ token rejected"
	case m.dashboard.LoadErr() != nil:
		return "⚠ server unreachable"
	case !m.lastRefresh.IsZero():
		return "refreshed " + m.lastRefresh.Format("3:04 PM")
	default:
		return m.cfg.API.BaseURL
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewSettings:
		return "enter next | shift+tab previous | esc back"
	case ViewDashboard:
		if m.dashboard.ModalOpen() {
			return "esc/x close | click outside to close"
		}
		if m.dashboard.State().View == model.ViewList {
			return "j/k move | enter open | 1/2/3/f filter | c/L/tab view | r refresh | i check in | q quit"
		}
		return "h/l move | enter open | c/L/tab view | r refresh | i check in | ? help | q quit"
	default:
		return "enter check in | d dashboard | s settings | : command | ? help | q quit"
	}
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState { return m.currentView }

// Reminder returns the pending reminder text, if any.
func (m Model) Reminder() string { return m.reminder }

// AuthAlert returns the token warning, if the server rejected the token.
func (m Model) AuthAlert() string { return m.authAlert }

// noteAuth raises the token warning on an AuthError and clears it once a
// call succeeds. Other failures leave it as is.
func (m *Model) noteAuth(err error) {
	switch {
	case api.IsAuthError(err):
		m.authAlert = api.TokenRejectedMessage
	case err == nil:
		m.authAlert = ""
	}
}
