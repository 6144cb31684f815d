package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nhle/daily-checkin/internal/api"
	"github.com/nhle/daily-checkin/internal/credential"
	"github.com/nhle/daily-checkin/internal/keys"
	"github.com/nhle/daily-checkin/internal/model"
	"github.com/nhle/daily-checkin/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeForm       Mode = iota // Editing the form
	ModeValidating             // Testing the connection
	ModeResult                 // Showing the save or validation result
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg carries the configuration that was written to disk. Token is
// empty when the stored token was left unchanged. ClearToken reports that
// the stored token was deleted.
type SavedMsg struct {
	Config     *model.AppConfig
	Token      string
	ClearToken bool
}

// resultMsg carries the outcome of a validate-and-save attempt.
type resultMsg struct {
	cfg        *model.AppConfig
	token      string
	clearToken bool
	streak     int
	err        error
}

// fields holds the values the huh form edits. It lives behind a pointer so
// every copy of Model sees what the form writes.
type fields struct {
	baseURL    string
	listDays   string
	view       string
	filter     string
	confetti   bool
	reminder   bool
	alertTime  string
	token      string
	clearToken bool
}

// ValidateFunc checks that the API at cfg answers. It returns the current
// streak as a sign of life.
type ValidateFunc func(ctx context.Context, cfg *model.AppConfig, token string) (int, error)

// validateTimeout bounds the connection test.
const validateTimeout = 15 * time.Second

// Model is the settings form.
type Model struct {
	mode   Mode
	cfg    *model.AppConfig
	path   string
	keys   *keys.KeyMap
	logger *zap.Logger

	validate  ValidateFunc
	saveToken func(string) error
	saveFile  func(string, *model.AppConfig) error

	// token is the one in use, pinged when the token field is left blank.
	token string

	form   *huh.Form
	fields *fields

	spinner   spinner.Model
	resultErr error
	streak    int
	statusMsg string

	width, height int
}

// Option configures the settings view.
type Option func(*Model)

// WithValidator overrides the connection test.
func WithValidator(v ValidateFunc) Option {
	return func(m *Model) { m.validate = v }
}

// WithTokenStore overrides where the API token is saved.
func WithTokenStore(save func(string) error) Option {
	return func(m *Model) { m.saveToken = save }
}

// WithConfigWriter overrides how the config file is written.
func WithConfigWriter(save func(string, *model.AppConfig) error) Option {
	return func(m *Model) { m.saveFile = save }
}

// New creates the settings view for cfg, saving to path.
func New(
	cfg *model.AppConfig,
	path string,
	k *keys.KeyMap,
	logger *zap.Logger,
	width, height int,
	opts ...Option,
) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		cfg:       cfg,
		path:      path,
		keys:      k,
		logger:    logger,
		saveToken: credential.SetToken,
		saveFile:  model.SaveConfig,
		fields:    &fields{},
		spinner:   sp,
		width:     width,
		height:    height,
	}
	m.validate = m.pingStatus
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// pingStatus is the default connection test: GET /api/status.
func (m Model) pingStatus(ctx context.Context, cfg *model.AppConfig, token string) (int, error) {
	status, err := api.FromConfig(cfg.API, token, m.logger).Status(ctx)
	if err != nil {
		return 0, err
	}
	return status.Current(), nil
}

// Init builds the form from the current configuration.
func (m *Model) Init() tea.Cmd {
	m.mode = ModeForm
	m.statusMsg = ""
	m.resultErr = nil
	m.loadFields()
	m.form = m.buildForm()
	return m.form.Init()
}

// SetConfig replaces the configuration the form edits and the token in use.
func (m *Model) SetConfig(cfg *model.AppConfig, token string) {
	m.cfg = cfg
	m.token = token
}

func (m *Model) loadFields() {
	*m.fields = fields{
		baseURL:   m.cfg.API.BaseURL,
		listDays:  strconv.Itoa(m.cfg.Dashboard.ListDays),
		view:      string(model.ParseDashboardView(m.cfg.Dashboard.DefaultView)),
		filter:    string(model.ParseFilter(m.cfg.Dashboard.DefaultFilter)),
		confetti:  m.cfg.Display.Confetti,
		reminder:  m.cfg.Reminder.Enabled,
		alertTime: m.cfg.Reminder.AlertTime,
	}
}

// backToForm reopens the form with the values the user last entered.
func (m Model) backToForm() (Model, tea.Cmd) {
	m.mode = ModeForm
	m.form = m.buildForm()
	return m, m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	viewOptions := make([]huh.Option[string], 0, len(model.Views))
	for _, v := range model.Views {
		viewOptions = append(viewOptions, huh.NewOption(v.Label(), string(v)))
	}
	filterOptions := make([]huh.Option[string], 0, len(model.Filters))
	for _, f := range model.Filters {
		filterOptions = append(filterOptions, huh.NewOption(f.Label(), string(f)))
	}

	f := m.fields
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Where the check-in server listens").
				Placeholder("http://localhost:5000").
				Value(&f.baseURL).
				Validate(model.ValidateBaseURL),
			huh.NewInput().
				Title("API token").
				Description("Optional bearer token, kept in the system keyring. Leave blank to keep the current one").
				EchoMode(huh.EchoModePassword).
				Value(&f.token),
			huh.NewConfirm().
				Title("Forget stored token").
				Description("Delete the keyring token when the field above is blank").
				Value(&f.clearToken),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("List days").
				Description(fmt.Sprintf("Days shown in the list view (%d-%d)", model.MinListDays, model.MaxListDays)).
				Value(&f.listDays).
				Validate(validateListDays),
			huh.NewSelect[string]().
				Title("Default dashboard view").
				Options(viewOptions...).
				Value(&f.view),
			huh.NewSelect[string]().
				Title("Default list filter").
				Options(filterOptions...).
				Value(&f.filter),
			huh.NewConfirm().
				Title("Celebrate check-ins").
				Description("Play the confetti burst after a successful check-in").
				Value(&f.confetti),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Daily reminder").
				Description("Warn when today has no check-in by the alert time").
				Value(&f.reminder),
			huh.NewInput().
				Title("Alert time").
				Description("Local time of day, HH:MM").
				Placeholder("10:00").
				Value(&f.alertTime).
				Validate(validateAlertTime),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.form != nil {
			m.form = m.form.WithWidth(m.formWidth())
		}
		return m, nil

	case resultMsg:
		return m.handleResult(msg)

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeValidating:
			// Only allow escape during validation
			if key.Matches(msg, m.keys.Back) {
				return m.backToForm()
			}
			return m, nil

		case ModeResult:
			switch {
			case msg.String() == "r" && m.resultErr != nil:
				return m.submit()
			case key.Matches(msg, m.keys.Back), msg.String() == "enter":
				if m.resultErr != nil {
					return m.backToForm()
				}
				return m, done
			}
			return m, nil

		case ModeForm:
			if key.Matches(msg, m.keys.Back) {
				return m, done
			}
		}
	}

	return m.updateForm(msg)
}

func done() tea.Msg { return DoneMsg{} }

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.mode != ModeForm {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submit()
	case huh.StateAborted:
		return m, done
	}

	return m, cmd
}

// Apply returns a copy of cfg with the form values applied.
func (m Model) Apply(cfg *model.AppConfig) (*model.AppConfig, error) {
	f := m.fields
	out := *cfg
	out.API.BaseURL = strings.TrimRight(strings.TrimSpace(f.baseURL), "/")

	days, err := strconv.Atoi(strings.TrimSpace(f.listDays))
	if err != nil {
		return nil, fmt.Errorf("dashboard.list_days: %w", err)
	}
	out.Dashboard.ListDays = days
	out.Dashboard.DefaultView = f.view
	out.Dashboard.DefaultFilter = f.filter
	out.Display.Confetti = f.confetti
	out.Reminder.Enabled = f.reminder
	out.Reminder.AlertTime = strings.TrimSpace(f.alertTime)

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// submit validates the edited configuration against the server and
// saves it if the server answers.
func (m Model) submit() (Model, tea.Cmd) {
	cfg, err := m.Apply(m.cfg)
	if err != nil {
		m.mode = ModeResult
		m.resultErr = err
		return m, nil
	}

	token := strings.TrimSpace(m.fields.token)
	forget := token == "" && m.fields.clearToken
	ping := m.token
	switch {
	case token != "":
		ping = token
	case forget:
		ping = ""
	}

	m.mode = ModeValidating
	m.resultErr = nil
	return m, tea.Batch(m.spinner.Tick, m.validateAndSave(cfg, ping, token, forget))
}

// validateAndSave tests the connection with ping, then persists the
// configuration and applies the token change if the server answers.
func (m Model) validateAndSave(cfg *model.AppConfig, ping, token string, forget bool) tea.Cmd {
	validate, saveToken, saveFile, path := m.validate, m.saveToken, m.saveFile, m.path
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
		defer cancel()

		streak, err := validate(ctx, cfg, ping)
		if err != nil {
			return resultMsg{err: fmt.Errorf("connection failed: %w", err)}
		}

		if err := saveFile(path, cfg); err != nil {
			return resultMsg{err: fmt.Errorf("connection OK but save failed: %w", err)}
		}
		if token != "" || forget {
			// An empty token deletes the stored one.
			if err := saveToken(token); err != nil {
				return resultMsg{err: fmt.Errorf("saving API token: %w", err)}
			}
		}

		return resultMsg{cfg: cfg, token: token, clearToken: forget, streak: streak}
	}
}

func (m Model) handleResult(msg resultMsg) (Model, tea.Cmd) {
	if m.mode != ModeValidating {
		// Cancelled while in flight.
		return m, nil
	}

	m.mode = ModeResult
	m.resultErr = msg.err
	if msg.err != nil {
		m.logger.Warn("settings not saved", zap.Error(msg.err))
		return m, nil
	}

	m.cfg = msg.cfg
	m.streak = msg.streak
	m.statusMsg = fmt.Sprintf("Saved to %s", m.path)
	m.logger.Info("settings saved", zap.String("path", m.path), zap.String("base_url", msg.cfg.API.BaseURL))

	if msg.token != "" || msg.clearToken {
		m.token = msg.token
	}
	saved := SavedMsg{Config: msg.cfg, Token: msg.token, ClearToken: msg.clearToken}
	return m, func() tea.Msg { return saved }
}

// Mode returns the current mode.
func (m Model) Mode() Mode { return m.mode }

// Err returns the last validation or save error.
func (m Model) Err() error { return m.resultErr }

// --- View ---

// View renders the settings UI based on the current mode.
func (m Model) View() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	title := titleStyle.Render("Settings")
	hintStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	switch m.mode {
	case ModeValidating:
		return style.Render(title + "\n" + fmt.Sprintf(
			"%s Testing connection...\n\nPress esc to cancel.",
			m.spinner.View(),
		))

	case ModeResult:
		if m.resultErr != nil {
			errStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed)
			return style.Render(title + "\n" +
				errStyle.Render("Settings not saved") + "\n\n" +
				m.resultErr.Error() + "\n\n" +
				hintStyle.Render("r retry | enter/esc back to form"))
		}
		okStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen)
		return style.Render(title + "\n" +
			okStyle.Render("Connection successful") + "\n\n" +
			fmt.Sprintf("Current streak: %d", m.streak) + "\n" +
			m.statusMsg + "\n\n" +
			hintStyle.Render("enter/esc back"))

	default:
		if m.form == nil {
			return ""
		}
		return style.Render(title + "\n" + m.form.View())
	}
}

// --- Helpers ---

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// --- Validators ---

func validateListDays(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	return model.ValidateListDays(n)
}

func validateAlertTime(s string) error {
	_, err := model.ParseAlertTime(s)
	return err
}
