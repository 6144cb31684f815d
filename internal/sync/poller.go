package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/daily-checkin/internal/api"
	"github.com/nhle/daily-checkin/internal/model"
)

// RefreshMsg is a tea.Msg sent on every refresh tick. Receivers reload
// their data from the API.
type RefreshMsg struct {
	At time.Time
}

// MissedCheckInMsg is a tea.Msg sent when the daily reminder finds no
// check-in for today.
type MissedCheckInMsg struct {
	At     time.Time
	Status *model.CheckInStatus
}

// AuthErrorMsg is sent when the server rejects the token during a
// reminder check.
type AuthErrorMsg struct {
	Err error
}

// StatusFetcher is the part of the API the reminder needs.
type StatusFetcher interface {
	Status(ctx context.Context) (*model.CheckInStatus, error)
}

// Config controls the poller's schedules. A zero RefreshInterval disables
// periodic refresh.
type Config struct {
	RefreshInterval time.Duration
	ReminderEnabled bool

	// AlertAt is the reminder's offset from local midnight.
	AlertAt time.Duration
}

// ConfigFrom derives the poller schedule from the application config.
func ConfigFrom(cfg *model.AppConfig) (Config, error) {
	c := Config{
		RefreshInterval: cfg.Display.RefreshInterval(),
		ReminderEnabled: cfg.Reminder.Enabled,
	}
	if !c.ReminderEnabled {
		return c, nil
	}

	at, err := model.ParseAlertTime(cfg.Reminder.AlertTime)
	if err != nil {
		return c, err
	}
	c.AlertAt = at
	return c, nil
}

// fetchTimeout is the maximum time allowed for a reminder status fetch.
const fetchTimeout = 30 * time.Second

// Poller emits periodic refresh ticks and a daily missed check-in
// reminder. Results are delivered through a channel drained by a tea.Cmd.
type Poller struct {
	fetcher  StatusFetcher
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
	resultCh chan tea.Msg
	stopCh   chan struct{}
	ctx      context.Context // cancelled by Stop; parents reminder fetches
	cancel   context.CancelFunc
	wg       gosync.WaitGroup
	mu       gosync.Mutex
	running  bool
	stopped  bool
}

// New creates a new Poller.
func New(fetcher StatusFetcher, cfg Config, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		fetcher:  fetcher,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		resultCh: make(chan tea.Msg, 16),
		stopCh:   make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetClock overrides the time source used for reminder scheduling.
func (p *Poller) SetClock(now func() time.Time) {
	p.now = now
}

// Start returns a tea.Cmd that starts the polling goroutines and waits for
// their first result. It returns nil when there is nothing to schedule or
// the poller already runs.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running || p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	started := false
	if p.cfg.RefreshInterval > 0 {
		p.wg.Add(1)
		go p.refreshLoop()
		started = true
	}
	if p.cfg.ReminderEnabled && p.fetcher != nil {
		p.wg.Add(1)
		go p.reminderLoop()
		started = true
	}
	if !started {
		return nil
	}

	p.logger.Info("poller started",
		zap.Duration("refresh_interval", p.cfg.RefreshInterval),
		zap.Bool("reminder", p.cfg.ReminderEnabled),
	)
	return p.waitForResult()
}

// Stop halts all polling goroutines, cancelling any reminder fetch in
// flight, and waits for them to exit. It is safe to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.running = false
	close(p.stopCh)
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Poller) refreshLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case t := <-ticker.C:
			p.sendResult(RefreshMsg{At: t})
		}
	}
}

func (p *Poller) reminderLoop() {
	defer p.wg.Done()

	for {
		now := p.now()
		next := nextAlert(now, p.cfg.AlertAt)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-p.stopCh:
			timer.Stop()
			return
		case <-timer.C:
			p.checkReminder()
		}
	}
}

// nextAlert returns the next occurrence of the alert time strictly after
// now, in now's location.
func nextAlert(now time.Time, at time.Duration) time.Time {
	hour, minute := int(at/time.Hour), int(at%time.Hour/time.Minute)
	y, m, d := now.Date()
	alert := time.Date(y, m, d, hour, minute, 0, 0, now.Location())
	if !alert.After(now) {
		alert = time.Date(y, m, d+1, hour, minute, 0, 0, now.Location())
	}
	return alert
}

// checkReminder fetches the status and reports a missed check-in.
func (p *Poller) checkReminder() {
	ctx, cancel := context.WithTimeout(p.ctx, fetchTimeout)
	defer cancel()

	now := p.now()
	status, err := p.fetcher.Status(ctx)
	if err != nil {
		p.logger.Warn("reminder status check failed", zap.Error(err))
		if api.IsAuthError(err) {
			p.sendResult(AuthErrorMsg{Err: err})
		}
		return
	}
	if status.CheckedInOn(now) {
		return
	}

	p.logger.Info("missed check-in detected", zap.Int("current_streak", status.Current()))
	p.sendResult(MissedCheckInMsg{At: now, Status: status})
}

// sendResult sends a message on the result channel without blocking.
func (p *Poller) sendResult(msg tea.Msg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next poller message.
// It returns nil once the poller is stopped.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-p.resultCh:
			return msg
		case <-p.stopCh:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next poller
// message. Call it after handling any poller message to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
