// Package effects holds cosmetic, time-bounded animations. Effects never
// influence the state of the views that host them.
package effects

import (
	"math/rand/v2"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/daily-checkin/internal/theme"
)

// Effect is an optional animation a view can trigger and render.
type Effect interface {
	// Start restarts the animation and returns the command driving it.
	Start() tea.Cmd

	// Update advances the animation on its own frame messages.
	Update(msg tea.Msg) tea.Cmd

	// Active reports whether the animation is still running.
	Active() bool

	// View renders the current frame, or a blank canvas when idle.
	View() string
}

// FrameMsg advances a running burst.
type FrameMsg struct {
	burst int
}

const (
	defaultPieces   = 14
	defaultDuration = 900 * time.Millisecond
	defaultInterval = 60 * time.Millisecond
	canvasWidth     = 27
	canvasHeight    = 6
)

var glyphs = []string{"*", "+", "•", "✦", "✧", "◆", "~"}

type piece struct {
	dx, dy float64
	life   float64 // fraction of the burst this piece stays visible
	glyph  string
	color  lipgloss.TerminalColor
}

// Confetti is a burst of pieces flying up and out from the bottom center
// of a small canvas.
type Confetti struct {
	rng      *rand.Rand
	now      func() time.Time
	count    int
	duration time.Duration
	interval time.Duration

	burst   int
	started time.Time
	pieces  []piece
	active  bool
}

// Option configures a Confetti burst.
type Option func(*Confetti)

// WithSeed makes the burst layout deterministic.
func WithSeed(seed uint64) Option {
	return func(c *Confetti) { c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Confetti) { c.now = now }
}

// WithDuration overrides how long a burst lasts.
func WithDuration(d time.Duration) Option {
	return func(c *Confetti) {
		if d > 0 {
			c.duration = d
		}
	}
}

// NewConfetti creates an idle burst.
func NewConfetti(opts ...Option) *Confetti {
	c := &Confetti{
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		now:      time.Now,
		count:    defaultPieces,
		duration: defaultDuration,
		interval: defaultInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start spawns a fresh set of pieces. Frames from an earlier burst are
// ignored once a new one starts.
func (c *Confetti) Start() tea.Cmd {
	c.burst++
	c.started = c.now()
	c.active = true
	c.pieces = make([]piece, c.count)
	for i := range c.pieces {
		c.pieces[i] = piece{
			dx:    c.rng.Float64()*2 - 1,
			dy:    c.rng.Float64()*0.75 + 0.25,
			life:  c.rng.Float64()*0.35 + 0.65,
			glyph: glyphs[c.rng.IntN(len(glyphs))],
			color: theme.ConfettiColors[i%len(theme.ConfettiColors)],
		}
	}
	return c.tick()
}

func (c *Confetti) tick() tea.Cmd {
	burst := c.burst
	return tea.Tick(c.interval, func(time.Time) tea.Msg {
		return FrameMsg{burst: burst}
	})
}

// Update advances the burst and stops it once its duration has elapsed.
func (c *Confetti) Update(msg tea.Msg) tea.Cmd {
	frame, ok := msg.(FrameMsg)
	if !ok || frame.burst != c.burst || !c.active {
		return nil
	}
	if c.elapsed() >= c.duration {
		c.active = false
		c.pieces = nil
		return nil
	}
	return c.tick()
}

// Active reports whether the burst is still running.
func (c *Confetti) Active() bool {
	return c.active
}

func (c *Confetti) elapsed() time.Duration {
	return c.now().Sub(c.started)
}

// View renders the current frame onto a fixed-size canvas.
func (c *Confetti) View() string {
	grid := make([][]string, canvasHeight)
	for y := range grid {
		grid[y] = make([]string, canvasWidth)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}

	if c.active {
		progress := float64(c.elapsed()) / float64(c.duration)
		cx := float64(canvasWidth-1) / 2
		bottom := float64(canvasHeight - 1)
		for _, p := range c.pieces {
			local := progress / p.life
			if local >= 1 {
				continue
			}
			eased := 1 - (1-local)*(1-local)
			x := int(cx + p.dx*cx*eased + 0.5)
			y := int(bottom - p.dy*bottom*eased + 0.5)
			if x < 0 || x >= canvasWidth || y < 0 || y >= canvasHeight {
				continue
			}
			grid[y][x] = lipgloss.NewStyle().Foreground(p.color).Render(p.glyph)
		}
	}

	lines := make([]string, canvasHeight)
	for y, row := range grid {
		lines[y] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}
