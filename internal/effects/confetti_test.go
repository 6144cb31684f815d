package effects

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestConfettiLifecycle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)}
	c := NewConfetti(WithSeed(7), WithClock(clock.now))

	assert.False(t, c.Active())
	require.NotNil(t, c.Start())
	assert.True(t, c.Active())
	assert.Len(t, c.pieces, defaultPieces)

	clock.t = clock.t.Add(300 * time.Millisecond)
	assert.NotNil(t, c.Update(FrameMsg{burst: c.burst}))
	assert.True(t, c.Active())

	clock.t = clock.t.Add(700 * time.Millisecond)
	assert.Nil(t, c.Update(FrameMsg{burst: c.burst}))
	assert.False(t, c.Active())
}

func TestConfettiIgnoresStaleFrames(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewConfetti(WithSeed(1), WithClock(clock.now))

	c.Start()
	stale := FrameMsg{burst: c.burst}
	c.Start()

	assert.Nil(t, c.Update(stale))
	assert.Nil(t, c.Update("unrelated"))
	assert.True(t, c.Active())
}

func TestConfettiViewHasFixedCanvas(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewConfetti(WithSeed(3), WithClock(clock.now))

	idle := c.View()
	assert.Equal(t, canvasHeight, len(strings.Split(idle, "\n")))
	assert.Empty(t, strings.TrimSpace(idle))

	c.Start()
	clock.t = clock.t.Add(200 * time.Millisecond)
	frame := c.View()
	assert.Equal(t, canvasHeight, len(strings.Split(frame, "\n")))
	assert.NotEmpty(t, strings.TrimSpace(frame))
}
