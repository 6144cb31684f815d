package detail

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/daily-checkin/internal/keys"
	"github.com/nhle/daily-checkin/internal/model"
)

func day(checked bool) model.DisplayDay {
	return model.DisplayDay{
		Date:    "2024-01-02",
		Time:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local),
		Checked: checked,
	}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestOpenShowsDay(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	assert.False(t, m.IsOpen())
	assert.Empty(t, m.View())

	m.Open(day(true))
	require.True(t, m.IsOpen())
	view := m.View()
	assert.Contains(t, view, "Tuesday, January 2")
	assert.Contains(t, view, "Checked")

	m.Open(day(false))
	assert.Contains(t, m.View(), "Missed")
	assert.False(t, m.Day().Checked)
}

func TestCloseKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyRunes, Runes: []rune("x")},
	} {
		m := New(keys.DefaultKeyMap(), 80, 24)
		m.Open(day(true))

		cmd := m.Update(msg)
		require.NotNil(t, cmd)
		assert.IsType(t, ClosedMsg{}, cmd())
		assert.False(t, m.IsOpen())
	}
}

func TestClickOutsideCloses(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m.Open(day(false))

	x, y, w, h := m.bounds()
	assert.True(t, m.Contains(x, y))
	assert.True(t, m.Contains(x+w-1, y+h-1))
	assert.False(t, m.Contains(x+w, y))

	assert.Nil(t, m.Update(click(x+1, y+1)))
	assert.True(t, m.IsOpen())

	cmd := m.Update(click(0, 0))
	require.NotNil(t, cmd)
	assert.False(t, m.IsOpen())
}

func TestUpdateWhileClosedIsNoop(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	assert.Nil(t, m.Update(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.Nil(t, m.Update(click(0, 0)))
}
