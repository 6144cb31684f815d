package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nhle/daily-checkin/internal/api"
	"github.com/nhle/daily-checkin/internal/keys"
	"github.com/nhle/daily-checkin/internal/model"
	"github.com/nhle/daily-checkin/internal/ui/detail"
)

type fakeAPI struct {
	mu          sync.Mutex
	checkins    model.DateSet
	status      *model.CheckInStatus
	checkinsErr error
	statusErr   error
	calls       int
}

func (f *fakeAPI) Status(context.Context) (*model.CheckInStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.status, f.statusErr
}

func (f *fakeAPI) Checkins(context.Context) (model.DateSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.checkins, f.checkinsErr
}

func today() time.Time {
	return time.Date(2024, 1, 3, 12, 0, 0, 0, time.Local)
}

func intPtr(n int) *int { return &n }

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

type setup struct {
	api    *fakeAPI
	modal  *detail.Model
	logger *zap.Logger
	cfg    model.DashboardConfig
}

func newModel(t *testing.T, s setup) Model {
	t.Helper()
	if s.api == nil {
		s.api = &fakeAPI{}
	}
	if s.cfg.ListDays == 0 {
		s.cfg.ListDays = model.DefaultListDays
	}
	m := New(s.api, keys.DefaultKeyMap(), s.logger, s.modal, s.cfg, 100, 30)
	m.SetClock(today)
	return m
}

// load runs the model's load command and applies its result.
func load(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.Load()()
	loaded, ok := msg.(LoadedMsg)
	require.True(t, ok)
	m, _ = m.Update(loaded)
	return m
}

func sampleAPI() *fakeAPI {
	return &fakeAPI{
		checkins: model.NewDateSet("2024-01-01", "2024-01-03"),
		status:   &model.CheckInStatus{CurrentStreak: 1, BestStreak: intPtr(5)},
	}
}

func TestLoadRendersSummaryAndCalendar(t *testing.T) {
	m := load(t, newModel(t, setup{api: sampleAPI()}))

	require.NoError(t, m.LoadErr())
	assert.False(t, m.Loading())
	assert.Equal(t, 2, m.State().Checkins.Len())

	view := m.View()
	assert.Contains(t, view, "Current streak: 1")
	assert.Contains(t, view, "Best streak: 5")

	days := m.calendarDays()
	require.Len(t, days, model.CalendarSize)
	assert.Equal(t, "2023-12-28", days[0].Date)
	assert.Equal(t, "2024-01-03", days[6].Date)

	var checked []string
	for _, d := range days {
		if d.Checked {
			checked = append(checked, d.Date)
		}
	}
	assert.Equal(t, []string{"2024-01-01", "2024-01-03"}, checked)

	cal := m.renderCalendarView()
	assert.Equal(t, 2, strings.Count(cal, "✓"))
	assert.Equal(t, 5, strings.Count(cal, "•"))
}

func TestSummaryDefaultsToZero(t *testing.T) {
	assert.Contains(t, renderStreakSummary(nil), "Current streak: 0")
	assert.Contains(t, renderStreakSummary(&model.CheckInStatus{CurrentStreak: 3}), "Best streak: 0")
}

func TestLoadFailureShowsErrorInBothContainers(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeAPI
	}{
		{"checkins fail", &fakeAPI{checkinsErr: errors.New("boom"), status: &model.CheckInStatus{}}},
		{"status fails", &fakeAPI{checkins: model.NewDateSet(), statusErr: errors.New("boom")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			m := load(t, newModel(t, setup{api: tt.api, logger: zap.New(core)}))

			require.Error(t, m.LoadErr())
			assert.Contains(t, m.renderCalendarView(), LoadErrorMessage)
			assert.Contains(t, m.renderListView(), LoadErrorMessage)
			assert.Equal(t, 1, logs.FilterMessage("failed to load dashboard").Len())
		})
	}
}

func TestFailedReloadKeepsCachedCheckins(t *testing.T) {
	fake := sampleAPI()
	m := load(t, newModel(t, setup{api: fake}))

	fake.statusErr = errors.New("down")
	m = load(t, m)

	assert.Error(t, m.LoadErr())
	assert.Equal(t, 2, m.State().Checkins.Len())
}

func TestFilterChangeRerendersListWithoutFetch(t *testing.T) {
	fake := sampleAPI()
	m := load(t, newModel(t, setup{api: fake, cfg: model.DashboardConfig{DefaultView: "list"}}))
	calls := fake.calls

	assert.Len(t, m.listRows(), 14)

	var cmd tea.Cmd
	m, cmd = m.Update(keyMsg("2"))
	assert.Nil(t, cmd)
	assert.Equal(t, model.FilterChecked, m.State().Filter)
	rows := m.listRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-03", rows[0].Date)
	assert.Equal(t, "2024-01-01", rows[1].Date)

	m, cmd = m.Update(keyMsg("3"))
	assert.Nil(t, cmd)
	assert.Len(t, m.listRows(), 12)
	assert.NotContains(t, m.renderListView(), "Checked")

	m, _ = m.Update(keyMsg("f"))
	assert.Equal(t, model.FilterAll, m.State().Filter)

	assert.Equal(t, calls, fake.calls)
}

func TestListDaysIsConfigurable(t *testing.T) {
	m := load(t, newModel(t, setup{api: sampleAPI(), cfg: model.DashboardConfig{ListDays: 30}}))
	assert.Len(t, m.listRows(), 30)

	m = load(t, newModel(t, setup{api: sampleAPI(), cfg: model.DashboardConfig{ListDays: 1000}}))
	assert.Len(t, m.listRows(), model.DefaultListDays)
}

func TestViewToggle(t *testing.T) {
	m := load(t, newModel(t, setup{api: sampleAPI()}))
	assert.Equal(t, model.ViewCalendar, m.State().View)

	m, _ = m.Update(keyMsg("tab"))
	assert.Equal(t, model.ViewList, m.State().View)
	assert.Contains(t, m.View(), "1/3/2024")

	m, _ = m.Update(keyMsg("c"))
	assert.Equal(t, model.ViewCalendar, m.State().View)

	m, _ = m.Update(keyMsg("L"))
	assert.Equal(t, model.ViewList, m.State().View)
}

func TestRefreshKeyReloads(t *testing.T) {
	fake := sampleAPI()
	m := load(t, newModel(t, setup{api: fake}))

	m, cmd := m.Update(keyMsg("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.Loading())
	_, ok := cmd().(LoadedMsg)
	assert.True(t, ok)
}

func TestCalendarSelectOpensModal(t *testing.T) {
	modal := detail.New(keys.DefaultKeyMap(), 100, 30)
	m := load(t, newModel(t, setup{api: sampleAPI(), modal: modal}))

	m, _ = m.Update(keyMsg("h"))
	m, _ = m.Update(keyMsg("enter"))
	require.True(t, m.ModalOpen())
	assert.Equal(t, "2024-01-02", modal.Day().Date)
	assert.Contains(t, m.View(), "Tuesday, January 2")
	assert.Contains(t, m.View(), "Missed")

	// Keys go to the modal while it is open.
	m, _ = m.Update(keyMsg("tab"))
	assert.Equal(t, model.ViewCalendar, m.State().View)

	m, _ = m.Update(keyMsg("esc"))
	assert.False(t, m.ModalOpen())
}

func TestClickCalendarCell(t *testing.T) {
	modal := detail.New(keys.DefaultKeyMap(), 100, 30)
	m := load(t, newModel(t, setup{api: sampleAPI(), modal: modal}))

	// The gap between two cells is not a hit.
	m, _ = m.Update(click(cellStride-1, containerRow+2))
	assert.False(t, m.ModalOpen())

	m, _ = m.Update(click(cellStride*4+3, containerRow+2))
	require.True(t, m.ModalOpen())
	assert.Equal(t, "2024-01-01", modal.Day().Date)
	assert.True(t, modal.Day().Checked)

	// A click outside the modal frame closes it.
	m, _ = m.Update(click(0, 0))
	assert.False(t, m.ModalOpen())
}

func TestClickListRow(t *testing.T) {
	modal := detail.New(keys.DefaultKeyMap(), 100, 30)
	m := load(t, newModel(t, setup{api: sampleAPI(), modal: modal, cfg: model.DashboardConfig{DefaultView: "list"}}))

	m, _ = m.Update(click(4, containerRow+2))
	require.True(t, m.ModalOpen())
	assert.Equal(t, "2024-01-01", modal.Day().Date)
}

func TestClickToggleAndFilterBars(t *testing.T) {
	m := load(t, newModel(t, setup{api: sampleAPI()}))

	listX := len(" Calendar ") + 2
	m, _ = m.Update(click(listX, toggleRow))
	assert.Equal(t, model.ViewList, m.State().View)

	missedX := len(" All ") + 1 + len(" Checked ") + 1 + 2
	m, _ = m.Update(click(missedX, filterRow))
	assert.Equal(t, model.FilterMissed, m.State().Filter)
}

func TestSelectWithoutModalDoesNothing(t *testing.T) {
	m := load(t, newModel(t, setup{api: sampleAPI()}))

	assert.NotPanics(t, func() {
		m, _ = m.Update(keyMsg("enter"))
		m, _ = m.Update(click(1, containerRow+1))
	})
	assert.False(t, m.ModalOpen())
}

func TestListCursorScrolls(t *testing.T) {
	m := newModel(t, setup{api: sampleAPI(), cfg: model.DashboardConfig{ListDays: 60, DefaultView: "list"}})
	m.SetSize(100, containerRow+10)
	m = load(t, m)

	for range 15 {
		m, _ = m.Update(keyMsg("j"))
	}
	assert.Equal(t, 15, m.listCursor)
	assert.Equal(t, 6, m.listOffset)
	assert.Equal(t, 10, strings.Count(m.renderListView(), "\n")+1)

	m, _ = m.Update(keyMsg("3"))
	assert.LessOrEqual(t, m.listCursor, len(m.listRows())-1)
}

func TestOlderLoadDoesNotOverwriteNewer(t *testing.T) {
	fake := sampleAPI()
	m := newModel(t, setup{api: fake})

	older := m.Load()
	newer := m.Load()

	fake.checkins = model.NewDateSet("2024-01-01", "2024-01-02", "2024-01-03")
	newMsg := newer()
	fake.checkins = model.NewDateSet()
	oldMsg := older()

	m, _ = m.Update(newMsg)
	m, _ = m.Update(oldMsg)
	assert.True(t, m.State().Checkins.Has("2024-01-02"))
	assert.Equal(t, 3, m.State().Checkins.Len())
	assert.False(t, m.Loading())
}

func TestRebuiltDashboardIgnoresEarlierLoads(t *testing.T) {
	previous := newModel(t, setup{api: sampleAPI()})
	cmd := previous.Load()

	m := newModel(t, setup{api: sampleAPI()})
	m, _ = m.Update(cmd())
	assert.False(t, m.loaded)
	assert.Contains(t, m.View(), "Loading...")

	m = load(t, m)
	assert.True(t, m.loaded)
}

func TestRejectedTokenShowsHint(t *testing.T) {
	fake := sampleAPI()
	fake.statusErr = &api.AuthError{BaseURL: "http://localhost:5000", Message: "bad token"}
	m := load(t, newModel(t, setup{api: fake}))

	require.True(t, api.IsAuthError(m.LoadErr()))
	view := m.View()
	assert.Contains(t, view, LoadErrorMessage)
	assert.Contains(t, view, api.TokenRejectedMessage)

	fake.statusErr = errors.New("connection refused")
	m = load(t, m)
	assert.NotContains(t, m.View(), api.TokenRejectedMessage)
}
