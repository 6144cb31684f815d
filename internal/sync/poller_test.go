package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nhle/daily-checkin/internal/api"
	"github.com/nhle/daily-checkin/internal/model"
)

type fakeFetcher struct {
	status *model.CheckInStatus
	err    error
}

func (f *fakeFetcher) Status(context.Context) (*model.CheckInStatus, error) {
	return f.status, f.err
}

func TestNextAlert(t *testing.T) {
	at := 10*time.Hour + 30*time.Minute

	before := time.Date(2024, 1, 3, 9, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, 1, 3, 10, 30, 0, 0, time.Local), nextAlert(before, at))

	after := time.Date(2024, 1, 3, 11, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, 1, 4, 10, 30, 0, 0, time.Local), nextAlert(after, at))

	exact := time.Date(2024, 1, 3, 10, 30, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, 1, 4, 10, 30, 0, 0, time.Local), nextAlert(exact, at))

	endOfMonth := time.Date(2024, 1, 31, 23, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, 2, 1, 10, 30, 0, 0, time.Local), nextAlert(endOfMonth, at))
}

func TestConfigFrom(t *testing.T) {
	cfg := model.DefaultConfig()
	c, err := ConfigFrom(cfg)
	require.NoError(t, err)
	assert.Equal(t, 300*time.Second, c.RefreshInterval)
	assert.True(t, c.ReminderEnabled)
	assert.Equal(t, 10*time.Hour, c.AlertAt)

	cfg.Reminder.AlertTime = "noon"
	_, err = ConfigFrom(cfg)
	assert.Error(t, err)

	cfg.Reminder.Enabled = false
	_, err = ConfigFrom(cfg)
	assert.NoError(t, err)
}

func TestRefreshTicks(t *testing.T) {
	p := New(nil, Config{RefreshInterval: 10 * time.Millisecond}, nil)
	defer p.Stop()

	cmd := p.Start()
	require.NotNil(t, cmd)
	assert.Nil(t, p.Start(), "second start is a no-op")

	_, ok := cmd().(RefreshMsg)
	assert.True(t, ok)
	_, ok = p.WaitForNextResult()().(RefreshMsg)
	assert.True(t, ok)
}

func TestStartWithNothingScheduled(t *testing.T) {
	p := New(nil, Config{}, nil)
	assert.Nil(t, p.Start())
	p.Stop()
}

func TestStopIsIdempotentAndUnblocksWaiters(t *testing.T) {
	p := New(&fakeFetcher{}, Config{RefreshInterval: time.Hour, ReminderEnabled: true}, nil)
	cmd := p.Start()
	require.NotNil(t, cmd)

	done := make(chan any, 1)
	go func() { done <- cmd() }()

	p.Stop()
	p.Stop()

	select {
	case msg := <-done:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("waiter not released by Stop")
	}
	assert.Nil(t, p.Start(), "a stopped poller does not restart")
}

func TestCheckReminder(t *testing.T) {
	now := time.Date(2024, 1, 3, 10, 0, 0, 0, time.Local)
	yesterday := &model.Timestamp{Time: now.AddDate(0, 0, -1)}
	today := &model.Timestamp{Time: now.Add(-time.Hour)}

	tests := []struct {
		name    string
		fetcher *fakeFetcher
		missed  bool
	}{
		{"checked in today", &fakeFetcher{status: &model.CheckInStatus{CurrentStreak: 2, LastCheckInTime: today}}, false},
		{"last check-in yesterday", &fakeFetcher{status: &model.CheckInStatus{CurrentStreak: 2, LastCheckInTime: yesterday}}, true},
		{"never checked in", &fakeFetcher{status: &model.CheckInStatus{}}, true},
		{"fetch fails", &fakeFetcher{err: errors.New("down")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			p := New(tt.fetcher, Config{ReminderEnabled: true}, zap.New(core))
			p.SetClock(func() time.Time { return now })

			p.checkReminder()

			select {
			case msg := <-p.resultCh:
				require.True(t, tt.missed, "unexpected message %T", msg)
				missed, ok := msg.(MissedCheckInMsg)
				require.True(t, ok)
				assert.Equal(t, now, missed.At)
				assert.Equal(t, 1, logs.FilterMessage("missed check-in detected").Len())
			default:
				assert.False(t, tt.missed, "expected a missed check-in message")
			}
		})
	}
}

func TestCheckReminderReportsRejectedToken(t *testing.T) {
	err := fmt.Errorf("fetching status: %w", &api.AuthError{BaseURL: "http://localhost:5000", Message: "expired"})
	p := New(&fakeFetcher{err: err}, Config{ReminderEnabled: true}, nil)

	p.checkReminder()

	select {
	case msg := <-p.resultCh:
		authMsg, ok := msg.(AuthErrorMsg)
		require.True(t, ok, "unexpected message %T", msg)
		assert.True(t, api.IsAuthError(authMsg.Err))
	default:
		t.Fatal("expected an auth error message")
	}
}

// blockingFetcher blocks until its context is done.
type blockingFetcher struct {
	started chan struct{}
}

func (f *blockingFetcher) Status(ctx context.Context) (*model.CheckInStatus, error) {
	close(f.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestStopCancelsReminderFetch(t *testing.T) {
	fetcher := &blockingFetcher{started: make(chan struct{})}
	p := New(fetcher, Config{ReminderEnabled: true}, nil)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.checkReminder()
	}()
	<-fetcher.started

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop waited on the reminder fetch")
	}
}
