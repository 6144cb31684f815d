package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nhle/daily-checkin/internal/model"
)

// CheckinServer is an in-memory check-in backend serving /api/status,
// /api/checkins and /api/checkin.
type CheckinServer struct {
	*httptest.Server

	mu    sync.Mutex
	now   func() time.Time
	days  []string
	last  time.Time
	best  int
	posts int
}

// NewCheckinServer starts a CheckinServer seeded with the given dates. It
// automatically closes the server when the test completes.
func NewCheckinServer(t *testing.T, now func() time.Time, dates ...string) *CheckinServer {
	t.Helper()

	s := &CheckinServer{now: now, days: append([]string(nil), dates...)}
	s.best = s.streakLocked()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/checkins", s.handleCheckins)
	mux.HandleFunc("POST /api/checkin", s.handleCheckIn)
	s.Server = httptest.NewServer(mux)

	t.Cleanup(s.Close)

	return s
}

// Posts returns how many check-in requests the server has received.
func (s *CheckinServer) Posts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts
}

func (s *CheckinServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	best := s.best
	status := model.CheckInStatus{CurrentStreak: s.streakLocked(), BestStreak: &best}
	if !s.last.IsZero() {
		status.LastCheckInTime = &model.Timestamp{Time: s.last}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, status)
}

func (s *CheckinServer) handleCheckins(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	days := append([]string{}, s.days...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, days)
}

func (s *CheckinServer) handleCheckIn(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts++
	now := s.now()
	today := model.FormatDate(now)
	if s.hasLocked(today) {
		writeJSON(w, http.StatusOK, model.CheckInResult{
			Status:  model.OutcomeInfo,
			Message: "Already checked in today",
		})
		return
	}

	s.days = append(s.days, today)
	s.last = now
	current := s.streakLocked()
	s.best = max(s.best, current)
	best := s.best
	writeJSON(w, http.StatusOK, model.CheckInResult{
		Status:        model.OutcomeSuccess,
		CurrentStreak: &current,
		BestStreak:    &best,
	})
}

func (s *CheckinServer) hasLocked(date string) bool {
	for _, d := range s.days {
		if d == date {
			return true
		}
	}
	return false
}

// streakLocked counts consecutive checked-in days ending today, or ending
// yesterday when today is still open.
func (s *CheckinServer) streakLocked() int {
	day := s.now()
	if !s.hasLocked(model.FormatDate(day)) {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for s.hasLocked(model.FormatDate(day)) {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
