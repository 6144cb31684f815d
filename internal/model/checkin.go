package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Outcome is the status tag returned by the check-in endpoint.
type Outcome string

// Known check-in outcomes. Anything else is treated as a failure.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeInfo    Outcome = "info"
	OutcomeError   Outcome = "error"
)

// Timestamp is a point in time as sent by the check-in API. The server
// may encode it as an ISO-8601 string or as epoch milliseconds.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts RFC 3339 / ISO-8601 strings and integer epoch
// milliseconds.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding timestamp string: %w", err)
		}
		parsed, err := parseISOTime(s)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}

	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("decoding timestamp %s: %w", data, err)
	}
	t.Time = time.UnixMilli(int64(ms))
	return nil
}

// MarshalJSON encodes the timestamp as RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// isoLayouts are tried in order when parsing timestamp strings.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

func parseISOTime(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if layout == time.RFC3339Nano {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
			continue
		}
		// Zone-less forms are local wall-clock times.
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// CheckInStatus is the server's view of the user's streak.
type CheckInStatus struct {
	// CurrentStreak is the number of consecutive days ending today
	// (or yesterday, per server rules) with a check-in.
	CurrentStreak int `json:"currentStreak"`

	// BestStreak is the longest streak ever recorded. Optional.
	BestStreak *int `json:"bestStreak,omitempty"`

	// LastCheckInTime is when the most recent check-in was recorded.
	LastCheckInTime *Timestamp `json:"lastCheckInTime,omitempty"`
}

// ShowsStreak reports whether the streak card should be visible.
func (s *CheckInStatus) ShowsStreak() bool {
	if s == nil {
		return false
	}
	return s.CurrentStreak > 0 &&
		s.LastCheckInTime != nil &&
		!s.LastCheckInTime.IsZero()
}

// Best returns the best streak, or 0 when the server omitted it.
func (s *CheckInStatus) Best() int {
	if s == nil || s.BestStreak == nil {
		return 0
	}
	return *s.BestStreak
}

// Current returns the current streak, or 0 for a nil status.
func (s *CheckInStatus) Current() int {
	if s == nil {
		return 0
	}
	return s.CurrentStreak
}

// CheckedInOn reports whether the last check-in falls on the same local
// calendar day as t.
func (s *CheckInStatus) CheckedInOn(t time.Time) bool {
	if s == nil || s.LastCheckInTime == nil || s.LastCheckInTime.IsZero() {
		return false
	}
	return FormatDate(s.LastCheckInTime.In(t.Location())) == FormatDate(t)
}

// CheckInResult is the response of a check-in attempt.
type CheckInResult struct {
	Status        Outcome `json:"status"`
	Message       string  `json:"message,omitempty"`
	CurrentStreak *int    `json:"currentStreak,omitempty"`
	BestStreak    *int    `json:"bestStreak,omitempty"`
}

// IsSuccess reports whether this was the first check-in of the day.
func (r CheckInResult) IsSuccess() bool { return r.Status == OutcomeSuccess }

// IsInfo reports whether the user had already checked in today.
func (r CheckInResult) IsInfo() bool { return r.Status == OutcomeInfo }

// IsFailure reports whether the outcome is neither success nor info.
func (r CheckInResult) IsFailure() bool {
	return !r.IsSuccess() && !r.IsInfo()
}
