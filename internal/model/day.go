package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

// CalendarSize is the number of days shown in the calendar grid.
const CalendarSize = 7

// FormatDate returns the calendar date of t, in t's location, as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateSet is the set of dates on which a check-in was recorded.
type DateSet map[string]struct{}

// NewDateSet builds a DateSet from date strings, skipping invalid ones.
func NewDateSet(dates ...string) DateSet {
	set := make(DateSet, len(dates))
	for _, d := range dates {
		set.add(d)
	}
	return set
}

func (s DateSet) add(date string) bool {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	s[parsed.Format(DateLayout)] = struct{}{}
	return true
}

// Has reports whether a check-in was recorded on date.
func (s DateSet) Has(date string) bool {
	_, ok := s[date]
	return ok
}

// Len returns the number of distinct dates.
func (s DateSet) Len() int { return len(s) }

// legacyEntry is the object form older servers stored per check-in.
type legacyEntry struct {
	Date      string `json:"date"`
	Timestamp *int64 `json:"timestamp"`
}

// UnmarshalJSON decodes a JSON array whose elements are either date
// strings or {date, timestamp} objects. Entries that are not valid
// dates are dropped.
func (s *DateSet) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding check-in dates: %w", err)
	}

	set := make(DateSet, len(raw))
	for _, elem := range raw {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 {
			continue
		}
		switch elem[0] {
		case '"':
			var date string
			if json.Unmarshal(elem, &date) == nil {
				set.add(dateOnly(date))
			}
		case '{':
			var entry legacyEntry
			if json.Unmarshal(elem, &entry) == nil && entry.Date != "" {
				set.add(dateOnly(entry.Date))
			}
		}
	}

	*s = set
	return nil
}

// dateOnly trims a time component from an ISO date-time string.
func dateOnly(s string) string {
	if len(s) > len(DateLayout) && (s[len(DateLayout)] == 'T' || s[len(DateLayout)] == ' ') {
		return s[:len(DateLayout)]
	}
	return s
}

// DisplayDay is one rendered day of a window.
type DisplayDay struct {
	Date    string
	Time    time.Time
	Checked bool
}

// WeekdayShort returns the abbreviated weekday, e.g. "Mon".
func (d DisplayDay) WeekdayShort() string { return d.Time.Format("Mon") }

// DayOfMonth returns the day of the month without padding.
func (d DisplayDay) DayOfMonth() int { return d.Time.Day() }

// ShortLabel returns a numeric date, e.g. "1/2/2024".
func (d DisplayDay) ShortLabel() string { return d.Time.Format("1/2/2006") }

// LongLabel returns the long-form date used by the detail modal,
// e.g. "Tuesday, January 2".
func (d DisplayDay) LongLabel() string { return d.Time.Format("Monday, January 2") }

// StatusLabel returns "Checked" or "Missed".
func (d DisplayDay) StatusLabel() string {
	if d.Checked {
		return "Checked"
	}
	return "Missed"
}

// startOfDay truncates t to local midnight.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Window returns size days ending today, newest first.
func Window(today time.Time, size int, set DateSet) []DisplayDay {
	if size <= 0 {
		return nil
	}

	base := startOfDay(today)
	days := make([]DisplayDay, 0, size)
	for i := 0; i < size; i++ {
		// AddDate keeps the wall clock at midnight across DST changes.
		t := base.AddDate(0, 0, -i)
		date := FormatDate(t)
		days = append(days, DisplayDay{
			Date:    date,
			Time:    t,
			Checked: set.Has(date),
		})
	}
	return days
}

// CalendarDays returns the calendar grid days, oldest first, ending today.
func CalendarDays(today time.Time, set DateSet) []DisplayDay {
	days := Window(today, CalendarSize, set)
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
	return days
}

// ListDays returns size days ending today, newest first, keeping only
// those whose state matches filter.
func ListDays(today time.Time, size int, filter Filter, set DateSet) []DisplayDay {
	window := Window(today, size, set)
	if filter == FilterAll {
		return window
	}

	out := window[:0]
	for _, d := range window {
		if filter.Matches(d.Checked) {
			out = append(out, d)
		}
	}
	return out
}
