package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(DateLayout, s, time.Local)
	require.NoError(t, err)
	return d.Add(15 * time.Hour)
}

func dates(days []DisplayDay) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Date
	}
	return out
}

func TestCalendarDaysOldestFirstWithoutGaps(t *testing.T) {
	today := day(t, "2024-03-02")
	days := CalendarDays(today, NewDateSet())

	require.Len(t, days, CalendarSize)
	assert.Equal(t, []string{
		"2024-02-25", "2024-02-26", "2024-02-27", "2024-02-28",
		"2024-02-29", "2024-03-01", "2024-03-02",
	}, dates(days))
}

func TestCalendarDaysMembership(t *testing.T) {
	set := NewDateSet("2024-01-01", "2024-01-03")
	days := CalendarDays(day(t, "2024-01-03"), set)

	byDate := make(map[string]bool, len(days))
	for _, d := range days {
		byDate[d.Date] = d.Checked
	}

	assert.True(t, byDate["2024-01-03"])
	assert.False(t, byDate["2024-01-02"])
	assert.True(t, byDate["2024-01-01"])
	assert.False(t, byDate["2023-12-31"])
	assert.Equal(t, "2024-01-03", days[len(days)-1].Date)
}

func TestWindowNewestFirst(t *testing.T) {
	days := Window(day(t, "2024-01-03"), 3, nil)
	assert.Equal(t, []string{"2024-01-03", "2024-01-02", "2024-01-01"}, dates(days))
	assert.Empty(t, Window(day(t, "2024-01-03"), 0, nil))
}

func TestWindowAcrossDSTHasNoDuplicates(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	today := time.Date(2024, 3, 12, 0, 30, 0, 0, loc)
	days := Window(today, 5, nil)

	seen := map[string]bool{}
	for _, d := range days {
		assert.False(t, seen[d.Date], "duplicate %s", d.Date)
		seen[d.Date] = true
	}
	assert.Equal(t, "2024-03-08", days[4].Date)
}

func TestListDaysFilterCounts(t *testing.T) {
	today := day(t, "2024-01-14")
	set := NewDateSet("2024-01-14", "2024-01-12", "2024-01-10", "2023-12-01")

	all := ListDays(today, 14, FilterAll, set)
	checked := ListDays(today, 14, FilterChecked, set)
	missed := ListDays(today, 14, FilterMissed, set)

	assert.Len(t, all, 14)
	assert.Len(t, checked, 3)
	assert.Len(t, missed, 11)
	for _, d := range checked {
		assert.True(t, d.Checked)
	}
	for _, d := range missed {
		assert.False(t, d.Checked)
	}
}

func TestDateSetUnmarshal(t *testing.T) {
	var set DateSet
	payload := `["2024-01-01", {"date": "2024-01-02", "timestamp": 1704153600000},
		"not-a-date", 42, {"timestamp": 1}, "2024-01-03T08:00:00"]`
	require.NoError(t, json.Unmarshal([]byte(payload), &set))

	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Has("2024-01-01"))
	assert.True(t, set.Has("2024-01-02"))
	assert.True(t, set.Has("2024-01-03"))
	assert.False(t, set.Has("not-a-date"))
}

func TestDateSetUnmarshalRejectsNonArray(t *testing.T) {
	var set DateSet
	assert.Error(t, json.Unmarshal([]byte(`{"status":"error"}`), &set))
}

func TestDisplayDayLabels(t *testing.T) {
	d := DisplayDay{Date: "2024-01-02", Time: day(t, "2024-01-02"), Checked: true}

	assert.Equal(t, "Tue", d.WeekdayShort())
	assert.Equal(t, 2, d.DayOfMonth())
	assert.Equal(t, "1/2/2024", d.ShortLabel())
	assert.Equal(t, "Tuesday, January 2", d.LongLabel())
	assert.Equal(t, "Checked", d.StatusLabel())

	d.Checked = false
	assert.Equal(t, "Missed", d.StatusLabel())
}

func TestFilterHelpers(t *testing.T) {
	assert.Equal(t, FilterChecked, ParseFilter(" Checked "))
	assert.Equal(t, FilterMissed, ParseFilter("missed"))
	assert.Equal(t, FilterAll, ParseFilter("bogus"))

	assert.Equal(t, FilterChecked, FilterAll.Next())
	assert.Equal(t, FilterMissed, FilterChecked.Next())
	assert.Equal(t, FilterAll, FilterMissed.Next())

	assert.True(t, FilterAll.Matches(false))
	assert.False(t, FilterChecked.Matches(false))
	assert.True(t, FilterMissed.Matches(false))
}

func TestDashboardViewToggle(t *testing.T) {
	assert.Equal(t, ViewList, ViewCalendar.Toggle())
	assert.Equal(t, ViewCalendar, ViewList.Toggle())
	assert.Equal(t, ViewList, ParseDashboardView("LIST"))
	assert.Equal(t, ViewCalendar, ParseDashboardView(""))
}
