package model

import "strings"

// Filter selects which days the list view shows.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterChecked Filter = "checked"
	FilterMissed  Filter = "missed"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterChecked, FilterMissed}

// ParseFilter maps a string to a Filter, falling back to FilterAll.
func ParseFilter(s string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterChecked:
		return FilterChecked
	case FilterMissed:
		return FilterMissed
	default:
		return FilterAll
	}
}

// Matches reports whether a day with the given checked state passes.
func (f Filter) Matches(checked bool) bool {
	switch f {
	case FilterChecked:
		return checked
	case FilterMissed:
		return !checked
	default:
		return true
	}
}

// Next returns the filter after f, wrapping around.
func (f Filter) Next() Filter {
	for i, candidate := range Filters {
		if candidate == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

// Label returns the title-case name shown on filter controls.
func (f Filter) Label() string {
	switch f {
	case FilterChecked:
		return "Checked"
	case FilterMissed:
		return "Missed"
	default:
		return "All"
	}
}

// DashboardView identifies which of the two dashboard views is visible.
type DashboardView string

const (
	ViewCalendar DashboardView = "calendar"
	ViewList     DashboardView = "list"
)

// Views lists both views in display order.
var Views = []DashboardView{ViewCalendar, ViewList}

// Label returns the title-case name shown on the toggle bar.
func (v DashboardView) Label() string {
	if v == ViewList {
		return "List"
	}
	return "Calendar"
}

// ParseDashboardView maps a string to a view, falling back to the calendar.
func ParseDashboardView(s string) DashboardView {
	if DashboardView(strings.ToLower(strings.TrimSpace(s))) == ViewList {
		return ViewList
	}
	return ViewCalendar
}

// Toggle returns the other view.
func (v DashboardView) Toggle() DashboardView {
	if v == ViewList {
		return ViewCalendar
	}
	return ViewList
}

// DashboardState is the dashboard's local UI state. Checkins is replaced
// only by a successful load; Filter and View change on user input.
type DashboardState struct {
	Checkins DateSet
	Filter   Filter
	View     DashboardView
}
