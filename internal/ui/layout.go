package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/daily-checkin/internal/theme"
)

// Layout splits the terminal into a header row, a content area and a
// bottom bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with one-row header and bottom bar.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the width of the content area.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the number of rows between the header and the
// bottom bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight, 0)
}

// ContentTop returns the first terminal row of the content area. Mouse
// coordinates are shifted by it before reaching a view.
func (l Layout) ContentTop() int {
	return l.HeaderHeight
}

// RenderHeader renders the title on the left and the refresh status on the
// right of a full-width bar.
func (l Layout) RenderHeader(title, status string) string {
	return l.bar(theme.HeaderStyle, title, status)
}

// RenderStatusBar renders key hints in the bottom bar.
func (l Layout) RenderStatusBar(hints string) string {
	return l.bar(theme.StatusBarStyle, hints, "")
}

// RenderAlertBar renders a reminder or notice in place of the key hints.
func (l Layout) RenderAlertBar(alert string) string {
	return l.bar(theme.AlertBarStyle, alert, "")
}

// bar renders left and right in style with the gap between them filled
// in the style's background.
func (l Layout) bar(style lipgloss.Style, left, right string) string {
	parts := []string{style.Render(left)}
	if right != "" {
		parts = append(parts, style.Align(lipgloss.Right).Render(right))
	}

	used := 0
	for _, p := range parts {
		used += lipgloss.Width(p)
	}
	filler := lipgloss.NewStyle().
		Width(max(l.Width-used, 0)).
		Background(style.GetBackground()).
		Render("")

	if len(parts) == 1 {
		return lipgloss.JoinHorizontal(lipgloss.Top, parts[0], filler)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts[0], filler, parts[1])
}

// RenderWithFrame stacks header, content and bar. Content is padded or cut
// to ContentHeight rows so the bar stays on the last terminal row.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	rows := strings.Split(content, "\n")
	h := l.ContentHeight()
	if len(rows) > h {
		rows = rows[:h]
	}
	for len(rows) < h {
		rows = append(rows, "")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		strings.Join(rows, "\n"),
		statusBar,
	)
}
