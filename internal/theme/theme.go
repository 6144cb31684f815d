package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorSky    = lipgloss.AdaptiveColor{Dark: "#38BDF8", Light: "#0EA5E9"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorPink   = lipgloss.AdaptiveColor{Dark: "#F783AC", Light: "#C2255C"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// ConfettiColors are cycled through by the success burst.
var ConfettiColors = []lipgloss.TerminalColor{
	ColorGreen, ColorYellow, ColorPink, ColorSky, ColorOrange,
}

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// AlertBarStyle replaces the status bar while a reminder is pending.
var AlertBarStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorRed).
	Padding(0, 1)

// PanelStyle wraps overlay content such as help and the command palette.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ModalStyle frames the day detail modal.
var ModalStyle = lipgloss.NewStyle().
	Padding(1, 3).
	Border(lipgloss.DoubleBorder()).
	BorderForeground(ColorBlue)

// CardStyle frames the streak card on the check-in screen.
var CardStyle = lipgloss.NewStyle().
	Padding(0, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorGreen)

// ButtonStyle is the idle check-in button.
var ButtonStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(1, 4)

// ButtonDisabledStyle is the button while a check-in is in flight.
var ButtonDisabledStyle = ButtonStyle.
	Foreground(ColorGray).
	Background(ColorSubtle)

// ButtonPulseStyle is the button during the success pulse.
var ButtonPulseStyle = ButtonStyle.
	Background(ColorGreen)

// ToggleStyle is an inactive toggle or filter control.
var ToggleStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Padding(0, 1)

// ToggleActiveStyle marks the active toggle or filter control.
var ToggleActiveStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// SelectedItemStyle highlights the currently focused list row.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// ListItemStyle is the base style for list rows.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// MessageKind selects the color of the check-in status line.
type MessageKind int

const (
	MessageNeutral MessageKind = iota
	MessageSuccess
	MessageInfo
	MessageError
)

// MessageStyle returns the status line style for kind.
func MessageStyle(kind MessageKind) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch kind {
	case MessageSuccess:
		return base.Foreground(ColorGreen)
	case MessageInfo:
		return base.Foreground(ColorSky)
	case MessageError:
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorWhite)
	}
}

// DayStyle returns the style for a day's checked/missed state.
func DayStyle(checked bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	if checked {
		return base.Foreground(ColorGreen)
	}
	return base.Foreground(ColorGray)
}

// CellStyle returns the bordered calendar cell style.
func CellStyle(checked, focused bool) lipgloss.Style {
	border := ColorBorder
	if checked {
		border = ColorGreen
	}
	if focused {
		border = ColorBlue
	}
	return lipgloss.NewStyle().
		Width(CellWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

// CellWidth is the inner width of a calendar cell.
const CellWidth = 7
