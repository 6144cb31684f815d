package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/daily-checkin/internal/model"
	"github.com/nhle/daily-checkin/internal/ui/command"
)

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(line string) tea.Cmd {
	name, arg := command.Parse(line)

	switch name {
	case "checkin", "check-in":
		m.currentView = ViewCheckIn
		return nil

	case "dashboard", "dash":
		m.currentView = ViewDashboard
		return nil

	case "refresh", "reload":
		return tea.Batch(m.checkIn.LoadStatus(), m.dashboard.Load())

	case "filter":
		f := model.ParseFilter(arg)
		m.dashboard.SetFilter(f)
		m.dashboard.SetView(model.ViewList)
		m.currentView = ViewDashboard
		return nil

	case "view":
		m.dashboard.SetView(model.ParseDashboardView(arg))
		m.currentView = ViewDashboard
		return nil

	case "settings", "config":
		return m.openSettings()

	case "help":
		m.open(ViewHelp)
		return nil

	case "quit", "q":
		return m.quit()

	default:
		m.logger.Debug("unknown command", zap.String("command", line))
		m.flash = "Unknown command: " + line
		return nil
	}
}
