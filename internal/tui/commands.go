package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ofsd-io/ofsd/internal/config"
	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/monitor"
)

func loadCountsCmd(src Source) tea.Cmd {
	return func() tea.Msg {
		return CountsLoadedMsg{Snapshot: monitor.Collect(context.Background(), src)}
	}
}

func loadPerspectivesCmd(src Source) tea.Cmd {
	return func() tea.Msg {
		names, err := src.Perspectives(context.Background())
		return PerspectivesLoadedMsg{Names: names, Err: err}
	}
}

func pluginStatusCmd() tea.Cmd {
	return func() tea.Msg {
		running, info, err := config.IsPluginRunning()
		if err != nil || !running || info == nil {
			return PluginStatusMsg{}
		}
		return PluginStatusMsg{Running: true, PID: info.PID}
	}
}

func refreshTick(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(_ time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func reloadSettingsCmd() tea.Cmd {
	return func() tea.Msg {
		settings, err := config.LoadSettings()
		if err != nil {
			return settingsLoadedMsg{err: err}
		}
		return settingsLoadedMsg{settings: settings}
	}
}

type settingsLoadedMsg struct {
	settings *models.Settings
	err      error
}
