package tui

import "github.com/ofsd-io/ofsd/internal/monitor"

// CountsLoadedMsg carries one refresh of every badge source.
type CountsLoadedMsg struct {
	Snapshot monitor.Snapshot
}

// PerspectivesLoadedMsg carries the perspective list.
type PerspectivesLoadedMsg struct {
	Names []string
	Err   error
}

// PluginStatusMsg says whether the deck plugin is running.
type PluginStatusMsg struct {
	Running bool
	PID     int
}

// SettingsChangedMsg signals settings.yaml changed on disk.
type SettingsChangedMsg struct{}

// refreshTickMsg triggers the periodic refresh.
type refreshTickMsg struct{}
