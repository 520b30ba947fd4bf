package models

import "time"

// PluginInfo describes the running plugin process.
// This corresponds to ~/.ofsd/plugin.yaml.
type PluginInfo struct {
	Version       int       `yaml:"version"`
	PluginVersion string    `yaml:"plugin_version,omitempty"`
	PID           int       `yaml:"pid"`
	Port          int       `yaml:"port"`
	PluginUUID    string    `yaml:"plugin_uuid"`
	Actions       int       `yaml:"actions"`
	StartedAt     time.Time `yaml:"started_at"`
}

// NewPluginInfo creates plugin info with current values.
func NewPluginInfo(port, pid int, pluginUUID string) *PluginInfo {
	return &PluginInfo{
		Version:    1,
		PID:        pid,
		Port:       port,
		PluginUUID: pluginUUID,
		StartedAt:  time.Now().UTC(),
	}
}
