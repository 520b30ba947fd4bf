package config

import (
	"os"
	"syscall"

	"github.com/ofsd-io/ofsd/internal/models"
)

// LoadPluginInfo loads the plugin process info from ~/.ofsd/plugin.yaml.
// Returns nil if the file doesn't exist.
func LoadPluginInfo() (*models.PluginInfo, error) {
	path, err := GlobalPluginFile()
	if err != nil {
		return nil, err
	}

	if !FileExists(path) {
		return nil, nil
	}

	var info models.PluginInfo
	if err := LoadYAML(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SavePluginInfo saves the plugin process info to ~/.ofsd/plugin.yaml.
func SavePluginInfo(info *models.PluginInfo) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}

	path, err := GlobalPluginFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, info)
}

// RemovePluginInfo removes the plugin.yaml file.
func RemovePluginInfo() error {
	path, err := GlobalPluginFile()
	if err != nil {
		return err
	}

	if !FileExists(path) {
		return nil
	}
	return os.Remove(path)
}

// IsPluginRunning reports whether plugin.yaml exists and its PID is alive.
// A stale file is removed.
func IsPluginRunning() (bool, *models.PluginInfo, error) {
	info, err := LoadPluginInfo()
	if err != nil {
		return false, nil, err
	}
	if info == nil {
		return false, nil, nil
	}

	process, err := os.FindProcess(info.PID)
	if err != nil {
		return false, info, nil
	}

	// Signal 0 only checks existence
	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = RemovePluginInfo()
		return false, info, nil
	}

	return true, info, nil
}
