package config

import (
	"github.com/ofsd-io/ofsd/internal/models"
)

// LoadSettings loads the global settings from ~/.ofsd/settings.yaml.
// Missing files and missing keys fall back to defaults; the result is validated.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	settings, err := LoadYAMLOrDefault(path, models.NewSettings)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveSettings validates and saves the global settings to ~/.ofsd/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := EnsureGlobalDir(); err != nil {
		return err
	}
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}
