package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// BadgeConfig holds the count-to-state mapping.
type BadgeConfig struct {
	// Counts at or above this are Long; counts between 1 and this are Short.
	ShortThreshold int `yaml:"short_threshold" validate:"gte=1"`
}

// AutomationConfig holds settings for talking to the task application.
type AutomationConfig struct {
	AppName       string        `yaml:"app_name" validate:"required"`
	ScriptTimeout time.Duration `yaml:"script_timeout" validate:"gte=100ms,lte=2m"`
}

// PollingConfig holds refresh interval defaults, in seconds.
type PollingConfig struct {
	DefaultRefreshInterval int `yaml:"default_refresh_interval" validate:"gtefield=MinRefreshInterval"`
	MinRefreshInterval     int `yaml:"min_refresh_interval" validate:"gte=1"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Settings represents global plugin settings.
// This corresponds to ~/.ofsd/settings.yaml.
type Settings struct {
	Version    int              `yaml:"version"`
	Badge      BadgeConfig      `yaml:"badge"`
	Automation AutomationConfig `yaml:"automation"`
	Polling    PollingConfig    `yaml:"polling"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Badge: BadgeConfig{
			ShortThreshold: 5,
		},
		Automation: AutomationConfig{
			AppName:       "OmniFocus",
			ScriptTimeout: 5 * time.Second,
		},
		Polling: PollingConfig{
			DefaultRefreshInterval: 60,
			MinRefreshInterval:     5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

var validate = validator.New()

// Validate checks the settings against their constraints.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
