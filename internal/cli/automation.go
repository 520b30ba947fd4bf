package cli

import (
	"fmt"

	"github.com/ofsd-io/ofsd/internal/automation"
	"github.com/ofsd-io/ofsd/internal/config"
	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/query"
)

func loadSettings() (*models.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// newTaskQuery builds the same serialized osascript stack the plugin runs.
// The returned func stops the queue.
func newTaskQuery(settings *models.Settings) (*query.TaskQuery, *automation.OSAScript, func()) {
	queue := automation.NewQueue(settings.Automation.ScriptTimeout, logger.Named("automation"))
	osa := automation.NewOSAScript(settings.Automation.AppName, logger.Named("automation"))
	tq := query.New(automation.Serialized(osa, queue), logger.Named("query"))
	return tq, osa, queue.Stop
}
