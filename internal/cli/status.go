package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ofsd-io/ofsd/internal/automation"
	"github.com/ofsd-io/ofsd/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show plugin status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsPluginRunning()
	if err != nil {
		return fmt.Errorf("failed to check plugin status: %w", err)
	}

	fmt.Println(styleBrand.Render("ofsd"))
	if running && info != nil {
		fmt.Printf("  %s %s\n", styleLabel.Render("Plugin:"), styleSuccess.Render("running"))
		fmt.Printf("  %s %d\n", styleLabel.Render("PID:"), info.PID)
		fmt.Printf("  %s %d\n", styleLabel.Render("Deck port:"), info.Port)
		fmt.Printf("  %s %d\n", styleLabel.Render("Buttons:"), info.Actions)
		if info.PluginVersion != "" {
			fmt.Printf("  %s %s\n", styleLabel.Render("Version:"), info.PluginVersion)
		}
		fmt.Printf("  %s %s\n", styleLabel.Render("Uptime:"), time.Since(info.StartedAt).Round(time.Second))
	} else {
		fmt.Printf("  %s %s\n", styleLabel.Render("Plugin:"), styleWarning.Render("not running"))
		fmt.Printf("  %s\n", styleHint.Render("The Stream Deck app starts the plugin when a button uses it."))
	}

	settings, err := loadSettings()
	if err != nil {
		fmt.Printf("  %s %s\n", styleLabel.Render("Settings:"), styleError.Render(err.Error()))
		return nil
	}

	_, osa, stop := newTaskQuery(settings)
	defer stop()
	fmt.Printf("  %s %s\n", styleLabel.Render("App:"), settings.Automation.AppName)
	var setupErr error
	for _, name := range automation.ScriptNames() {
		if _, err := osa.SetupScript(name); err != nil {
			setupErr = err
			break
		}
	}
	if setupErr != nil {
		fmt.Printf("  %s %s\n", styleLabel.Render("Automation:"), styleError.Render("unavailable"))
		fmt.Printf("  %s\n", styleHint.Render(setupErr.Error()))
		fmt.Printf("  %s %s\n", styleHint.Render("App name can be changed with"), styleCommand.Render("ofsd settings set automation.app_name <name>"))
	} else {
		fmt.Printf("  %s %s\n", styleLabel.Render("Automation:"), styleSuccess.Render("ok"))
	}

	if path, err := config.GlobalSettingsFile(); err == nil {
		fmt.Printf("  %s %s\n", styleLabel.Render("Settings:"), path)
	}
	if path, err := config.PluginLogFile(); err == nil {
		fmt.Printf("  %s %s\n", styleLabel.Render("Log:"), path)
	}
	return nil
}
