package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ofsd-io/ofsd/internal/config"
	"github.com/ofsd-io/ofsd/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Show or change global settings",
	Long: `Show or change the global settings in ~/.ofsd/settings.yaml.

A running plugin picks up changes to this file without restarting.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting and save it.

Keys:
  badge.short_threshold            counts at or above this show the long badge
  automation.app_name              application the scripts talk to
  automation.script_timeout        per-script timeout (e.g. 5s)
  polling.default_refresh_interval seconds between polls when a button sets none
  polling.min_refresh_interval     lowest poll interval a button may ask for
  logging.level                    debug, info, warn or error`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GlobalSettingsFile()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SaveSettings(models.NewSettings()); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Println(styleSuccess.Render("Settings reset to defaults."))
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsPathCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsShowCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := applySetting(settings, args[0], args[1]); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Printf("%s %s = %s\n", styleSuccess.Render("Saved"), styleLabel.Render(args[0]), styleValue.Render(args[1]))
	return nil
}

var settingSetters = map[string]func(s *models.Settings, value string) error{
	"badge.short_threshold": func(s *models.Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("not a number: %q", v)
		}
		s.Badge.ShortThreshold = n
		return nil
	},
	"automation.app_name": func(s *models.Settings, v string) error {
		s.Automation.AppName = v
		return nil
	},
	"automation.script_timeout": func(s *models.Settings, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("not a duration: %q", v)
		}
		s.Automation.ScriptTimeout = d
		return nil
	},
	"polling.default_refresh_interval": func(s *models.Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("not a number: %q", v)
		}
		s.Polling.DefaultRefreshInterval = n
		return nil
	},
	"polling.min_refresh_interval": func(s *models.Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("not a number: %q", v)
		}
		s.Polling.MinRefreshInterval = n
		return nil
	},
	"logging.level": func(s *models.Settings, v string) error {
		s.Logging.Level = strings.ToLower(v)
		return nil
	},
}

// applySetting sets one dotted key. It does not validate the result.
func applySetting(s *models.Settings, key, value string) error {
	set, ok := settingSetters[key]
	if !ok {
		keys := make([]string, 0, len(settingSetters))
		for k := range settingSetters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(keys, ", "))
	}
	return set(s, strings.TrimSpace(value))
}
