package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ofsd-io/ofsd/internal/badge"
	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/tray"
)

var traySource string

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Show a count in the menu bar",
	Long: `Run a menu-bar monitor showing one count next to its icon and every
count in its menu. Blocks until quit from the menu or interrupted.`,
	RunE: runTray,
}

func init() {
	trayCmd.Flags().StringVarP(&traySource, "source", "s", "overdue", "Count shown next to the icon (overdue, today, flagged)")
}

func runTray(cmd *cobra.Command, args []string) error {
	primary, err := models.ParseBadgeSource(traySource)
	if err != nil {
		return err
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	tq, _, stop := newTaskQuery(settings)
	defer stop()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		tray.Quit()
	}()

	tray.Run(tray.Options{
		Source:   tq,
		Deriver:  badge.NewDeriver(badge.NewThresholds(settings)),
		Primary:  primary,
		Interval: time.Duration(settings.Polling.DefaultRefreshInterval) * time.Second,
		Logger:   logger.Named("tray"),
	})
	return nil
}
