package cli

import (
	"github.com/spf13/cobra"

	"github.com/ofsd-io/ofsd/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of the task counts",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	tq, _, stop := newTaskQuery(settings)
	defer stop()

	return tui.Run(tq, settings, logger.Named("tui"))
}
