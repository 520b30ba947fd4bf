package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ofsd-io/ofsd/internal/badge"
	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/query"
)

var countSource string

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Query task counts",
	Long: `Query the task counts the plugin shows on its buttons.

Without --source every count is queried. Output is tab-separated
(source, count, badge state) when stdout is not a terminal.`,
	RunE: runCount,
}

func init() {
	countCmd.Flags().StringVarP(&countSource, "source", "s", "", "Only query one source (overdue, today, flagged)")
}

func runCount(cmd *cobra.Command, args []string) error {
	sources := models.BadgeSources
	if countSource != "" {
		s, err := models.ParseBadgeSource(countSource)
		if err != nil {
			return err
		}
		sources = []models.BadgeSource{s}
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	tq, _, stop := newTaskQuery(settings)
	defer stop()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]query.Result, 0, len(sources))
	for _, s := range sources {
		results = append(results, tq.Count(ctx, s))
	}

	deriver := badge.NewDeriver(badge.NewThresholds(settings))
	writeCounts(os.Stdout, results, deriver, isTTY())

	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("%s: %w", r.Source.Label(), r.Err)
		}
	}
	return nil
}

func writeCounts(w io.Writer, results []query.Result, deriver *badge.Deriver, styled bool) {
	for _, r := range results {
		state := deriver.Derive(r.Count, r.Source)
		if !styled {
			fmt.Fprintf(w, "%s\t%d\t%s\n", r.Source.Label(), r.Count, state)
			continue
		}
		line := fmt.Sprintf("%s %s",
			styleLabel.Render(fmt.Sprintf("%-8s", r.Source.Label())),
			stateStyle(state).Render(fmt.Sprintf("%4d  %s", r.Count, state)))
		if !r.OK() {
			line += "  " + styleError.Render("failed")
		}
		fmt.Fprintln(w, line)
	}
}
