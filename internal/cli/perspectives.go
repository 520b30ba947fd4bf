package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var perspectivesCmd = &cobra.Command{
	Use:     "perspectives",
	Aliases: []string{"persp"},
	Short:   "List perspectives",
	Long:    `List the perspective names the property inspector offers, one per line.`,
	RunE:    runPerspectives,
}

func runPerspectives(cmd *cobra.Command, args []string) error {
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

	names, err := tq.Perspectives(ctx)
	if err != nil {
		return fmt.Errorf("failed to list perspectives: %w", err)
	}

	if !isTTY() {
		for _, n := range names {
			fmt.Fprintln(os.Stdout, n)
		}
		return nil
	}

	if len(names) == 0 {
		fmt.Println(styleHint.Render("No perspectives."))
		return nil
	}
	for _, n := range names {
		fmt.Printf("  %s\n", styleValue.Render(n))
	}
	fmt.Println(styleHint.Render(fmt.Sprintf("\n%d perspectives", len(names))))
	return nil
}
