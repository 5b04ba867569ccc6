package main

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/linework/internal/tui"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the step log interactively",
	Long: `Browse opens an interactive step log browser.

The selection row is the session cursor: rewinding with ↑/k mutes every
step past it, showing exactly what the figure looked like at that point
in the construction. r toggles reference display.

Examples:
  linework browse --script rows.yaml
  linework browse --script rows.yaml --cursor 3`,
	RunE: runBrowse,
}

var (
	browseScript string
	browseCursor int
)

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().StringVarP(&browseScript, "script", "s", "", "Script to replay before browsing")
	browseCmd.Flags().IntVar(&browseCursor, "cursor", -1, "Rewind the cursor before browsing")
}

func runBrowse(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	lw, err := prepareFigure(ctx, browseScript)
	if err != nil {
		return err
	}
	defer func() { _ = lw.Close() }()

	if browseCursor >= 0 {
		lw.MoveCursor(ctx, browseCursor)
	}

	result, err := tui.RunBrowser(ctx, lw)
	if err != nil {
		return fmt.Errorf("browse failed: %w", err)
	}

	status := lw.Status()
	fmt.Printf("Cursor left at %d of %d steps.\n", result.Cursor, status.Live)
	return nil
}
