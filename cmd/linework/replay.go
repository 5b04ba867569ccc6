package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/linework/internal/domain/figure"
	"github.com/felixgeelhaar/linework/internal/tui/ui"
	"github.com/felixgeelhaar/linework/internal/validation"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script>",
	Short: "Replay a construction script",
	Long: `Replay loads a script from the configured scripts directory and replays
it step by step into a fresh figure.

Replaying is deterministic: the same script always produces the same step
log and the same geometry. A script whose steps are all accepted leaves
the cursor at the tail; a rejected step aborts the replay and names its
position.

Examples:
  linework replay rows.yaml
  linework replay rows.yaml --json
  linework replay rows.yaml --config ./linework.toml`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var replayJSON bool

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "Output the report as JSON")
}

func runReplay(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := validation.ValidateScriptName(args[0]); err != nil {
		return fmt.Errorf("invalid script: %w", err)
	}

	lw, err := newLinework(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = lw.Close() }()

	report, err := lw.Replay(ctx, args[0])
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	if replayJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	styles := ui.DefaultStyles()
	fmt.Println(styles.Success.Render(fmt.Sprintf("✓ Replayed %s", report.Script)))
	fmt.Printf("  Authored: %d steps\n", report.Authored)
	fmt.Printf("  Live:     %d steps\n", report.Live)
	fmt.Printf("  Cursor:   %d\n", report.Cursor)
	if line := formatStatusLine(report.Statuses); line != "" {
		fmt.Printf("  Status:   %s\n", line)
	}

	return nil
}

// formatStatusLine renders status counts as "4 clean, 1 error", in
// severity order with zero counts omitted.
func formatStatusLine(statuses map[figure.Status]int) string {
	parts := make([]string, 0, 3)
	for _, status := range []figure.Status{figure.StatusClean, figure.StatusDirty, figure.StatusError} {
		if n := statuses[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	return strings.Join(parts, ", ")
}
