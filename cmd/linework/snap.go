package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/felixgeelhaar/linework/internal/domain/geom"
	"github.com/felixgeelhaar/linework/internal/domain/snap"
	"github.com/felixgeelhaar/linework/internal/validation"
	"github.com/spf13/cobra"
)

var snapCmd = &cobra.Command{
	Use:   "snap <x> <y>",
	Short: "Rank snap targets near a point",
	Long: `Snap queries the resolver for targets near a world coordinate.

Candidates come back ranked: explicit points first, then shape anchors,
then computed intersections, with the raw coordinate as the fallback.
With --at-cursor only steps inside the cursor's visible prefix snap.

Examples:
  linework snap 10 4 --script rows.yaml
  linework snap 10 4 --script rows.yaml --tolerance 2.5
  linework snap 10 4 --script rows.yaml --cursor 3 --at-cursor
  linework snap 10 4 --script rows.yaml --json`,
	Args: cobra.ExactArgs(2),
	RunE: runSnap,
}

var (
	snapScript    string
	snapTolerance float64
	snapAtCursor  bool
	snapCursor    int
	snapJSON      bool
)

func init() {
	rootCmd.AddCommand(snapCmd)

	snapCmd.Flags().StringVarP(&snapScript, "script", "s", "", "Script to replay before querying")
	snapCmd.Flags().Float64Var(&snapTolerance, "tolerance", 0, "Snap radius in canvas units (0 = configured default)")
	snapCmd.Flags().BoolVar(&snapAtCursor, "at-cursor", false, "Snap only to the cursor's visible prefix")
	snapCmd.Flags().IntVar(&snapCursor, "cursor", -1, "Rewind the cursor before querying")
	snapCmd.Flags().BoolVar(&snapJSON, "json", false, "Output candidates as JSON")
}

func runSnap(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid y: %w", err)
	}
	if err := validation.ValidateCoordinate(x); err != nil {
		return fmt.Errorf("invalid x: %w", err)
	}
	if err := validation.ValidateCoordinate(y); err != nil {
		return fmt.Errorf("invalid y: %w", err)
	}
	if err := validation.ValidateTolerance(snapTolerance); err != nil {
		return fmt.Errorf("invalid tolerance: %w", err)
	}

	lw, err := prepareFigure(ctx, snapScript)
	if err != nil {
		return err
	}
	defer func() { _ = lw.Close() }()

	if snapCursor >= 0 {
		lw.MoveCursor(ctx, snapCursor)
	}

	candidates := lw.Snap(geom.Pt(x, y), snapTolerance, snapAtCursor)

	if snapJSON {
		return outputSnapJSON(candidates)
	}

	outputSnapText(x, y, candidates)
	return nil
}

func outputSnapJSON(candidates []snap.Candidate) error {
	type candidateRow struct {
		Class    string  `json:"class"`
		Step     int     `json:"step,omitempty"`
		Selector string  `json:"selector,omitempty"`
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		Distance float64 `json:"distance"`
	}

	rows := make([]candidateRow, 0, len(candidates))
	for _, c := range candidates {
		row := candidateRow{
			Class:    string(c.Class),
			X:        c.Point.X,
			Y:        c.Point.Y,
			Distance: c.Distance,
		}
		if c.Step.IsValid() {
			row.Step = int(c.Step)
			row.Selector = c.Selector.String()
		}
		rows = append(rows, row)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func outputSnapText(x, y float64, candidates []snap.Candidate) {
	fmt.Printf("Snap candidates near (%g, %g):\n\n", x, y)

	for _, c := range candidates {
		target := "-"
		if c.Step.IsValid() {
			target = fmt.Sprintf("%s.%s", c.Step, c.Selector)
		}
		fmt.Printf("  %-14s %-24s (%g, %g)  %.3f\n",
			c.Class, target, c.Point.X, c.Point.Y, c.Distance)
	}
}
