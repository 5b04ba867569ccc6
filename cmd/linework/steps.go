package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/felixgeelhaar/linework/internal/app"
	"github.com/felixgeelhaar/linework/internal/domain/engine"
	"github.com/felixgeelhaar/linework/internal/domain/figure"
	"github.com/felixgeelhaar/linework/internal/tui"
	"github.com/felixgeelhaar/linework/internal/tui/ui"
	"github.com/felixgeelhaar/linework/internal/validation"
	"github.com/spf13/cobra"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the steps of a replayed figure",
	Long: `Steps lists the live step log of a figure in id order.

Without --script the figure is empty; with it the script is replayed
first. Rewinding with --cursor renders every step past the cursor muted,
matching what a renderer consuming the visible prefix would draw.

Examples:
  linework steps --script rows.yaml
  linework steps --script rows.yaml --refs
  linework steps --script rows.yaml --cursor 3
  linework steps --script rows.yaml --authored --json`,
	RunE: runSteps,
}

var (
	stepsScript   string
	stepsRefs     bool
	stepsAuthored bool
	stepsCursor   int
	stepsJSON     bool
)

func init() {
	rootCmd.AddCommand(stepsCmd)

	stepsCmd.Flags().StringVarP(&stepsScript, "script", "s", "", "Script to replay before listing")
	stepsCmd.Flags().BoolVar(&stepsRefs, "refs", false, "Show the references of each step")
	stepsCmd.Flags().BoolVar(&stepsAuthored, "authored", false, "Hide expansion-generated steps")
	stepsCmd.Flags().IntVar(&stepsCursor, "cursor", -1, "Rewind the cursor before listing")
	stepsCmd.Flags().BoolVar(&stepsJSON, "json", false, "Output steps as JSON")
}

// listedStep pairs a step view with whether it lies past the cursor in
// the live sequence; the position survives --authored filtering.
type listedStep struct {
	view         engine.StepView
	beyondCursor bool
	refNames     []string
}

func runSteps(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	lw, err := prepareFigure(ctx, stepsScript)
	if err != nil {
		return err
	}
	defer func() { _ = lw.Close() }()

	if stepsCursor >= 0 {
		lw.MoveCursor(ctx, stepsCursor)
	}
	cursor := lw.Cursor()

	kindOf := func(id figure.StepID) (figure.Kind, bool) {
		target, ok := lw.Step(id)
		return target.Kind, ok
	}

	var listed []listedStep
	for i, view := range lw.Steps() {
		if stepsAuthored && view.Origin != nil {
			continue
		}
		item := listedStep{view: view, beyondCursor: i >= cursor}
		if stepsRefs {
			item.refNames = tui.FormatRefNames(view.References, kindOf)
		}
		listed = append(listed, item)
	}

	if stepsJSON {
		return outputStepsJSON(listed)
	}

	outputStepsText(listed, len(lw.Steps()), cursor)
	return nil
}

// prepareFigure builds the application and replays the named script into
// it when one is given.
func prepareFigure(ctx context.Context, script string) (*app.Linework, error) {
	if script != "" {
		if err := validation.ValidateScriptName(script); err != nil {
			return nil, fmt.Errorf("invalid script: %w", err)
		}
	}

	lw, err := newLinework(ctx)
	if err != nil {
		return nil, err
	}

	if script != "" {
		if _, err := lw.Replay(ctx, script); err != nil {
			_ = lw.Close()
			return nil, fmt.Errorf("replay failed: %w", err)
		}
	}
	return lw, nil
}

func outputStepsJSON(listed []listedStep) error {
	type stepRow struct {
		ID         int      `json:"id"`
		Kind       string   `json:"kind"`
		Status     string   `json:"status"`
		Visible    bool     `json:"visible"`
		Error      string   `json:"error,omitempty"`
		Origin     string   `json:"origin,omitempty"`
		Recognized string   `json:"recognized,omitempty"`
		Refs       []string `json:"refs,omitempty"`
		RefNames   []string `json:"ref_names,omitempty"`
	}

	rows := make([]stepRow, 0, len(listed))
	for _, item := range listed {
		view := item.view
		row := stepRow{
			ID:       int(view.ID),
			Kind:     string(view.Kind),
			Status:   string(view.Status),
			Visible:  !item.beyondCursor,
			RefNames: item.refNames,
		}
		if view.Err != nil {
			row.Error = view.Err.Message
		}
		if view.Origin != nil {
			row.Origin = fmt.Sprintf("%s iteration %d", view.Origin.Owner, view.Origin.Iteration)
		}
		if view.Recognized != nil {
			row.Recognized = string(view.Recognized.Kind)
		}
		for _, ref := range view.References {
			row.Refs = append(row.Refs, fmt.Sprintf("%s.%s", ref.Step, ref.Selector))
		}
		rows = append(rows, row)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func outputStepsText(listed []listedStep, live, cursor int) {
	if len(listed) == 0 {
		fmt.Println("The figure is empty. Replay a script with --script first.")
		return
	}

	styles := ui.DefaultStyles()
	for _, item := range listed {
		line := tui.FormatStep(item.view, false)
		if item.beyondCursor {
			line = styles.ListItemMuted.Render(line)
		} else {
			line = styles.ListItem.Render(line)
		}
		fmt.Println(line)
		for _, name := range item.refNames {
			fmt.Println(styles.Help.Render("      ref " + name))
		}
	}

	fmt.Printf("\n%d steps, %d visible\n", live, cursor)
}
