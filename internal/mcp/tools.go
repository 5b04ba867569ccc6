// Package mcp provides MCP (Model Context Protocol) server implementation for linework.
package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/linework/internal/app"
	"github.com/felixgeelhaar/linework/internal/domain/engine"
	"github.com/felixgeelhaar/linework/internal/domain/figure"
	"github.com/felixgeelhaar/linework/internal/domain/geom"
	"github.com/felixgeelhaar/mcp-go"
)

// ReplayInput is the input for the linework_replay tool.
type ReplayInput struct {
	Script string `json:"script" jsonschema:"required,description=Script file name inside the configured scripts directory (e.g. rows.yaml)"`
}

// ReplayOutput is the output for the linework_replay tool.
type ReplayOutput struct {
	Script        string         `json:"script"`
	AuthoredSteps int            `json:"authored_steps"`
	LiveSteps     int            `json:"live_steps"`
	Cursor        int            `json:"cursor"`
	Statuses      map[string]int `json:"statuses"`
}

// StepsInput is the input for the linework_steps tool.
type StepsInput struct {
	Authored bool `json:"authored,omitempty" jsonschema:"description=Only authored steps, without loop or duplicate instances"`
	AtCursor bool `json:"at_cursor,omitempty" jsonschema:"description=Only the steps visible at the session cursor"`
	Refs     bool `json:"refs,omitempty" jsonschema:"description=Include each step's references"`
}

// StepsOutput is the output for the linework_steps tool.
type StepsOutput struct {
	Steps []StepInfo `json:"steps"`
	Count int        `json:"count"`
}

// StepInfo represents a single step of the log.
type StepInfo struct {
	ID         int       `json:"id"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Origin     string    `json:"origin,omitempty"`
	Recognized string    `json:"recognized,omitempty"`
	Refs       []RefInfo `json:"refs,omitempty"`
}

// RefInfo represents one reference of a step.
type RefInfo struct {
	Step     int    `json:"step"`
	Selector string `json:"selector"`
	Name     string `json:"name,omitempty"`
}

// SnapInput is the input for the linework_snap tool.
type SnapInput struct {
	X         float64 `json:"x" jsonschema:"required,description=World x coordinate of the queried point"`
	Y         float64 `json:"y" jsonschema:"required,description=World y coordinate of the queried point"`
	Tolerance float64 `json:"tolerance,omitempty" jsonschema:"description=Snap tolerance in world units (0 uses the configured default)"`
	AtCursor  bool    `json:"at_cursor,omitempty" jsonschema:"description=Only snap to steps visible at the session cursor"`
}

// SnapOutput is the output for the linework_snap tool.
type SnapOutput struct {
	Candidates []SnapCandidate `json:"candidates"`
}

// SnapCandidate represents one ranked snap result.
type SnapCandidate struct {
	Class    string  `json:"class"`
	Step     int     `json:"step,omitempty"`
	Selector string  `json:"selector,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Distance float64 `json:"distance"`
}

// CursorInput is the input for the linework_cursor tool.
type CursorInput struct {
	Position *int `json:"position,omitempty" jsonschema:"description=New cursor position, clamped to the live step range; omit to read without moving"`
}

// CursorOutput is the output for the linework_cursor tool.
type CursorOutput struct {
	Cursor       int `json:"cursor"`
	LiveSteps    int `json:"live_steps"`
	VisibleSteps int `json:"visible_steps"`
}

// StatusInput is the input for the linework_status tool.
type StatusInput struct{}

// StatusOutput is the output for the linework_status tool.
type StatusOutput struct {
	Session    SessionStatus  `json:"session"`
	Script     string         `json:"script,omitempty"`
	LiveSteps  int            `json:"live_steps"`
	TotalSteps int            `json:"total_steps"`
	Statuses   map[string]int `json:"statuses"`
}

// SessionStatus summarizes the editing session.
type SessionStatus struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	Cursor    int    `json:"cursor"`
	Mutations int    `json:"mutations"`
	Replays   int    `json:"replays"`
	Errors    int    `json:"errors"`
	LastError string `json:"last_error,omitempty"`
}

// RegisterAll registers all MCP tools with the server.
func RegisterAll(srv *mcp.Server, lw *app.Linework) {
	registerReplayTool(srv, lw)
	registerStepsTool(srv, lw)
	registerSnapTool(srv, lw)
	registerCursorTool(srv, lw)
	registerStatusTool(srv, lw)
}

func registerReplayTool(srv *mcp.Server, lw *app.Linework) {
	srv.Tool("linework_replay").
		Description("Replay a construction script into a fresh figure, replacing the current one. The previous figure survives if any step is rejected.").
		Destructive().
		Handler(func(ctx context.Context, in ReplayInput) (*ReplayOutput, error) {
			if err := ValidateReplayInput(&in); err != nil {
				return nil, err
			}

			report, err := lw.Replay(ctx, in.Script)
			if err != nil {
				return nil, err
			}

			return &ReplayOutput{
				Script:        report.Script,
				AuthoredSteps: report.Authored,
				LiveSteps:     report.Live,
				Cursor:        report.Cursor,
				Statuses:      statusCounts(report.Statuses),
			}, nil
		})
}

func registerStepsTool(srv *mcp.Server, lw *app.Linework) {
	srv.Tool("linework_steps").
		Description("List the live steps of the current figure in id order, optionally restricted to authored steps or the cursor's visible prefix.").
		ReadOnly().
		Handler(func(_ context.Context, in StepsInput) (*StepsOutput, error) {
			var views []engine.StepView
			if in.AtCursor {
				views = lw.VisibleSteps()
			} else {
				views = lw.Steps()
			}

			kindOf := func(id figure.StepID) (figure.Kind, bool) {
				target, ok := lw.Step(id)
				return target.Kind, ok
			}

			output := &StepsOutput{Steps: make([]StepInfo, 0, len(views))}
			for _, view := range views {
				if in.Authored && view.Origin != nil {
					continue
				}
				output.Steps = append(output.Steps, stepInfo(view, in.Refs, kindOf))
			}
			output.Count = len(output.Steps)
			return output, nil
		})
}

func registerSnapTool(srv *mcp.Server, lw *app.Linework) {
	srv.Tool("linework_snap").
		Description("Rank the snap targets near a world point: explicit points first, then shape anchors, then intersections, with the raw coordinate as fallback.").
		ReadOnly().
		Handler(func(_ context.Context, in SnapInput) (*SnapOutput, error) {
			if err := ValidateSnapInput(&in); err != nil {
				return nil, err
			}

			candidates := lw.Snap(geom.Pt(in.X, in.Y), in.Tolerance, in.AtCursor)
			output := &SnapOutput{Candidates: make([]SnapCandidate, 0, len(candidates))}
			for _, c := range candidates {
				info := SnapCandidate{
					Class:    string(c.Class),
					X:        c.Point.X,
					Y:        c.Point.Y,
					Distance: c.Distance,
				}
				if c.Step.IsValid() {
					info.Step = int(c.Step)
					info.Selector = c.Selector.String()
				}
				output.Candidates = append(output.Candidates, info)
			}
			return output, nil
		})
}

func registerCursorTool(srv *mcp.Server, lw *app.Linework) {
	srv.Tool("linework_cursor").
		Description("Read the session cursor, or move it when a position is given. Moves clamp to the live step range and never mutate the log.").
		Handler(func(ctx context.Context, in CursorInput) (*CursorOutput, error) {
			if err := ValidateCursorInput(&in); err != nil {
				return nil, err
			}

			cursor := lw.Cursor()
			if in.Position != nil {
				cursor = lw.MoveCursor(ctx, *in.Position)
			}

			status := lw.Status()
			return &CursorOutput{
				Cursor:       cursor,
				LiveSteps:    status.Live,
				VisibleSteps: len(lw.VisibleSteps()),
			}, nil
		})
}

func registerStatusTool(srv *mcp.Server, lw *app.Linework) {
	srv.Tool("linework_status").
		Description("Get the session state and step counts of the current figure.").
		ReadOnly().
		Handler(func(_ context.Context, _ StatusInput) (*StatusOutput, error) {
			status := lw.Status()
			return &StatusOutput{
				Session: SessionStatus{
					ID:        status.Session.ID,
					State:     string(status.Session.State),
					Cursor:    status.Session.Cursor,
					Mutations: status.Session.Mutations,
					Replays:   status.Session.Replays,
					Errors:    status.Session.Errors,
					LastError: status.Session.LastError,
				},
				Script:     status.Script,
				LiveSteps:  status.Live,
				TotalSteps: status.Total,
				Statuses:   statusCounts(status.Statuses),
			}, nil
		})
}

func stepInfo(view engine.StepView, withRefs bool, kindOf func(figure.StepID) (figure.Kind, bool)) StepInfo {
	info := StepInfo{
		ID:     int(view.ID),
		Kind:   string(view.Kind),
		Status: string(view.Status),
	}
	if view.Err != nil {
		info.Error = view.Err.Message
		info.ErrorKind = string(view.ErrKind)
	}
	if view.Origin != nil {
		info.Origin = fmt.Sprintf("%s iteration %d", view.Origin.Owner, view.Origin.Iteration)
	}
	if view.Recognized != nil {
		info.Recognized = string(view.Recognized.Kind)
	}
	if withRefs {
		for _, ref := range view.References {
			item := RefInfo{
				Step:     int(ref.Step),
				Selector: ref.Selector.String(),
			}
			if kind, ok := kindOf(ref.Step); ok {
				item.Name = ref.DisplayName(kind)
			}
			info.Refs = append(info.Refs, item)
		}
	}
	return info
}

func statusCounts(counts map[figure.Status]int) map[string]int {
	out := make(map[string]int, len(counts))
	for status, n := range counts {
		out[string(status)] = n
	}
	return out
}
