//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/linework/internal/app"
	"github.com/felixgeelhaar/linework/internal/domain/config"
	"github.com/felixgeelhaar/linework/internal/domain/figure"
	"github.com/felixgeelhaar/linework/internal/domain/geom"
	"github.com/felixgeelhaar/linework/internal/domain/recognize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plateScript exercises the full step vocabulary in one script: literal
// points, a line referencing them, a closed path the recognizer
// classifies as a rect, and a loop expanding a template point.
const plateScript = `
version: v1
name: plate
steps:
  - kind: point
    at: {at: {x: 0, y: 0}}
  - kind: point
    at: {at: {x: 10, y: 0}}
  - kind: line
    refs:
      - {step: 1, selector: whole}
      - {step: 2, selector: whole}
    start: {ref: 0}
    end: {ref: 1}
  - kind: path
    vertices:
      - {at: {x: 20, y: 0}}
      - {at: {x: 26, y: 0}}
      - {at: {x: 26, y: 4}}
      - {at: {x: 20, y: 4}}
    closed: true
  - kind: point
    at: {at: {x: 0, y: 10}}
  - kind: loop
    template_len: 1
    count: 2
    dx: {value: 3}
    dy: {value: 0}
`

// newPipelineApp loads a real config file and builds the application on
// the wazero-backed evaluator, the same path the CLI takes.
func newPipelineApp(t *testing.T) *app.Linework {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "plate.yaml"), []byte(plateScript), 0o644))

	configPath := filepath.Join(dir, "linework.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"[log]\nlevel = \"error\"\n\n[scripts]\ndir = \""+dir+"\"\n"), 0o644))

	cfg, err := config.Load(configPath)
	require.NoError(t, err)

	lw, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, lw.Close()) })
	return lw
}

// TestPipeline_ScriptToFigure replays a script end to end and checks the
// resulting log, expansion, recognition and snap behavior together.
func TestPipeline_ScriptToFigure(t *testing.T) {
	t.Parallel()

	lw := newPipelineApp(t)

	// Phase 1: replay the script into a fresh figure
	report, err := lw.Replay(context.Background(), "plate.yaml")
	require.NoError(t, err)

	assert.Equal(t, 6, report.Authored)
	assert.Equal(t, 8, report.Live, "the loop expands two instances")
	assert.Equal(t, 8, report.Cursor)
	assert.Equal(t, 8, report.Statuses[figure.StatusClean])

	// Phase 2: the loop instances carry their origin and offsets
	views := lw.Steps()
	require.Len(t, views, 8)

	loopID := views[5].ID
	first, second := views[6], views[7]
	require.NotNil(t, first.Origin)
	require.NotNil(t, second.Origin)
	assert.Equal(t, loopID, first.Origin.Owner)
	assert.Equal(t, 1, first.Origin.Iteration)
	assert.Equal(t, 2, second.Origin.Iteration)
	assert.Equal(t, geom.Pt(3, 10), first.Geometry.(geom.Dot).P)
	assert.Equal(t, geom.Pt(6, 10), second.Geometry.(geom.Dot).P)

	// Phase 3: the closed right-angled path is recognized as a rect
	path := views[3]
	require.NotNil(t, path.Recognized)
	assert.Equal(t, recognize.KindRect, path.Recognized.Kind)
	assert.InDelta(t, 6.0, path.Recognized.Width, 1e-9)
	assert.InDelta(t, 4.0, path.Recognized.Height, 1e-9)

	// Phase 4: snapping near a rect corner ranks its anchor first
	candidates := lw.Snap(geom.Pt(26, 4), 0, false)
	require.NotEmpty(t, candidates)
	assert.Equal(t, path.ID, candidates[0].Step)
	assert.Equal(t, geom.Pt(26, 4), candidates[0].Point)
	assert.Zero(t, candidates[0].Distance)
}

// TestPipeline_EditPropagates edits a point and checks that exactly its
// dependents recompute.
func TestPipeline_EditPropagates(t *testing.T) {
	t.Parallel()

	lw := newPipelineApp(t)
	_, err := lw.Replay(context.Background(), "plate.yaml")
	require.NoError(t, err)

	views := lw.Steps()
	pointID, lineID := views[0].ID, views[2].ID

	err = lw.Edit(context.Background(), pointID,
		figure.PointParams{At: figure.LiteralPoint(geom.Pt(0, 2))}, nil)
	require.NoError(t, err)

	moved, ok := lw.Step(lineID)
	require.True(t, ok)
	line := moved.Geometry.(geom.Line)
	assert.Equal(t, geom.Pt(0, 2), line.Start, "the dependent line follows the edited point")
	assert.Equal(t, geom.Pt(10, 0), line.End)
	assert.Equal(t, figure.StatusClean, moved.Status)

	other, ok := lw.Step(views[1].ID)
	require.True(t, ok)
	assert.Equal(t, geom.Pt(10, 0), other.Geometry.(geom.Dot).P, "unrelated steps stay put")
}

// TestPipeline_ReplayIsDeterministic replays the same script in two
// applications and expects identical logs.
func TestPipeline_ReplayIsDeterministic(t *testing.T) {
	t.Parallel()

	first := newPipelineApp(t)
	second := newPipelineApp(t)

	_, err := first.Replay(context.Background(), "plate.yaml")
	require.NoError(t, err)
	_, err = second.Replay(context.Background(), "plate.yaml")
	require.NoError(t, err)

	assert.Equal(t, first.Steps(), second.Steps())
}

// TestPipeline_RewindRestrictsSnap rewinds the cursor and checks that
// hidden steps stop snapping.
func TestPipeline_RewindRestrictsSnap(t *testing.T) {
	t.Parallel()

	lw := newPipelineApp(t)
	_, err := lw.Replay(context.Background(), "plate.yaml")
	require.NoError(t, err)

	lw.MoveCursor(context.Background(), 3)
	assert.Len(t, lw.VisibleSteps(), 3)

	// The path at position 4 is beyond the cursor, so its corner no
	// longer snaps; only the raw fallback remains.
	candidates := lw.Snap(geom.Pt(26, 4), 0, true)
	require.Len(t, candidates, 1)
	assert.Equal(t, geom.Pt(26, 4), candidates[0].Point)
	assert.False(t, candidates[0].Step.IsValid())
}
