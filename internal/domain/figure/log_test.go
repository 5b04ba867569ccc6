package figure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

func appendPoint(t *testing.T, log *Log, x, y float64) *Step {
	t.Helper()
	step, err := log.Append(KindPoint, PointParams{At: LiteralPoint(geom.Pt(x, y))}, nil)
	require.NoError(t, err)
	return step
}

func appendLine(t *testing.T, log *Log, refs ...Reference) *Step {
	t.Helper()
	step, err := log.Append(KindLine, LineParams{
		Start: RefPoint(0),
		End:   RefPoint(1),
	}, refs)
	require.NoError(t, err)
	return step
}

func TestLogAppend(t *testing.T) {
	t.Parallel()

	t.Run("assigns dense ascending ids", func(t *testing.T) {
		t.Parallel()
		log := NewLog()

		p1 := appendPoint(t, log, 0, 0)
		p2 := appendPoint(t, log, 10, 0)
		line := appendLine(t, log, Ref(p1.ID(), Center()), Ref(p2.ID(), Center()))

		assert.Equal(t, StepID(1), p1.ID())
		assert.Equal(t, StepID(2), p2.ID())
		assert.Equal(t, StepID(3), line.ID())
		assert.Equal(t, 3, log.Len())
		assert.Equal(t, StepID(4), log.NextID())
	})

	t.Run("new steps start dirty", func(t *testing.T) {
		t.Parallel()
		log := NewLog()

		p := appendPoint(t, log, 1, 1)

		assert.Equal(t, StatusDirty, p.Status())
		assert.Nil(t, p.Geometry())
	})

	t.Run("rejects forward reference", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		appendPoint(t, log, 0, 0)

		_, err := log.Append(KindLine, LineParams{Start: RefPoint(0), End: RefPoint(1)},
			[]Reference{Ref(1, Center()), Ref(7, Center())})

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, ErrCodeInvalidReference, stepErr.Code)
		assert.Equal(t, 1, log.Len(), "failed append must not grow the log")
	})

	t.Run("rejects self reference", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		appendPoint(t, log, 0, 0)

		// The line would get id 2, so referencing 2 points at itself.
		_, err := log.Append(KindLine, LineParams{Start: RefPoint(0), End: RefPoint(1)},
			[]Reference{Ref(1, Center()), Ref(2, Center())})

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, ErrCodeInvalidReference, stepErr.Code)
	})

	t.Run("rejects intersection partner that does not exist", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		appendPoint(t, log, 0, 0)

		_, err := log.Append(KindPoint,
			PointParams{At: RefPoint(0)},
			[]Reference{Ref(1, Intersection(0, 9))})

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, ErrCodeInvalidReference, stepErr.Code)
	})

	t.Run("rejects argument slot beyond the reference list", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		appendPoint(t, log, 0, 0)

		_, err := log.Append(KindLine, LineParams{Start: RefPoint(0), End: RefPoint(5)},
			[]Reference{Ref(1, Center())})

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, ErrCodeInvalidParams, stepErr.Code)
	})

	t.Run("rejects params of another kind", func(t *testing.T) {
		t.Parallel()
		log := NewLog()

		_, err := log.Append(KindLine, PointParams{At: LiteralPoint(geom.Pt(0, 0))}, nil)

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, ErrCodeInvalidParams, stepErr.Code)
	})

	t.Run("adjustment target must select a whole step", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		appendPoint(t, log, 0, 0)

		_, err := log.Append(KindMove, MoveParams{
			Target: 0,
			DX:     LiteralScalar(5),
			DY:     LiteralScalar(0),
		}, []Reference{Ref(1, Center())})

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, ErrCodeInvalidParams, stepErr.Code)
	})
}

func TestLogAppendLoop(t *testing.T) {
	t.Parallel()

	t.Run("derives references over the template range", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		appendPoint(t, log, 0, 0)
		appendPoint(t, log, 10, 0)

		loop, err := log.Append(KindLoop, LoopParams{
			TemplateLen: 2,
			Count:       3,
			DX:          LiteralScalar(20),
			DY:          LiteralScalar(0),
		}, nil)

		require.NoError(t, err)
		require.Len(t, loop.References(), 2)
		assert.Equal(t, Ref(1, Whole()), loop.References()[0])
		assert.Equal(t, Ref(2, Whole()), loop.References()[1])
		assert.Equal(t, []StepID{1, 2}, log.Graph().DependsOn(loop.ID()))
	})

	t.Run("rejects caller-provided references", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		appendPoint(t, log, 0, 0)

		_, err := log.Append(KindLoop, LoopParams{
			TemplateLen: 1,
			Count:       1,
			DX:          LiteralScalar(1),
			DY:          LiteralScalar(0),
		}, []Reference{Ref(1, Whole())})

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, ErrCodeInvalidParams, stepErr.Code)
	})

	t.Run("rejects template longer than the preceding log", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		appendPoint(t, log, 0, 0)

		_, err := log.Append(KindLoop, LoopParams{
			TemplateLen: 2,
			Count:       1,
			DX:          LiteralScalar(1),
			DY:          LiteralScalar(0),
		}, nil)

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, ErrCodeInvalidParams, stepErr.Code)
	})

	t.Run("rejects an expansion step inside the template", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		appendPoint(t, log, 0, 0)
		_, err := log.Append(KindLoop, LoopParams{
			TemplateLen: 1,
			Count:       1,
			DX:          LiteralScalar(1),
			DY:          LiteralScalar(0),
		}, nil)
		require.NoError(t, err)

		_, err = log.Append(KindLoop, LoopParams{
			TemplateLen: 1,
			Count:       1,
			DX:          LiteralScalar(1),
			DY:          LiteralScalar(0),
		}, nil)

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, ErrCodeInvalidParams, stepErr.Code)
		assert.Contains(t, stepErr.Underlying.Error(), "template cannot contain")
	})

	t.Run("duplicate cannot target an expansion step", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		appendPoint(t, log, 0, 0)
		loop, err := log.Append(KindLoop, LoopParams{
			TemplateLen: 1,
			Count:       1,
			DX:          LiteralScalar(1),
			DY:          LiteralScalar(0),
		}, nil)
		require.NoError(t, err)

		_, err = log.Append(KindDuplicate, DuplicateParams{
			Target: 0,
			DX:     LiteralScalar(5),
			DY:     LiteralScalar(5),
		}, []Reference{Ref(loop.ID(), Whole())})

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, ErrCodeInvalidParams, stepErr.Code)
	})
}

func TestLogEdit(t *testing.T) {
	t.Parallel()

	t.Run("replaces params and marks the step dirty", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		p := appendPoint(t, log, 0, 0)
		log.SetClean(p.ID(), geom.Dot{P: geom.Pt(0, 0)})
		require.Equal(t, StatusClean, p.Status())

		err := log.Edit(p.ID(), PointParams{At: LiteralPoint(geom.Pt(5, 5))}, nil)

		require.NoError(t, err)
		assert.Equal(t, StatusDirty, p.Status())
		assert.Equal(t, PointParams{At: LiteralPoint(geom.Pt(5, 5))}, p.Params())
	})

	t.Run("identical edit short-circuits with ErrUnchanged", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		p := appendPoint(t, log, 3, 4)
		log.SetClean(p.ID(), geom.Dot{P: geom.Pt(3, 4)})

		err := log.Edit(p.ID(), PointParams{At: LiteralPoint(geom.Pt(3, 4))}, nil)

		require.ErrorIs(t, err, ErrUnchanged)
		assert.Equal(t, StatusClean, p.Status(), "short-circuited edit must not dirty the step")
	})

	t.Run("repointing a reference updates the graph", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		p1 := appendPoint(t, log, 0, 0)
		p2 := appendPoint(t, log, 10, 0)
		p3 := appendPoint(t, log, 20, 0)
		line := appendLine(t, log, Ref(p1.ID(), Center()), Ref(p2.ID(), Center()))

		err := log.Edit(line.ID(), line.Params(),
			[]Reference{Ref(p1.ID(), Center()), Ref(p3.ID(), Center())})

		require.NoError(t, err)
		assert.Equal(t, []StepID{p1.ID(), p3.ID()}, log.Graph().DependsOn(line.ID()))
		assert.Empty(t, log.Graph().Dependents(p2.ID()))
		assert.Equal(t, []StepID{line.ID()}, log.Graph().Dependents(p3.ID()))
	})

	t.Run("rejects changing the kind", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		p := appendPoint(t, log, 0, 0)

		err := log.Edit(p.ID(), TextParams{
			At:      LiteralPoint(geom.Pt(0, 0)),
			Content: "a",
			Size:    LiteralScalar(12),
		}, nil)

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, ErrCodeInvalidParams, stepErr.Code)
	})

	t.Run("unknown and tombstoned ids fail with ErrStepNotFound", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		p := appendPoint(t, log, 0, 0)
		log.Tombstone(p.ID())

		errMissing := log.Edit(9, PointParams{At: LiteralPoint(geom.Pt(0, 0))}, nil)
		errTombstone := log.Edit(p.ID(), PointParams{At: LiteralPoint(geom.Pt(1, 1))}, nil)

		assert.ErrorIs(t, errMissing, ErrStepNotFound)
		assert.ErrorIs(t, errTombstone, ErrStepNotFound)
	})

	t.Run("failed edit leaves the step untouched", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		p1 := appendPoint(t, log, 0, 0)
		p2 := appendPoint(t, log, 10, 0)
		line := appendLine(t, log, Ref(p1.ID(), Center()), Ref(p2.ID(), Center()))
		log.SetClean(line.ID(), geom.Line{Start: geom.Pt(0, 0), End: geom.Pt(10, 0)})

		err := log.Edit(line.ID(), line.Params(),
			[]Reference{Ref(p1.ID(), Center()), Ref(99, Center())})

		require.Error(t, err)
		assert.Equal(t, StatusClean, line.Status())
		assert.Equal(t, []StepID{p1.ID(), p2.ID()}, log.Graph().DependsOn(line.ID()))
	})

	t.Run("ValidateEdit does not mutate", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		p := appendPoint(t, log, 0, 0)
		log.SetClean(p.ID(), geom.Dot{P: geom.Pt(0, 0)})

		err := log.ValidateEdit(p.ID(), PointParams{At: LiteralPoint(geom.Pt(5, 5))}, nil)

		require.NoError(t, err)
		assert.Equal(t, StatusClean, p.Status())
		assert.Equal(t, PointParams{At: LiteralPoint(geom.Pt(0, 0))}, p.Params())
	})
}

func TestLogTombstones(t *testing.T) {
	t.Parallel()

	t.Run("tombstones keep their id but leave the live sequence", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		appendPoint(t, log, 0, 0)
		p2 := appendPoint(t, log, 1, 1)
		appendPoint(t, log, 2, 2)

		log.Tombstone(p2.ID())

		assert.Equal(t, 3, log.Len())
		assert.Equal(t, 2, log.LiveLen())

		got, ok := log.Get(p2.ID())
		require.True(t, ok)
		assert.True(t, got.IsTombstone())

		live := log.Live()
		require.Len(t, live, 2)
		assert.Equal(t, StepID(1), live[0].ID())
		assert.Equal(t, StepID(3), live[1].ID())
	})

	t.Run("live prefix counts live steps only", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		appendPoint(t, log, 0, 0)
		p2 := appendPoint(t, log, 1, 1)
		appendPoint(t, log, 2, 2)
		log.Tombstone(p2.ID())

		prefix := log.LivePrefix(2)

		require.Len(t, prefix, 2)
		assert.Equal(t, StepID(1), prefix[0].ID())
		assert.Equal(t, StepID(3), prefix[1].ID())
		assert.Empty(t, log.LivePrefix(0))
	})

	t.Run("references must point at live steps", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		p := appendPoint(t, log, 0, 0)
		log.Tombstone(p.ID())

		_, err := log.Append(KindPoint, PointParams{At: RefPoint(0)},
			[]Reference{Ref(p.ID(), Center())})

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, ErrCodeInvalidReference, stepErr.Code)
	})
}

func TestLogAuthored(t *testing.T) {
	t.Parallel()

	log := NewLog()
	appendPoint(t, log, 0, 0)
	loop, err := log.Append(KindLoop, LoopParams{
		TemplateLen: 1,
		Count:       1,
		DX:          LiteralScalar(5),
		DY:          LiteralScalar(0),
	}, nil)
	require.NoError(t, err)

	instance, err := log.AppendInstance(KindPoint,
		PointParams{At: LiteralPoint(geom.Pt(5, 0))}, nil,
		&ExpansionOrigin{Owner: loop.ID(), Iteration: 1, Template: 1})
	require.NoError(t, err)
	require.True(t, instance.IsInstance())

	_, err = log.AppendInstance(KindPoint, PointParams{At: LiteralPoint(geom.Pt(0, 0))}, nil, nil)
	require.Error(t, err, "instances need an origin")

	authored := log.Authored()
	require.Len(t, authored, 2)
	assert.Equal(t, StepID(1), authored[0].ID())
	assert.Equal(t, loop.ID(), authored[1].ID())
}

func TestStepStatusTransitions(t *testing.T) {
	t.Parallel()

	t.Run("error freezes the last good geometry", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		p := appendPoint(t, log, 0, 0)

		shape := geom.Dot{P: geom.Pt(0, 0)}
		log.SetClean(p.ID(), shape)
		require.Equal(t, StatusClean, p.Status())

		log.SetError(p.ID(), NewDegenerateGeometryError(p.ID(), "zero extent"))

		assert.Equal(t, StatusError, p.Status())
		assert.Equal(t, ErrKindDegenerate, p.ErrKind())
		assert.Equal(t, shape, p.Geometry(), "error must keep the previous geometry")
		require.NotNil(t, p.Err())
		assert.Equal(t, ErrCodeDegenerate, p.Err().Code)
	})

	t.Run("clean clears the error", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		p := appendPoint(t, log, 0, 0)
		log.SetError(p.ID(), NewDegenerateGeometryError(p.ID(), "zero extent"))

		log.SetClean(p.ID(), geom.Dot{P: geom.Pt(1, 1)})

		assert.Equal(t, StatusClean, p.Status())
		assert.Nil(t, p.Err())
		assert.Empty(t, p.ErrKind())
	})

	t.Run("mark dirty ignores tombstones", func(t *testing.T) {
		t.Parallel()
		log := NewLog()
		p := appendPoint(t, log, 0, 0)
		log.SetClean(p.ID(), geom.Dot{P: geom.Pt(0, 0)})
		log.Tombstone(p.ID())

		log.MarkDirty(p.ID())

		assert.Equal(t, StatusClean, p.Status())
	})
}

func TestStepErrorChain(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	err := NewExpressionError(4, inner)

	assert.Equal(t, "step #4: expression evaluation failed", err.Error())
	assert.ErrorIs(t, err, inner)

	withSuggestion := err.WithSuggestion("simplify the expression")
	assert.Equal(t, "simplify the expression", withSuggestion.Suggestion)
	assert.NotEqual(t, err.Suggestion, withSuggestion.Suggestion, "With* must clone")

	formatted := err.Format()
	assert.Contains(t, formatted, "[EXPRESSION_ERROR]")
	assert.Contains(t, formatted, "Step: #4")
	assert.Contains(t, formatted, "Cause: boom")
}
