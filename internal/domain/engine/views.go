package engine

import (
	"github.com/felixgeelhaar/linework/internal/domain/figure"
	"github.com/felixgeelhaar/linework/internal/domain/geom"
	"github.com/felixgeelhaar/linework/internal/domain/recognize"
)

// StepView is an immutable snapshot of one step, safe to hold after the
// engine's read lock is released. Shapes and matches are value types; the
// reference list is copied.
type StepView struct {
	ID         figure.StepID
	Kind       figure.Kind
	Params     figure.Params
	References []figure.Reference
	Geometry   geom.Shape
	Status     figure.Status
	ErrKind    figure.ErrorKind
	Err        *figure.StepError
	Origin     *figure.ExpansionOrigin
	Recognized *recognize.Match
	Tombstone  bool
}

func makeView(step *figure.Step) StepView {
	view := StepView{
		ID:        step.ID(),
		Kind:      step.Kind(),
		Params:    step.Params(),
		Geometry:  step.Geometry(),
		Status:    step.Status(),
		ErrKind:   step.ErrKind(),
		Err:       step.Err(),
		Tombstone: step.IsTombstone(),
	}
	if refs := step.References(); len(refs) > 0 {
		view.References = make([]figure.Reference, len(refs))
		copy(view.References, refs)
	}
	if origin := step.Origin(); origin != nil {
		o := *origin
		view.Origin = &o
	}
	if match := step.Recognized(); match != nil {
		m := *match
		view.Recognized = &m
	}
	return view
}

func makeViews(steps []*figure.Step) []StepView {
	views := make([]StepView, len(steps))
	for i, step := range steps {
		views[i] = makeView(step)
	}
	return views
}
