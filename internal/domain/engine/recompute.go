package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/felixgeelhaar/linework/internal/domain/expr"
	"github.com/felixgeelhaar/linework/internal/domain/figure"
	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

// degenEps is the extent below which constructed geometry counts as
// collapsed.
const degenEps = 1e-9

// pass is one recomputation run over a dirty set. Steps are processed in
// ascending id order, which the backward-only reference invariant makes a
// valid topological order; expansions may grow the set mid-pass with
// freshly minted tail ids. A failing step marks itself Error and never
// blocks independent branches.
type pass struct {
	log       *figure.Log
	evaluator expr.Evaluator
	dirty     map[figure.StepID]bool
	events    []figure.Event
}

func newPass(log *figure.Log, evaluator expr.Evaluator) *pass {
	return &pass{
		log:       log,
		evaluator: evaluator,
		dirty:     make(map[figure.StepID]bool),
	}
}

// seed marks a step and its live transitive dependents dirty.
func (p *pass) seed(id figure.StepID) {
	if step, ok := p.log.Get(id); ok && !step.IsTombstone() {
		p.dirty[id] = true
	}
	for _, dep := range p.log.Graph().TransitiveDependents(id) {
		if step, ok := p.log.Get(dep); ok && !step.IsTombstone() {
			p.dirty[dep] = true
		}
	}
}

// run drains the dirty set in ascending id order.
func (p *pass) run(ctx context.Context) {
	for len(p.dirty) > 0 {
		id := p.next()
		delete(p.dirty, id)
		p.recomputeStep(ctx, id)
	}
}

func (p *pass) next() figure.StepID {
	var min figure.StepID
	for id := range p.dirty {
		if min == figure.NoStep || id < min {
			min = id
		}
	}
	return min
}

func (p *pass) recomputeStep(ctx context.Context, id figure.StepID) {
	step, ok := p.log.Get(id)
	if !ok || step.IsTombstone() {
		return
	}
	p.log.MarkDirty(id)

	var (
		shape   geom.Shape
		stepErr *figure.StepError
	)
	switch {
	case step.Kind().IsExpansion():
		stepErr = p.applyExpansion(ctx, step)
	case step.Kind().IsAdjustment():
		shape, stepErr = p.computeAdjustment(ctx, step)
	default:
		shape, stepErr = p.computeDrawing(ctx, step)
	}

	if stepErr != nil {
		p.log.SetError(id, stepErr)
		p.events = append(p.events, figure.NewStatusEvent(id, figure.StatusError, stepErr.Kind))
		return
	}
	p.log.SetClean(id, shape)
	p.events = append(p.events, figure.NewStatusEvent(id, figure.StatusClean, ""))
}

// geometryOf returns a step's current geometry, nil when the step is
// missing or has never computed successfully.
func (p *pass) geometryOf(id figure.StepID) geom.Shape {
	step, ok := p.log.Get(id)
	if !ok {
		return nil
	}
	return step.Geometry()
}

// refPoint resolves one reference to a point on its target's current
// geometry.
func (p *pass) refPoint(owner *figure.Step, ref figure.Reference) (geom.Point, *figure.StepError) {
	var other geom.Shape
	if ref.Selector.Kind == figure.SelectIntersection {
		other = p.geometryOf(ref.Selector.Other)
	}
	pt, err := resolveSelector(p.geometryOf(ref.Step), ref.Selector, other)
	if err != nil {
		return geom.Point{}, figure.NewDanglingSelectorError(owner.ID(), ref).WithUnderlying(err)
	}
	return pt, nil
}

// bindings builds the named inputs an expression sees: each input slot's
// reference resolved to a point.
func (p *pass) bindings(owner *figure.Step, inputs []figure.ExprInput) (*expr.Bindings, *figure.StepError) {
	bindings := expr.NewBindings()
	refs := owner.References()
	for _, input := range inputs {
		pt, stepErr := p.refPoint(owner, refs[input.Slot])
		if stepErr != nil {
			return nil, stepErr
		}
		bindings.SetPoint(input.Name, pt)
	}
	return bindings, nil
}

func (p *pass) eval(ctx context.Context, owner *figure.Step, arg *figure.ExprArg) (expr.Value, *figure.StepError) {
	if p.evaluator == nil {
		return expr.Value{}, figure.NewExpressionError(owner.ID(), fmt.Errorf("no evaluator configured"))
	}
	bindings, stepErr := p.bindings(owner, arg.Inputs)
	if stepErr != nil {
		return expr.Value{}, stepErr
	}
	value, err := p.evaluator.Eval(ctx, arg.Program, bindings)
	if err != nil {
		return expr.Value{}, figure.NewExpressionError(owner.ID(), err)
	}
	return value, nil
}

// pointArg resolves a point-valued argument.
func (p *pass) pointArg(ctx context.Context, owner *figure.Step, arg figure.PointArg) (geom.Point, *figure.StepError) {
	switch arg.Source {
	case figure.ArgLiteral:
		return arg.Literal, nil
	case figure.ArgReference:
		return p.refPoint(owner, owner.References()[arg.Slot])
	case figure.ArgExpression:
		value, stepErr := p.eval(ctx, owner, arg.Expr)
		if stepErr != nil {
			return geom.Point{}, stepErr
		}
		pt, err := value.AsPoint()
		if err != nil {
			return geom.Point{}, figure.NewExpressionError(owner.ID(), err)
		}
		return pt, nil
	default:
		return geom.Point{}, figure.NewInvalidParamsError(owner.ID(), fmt.Errorf("unknown argument source %q", arg.Source))
	}
}

// scalarArg resolves a number-valued argument.
func (p *pass) scalarArg(ctx context.Context, owner *figure.Step, arg figure.ScalarArg) (float64, *figure.StepError) {
	switch arg.Source {
	case figure.ArgLiteral:
		return arg.Literal, nil
	case figure.ArgExpression:
		value, stepErr := p.eval(ctx, owner, arg.Expr)
		if stepErr != nil {
			return 0, stepErr
		}
		num, err := value.AsNum()
		if err != nil {
			return 0, figure.NewExpressionError(owner.ID(), err)
		}
		return num, nil
	default:
		return 0, figure.NewInvalidParamsError(owner.ID(), fmt.Errorf("unknown argument source %q", arg.Source))
	}
}

// computeDrawing constructs geometry for a drawing step from its resolved
// arguments.
func (p *pass) computeDrawing(ctx context.Context, step *figure.Step) (geom.Shape, *figure.StepError) {
	switch params := step.Params().(type) {
	case figure.PointParams:
		at, stepErr := p.pointArg(ctx, step, params.At)
		if stepErr != nil {
			return nil, stepErr
		}
		return geom.Dot{P: at}, nil

	case figure.LineParams:
		start, stepErr := p.pointArg(ctx, step, params.Start)
		if stepErr != nil {
			return nil, stepErr
		}
		end, stepErr := p.pointArg(ctx, step, params.End)
		if stepErr != nil {
			return nil, stepErr
		}
		if start.Near(end, degenEps) {
			return nil, figure.NewDegenerateGeometryError(step.ID(), "zero-length line")
		}
		return geom.Line{Start: start, End: end}, nil

	case figure.PathParams:
		vertices := make([]geom.Point, len(params.Vertices))
		for i, arg := range params.Vertices {
			pt, stepErr := p.pointArg(ctx, step, arg)
			if stepErr != nil {
				return nil, stepErr
			}
			vertices[i] = pt
		}
		poly := geom.Polyline{Vertices: vertices, Closed: params.Closed}
		if poly.Degenerate() {
			return nil, figure.NewDegenerateGeometryError(step.ID(), "path needs two distinct vertices")
		}
		return poly, nil

	case figure.RectParams:
		return p.computeRect(ctx, step, params)

	case figure.CircleParams:
		return p.computeCircle(ctx, step, params)

	case figure.TextParams:
		at, stepErr := p.pointArg(ctx, step, params.At)
		if stepErr != nil {
			return nil, stepErr
		}
		size, stepErr := p.scalarArg(ctx, step, params.Size)
		if stepErr != nil {
			return nil, stepErr
		}
		label := geom.Label{At: at, Content: params.Content, Size: size}
		if label.Degenerate() {
			return nil, figure.NewDegenerateGeometryError(step.ID(), "negative text size")
		}
		return label, nil

	case figure.PictureParams:
		at, stepErr := p.pointArg(ctx, step, params.At)
		if stepErr != nil {
			return nil, stepErr
		}
		width, stepErr := p.scalarArg(ctx, step, params.Width)
		if stepErr != nil {
			return nil, stepErr
		}
		height, stepErr := p.scalarArg(ctx, step, params.Height)
		if stepErr != nil {
			return nil, stepErr
		}
		image := geom.Image{At: at, Width: width, Height: height, Source: params.Source}
		if image.Degenerate() {
			return nil, figure.NewDegenerateGeometryError(step.ID(), "picture needs positive extent")
		}
		return image, nil

	default:
		return nil, figure.NewInvalidParamsError(step.ID(), fmt.Errorf("unhandled kind %s", step.Kind()))
	}
}

func (p *pass) computeRect(ctx context.Context, step *figure.Step, params figure.RectParams) (geom.Shape, *figure.StepError) {
	var c0, c2 geom.Point
	switch params.Mode {
	case figure.RectCorners:
		corner, stepErr := p.pointArg(ctx, step, params.Corner)
		if stepErr != nil {
			return nil, stepErr
		}
		opposite, stepErr := p.pointArg(ctx, step, params.Opposite)
		if stepErr != nil {
			return nil, stepErr
		}
		c0, c2 = corner, opposite

	case figure.RectCenter:
		center, stepErr := p.pointArg(ctx, step, params.Center)
		if stepErr != nil {
			return nil, stepErr
		}
		width, stepErr := p.scalarArg(ctx, step, params.Width)
		if stepErr != nil {
			return nil, stepErr
		}
		height, stepErr := p.scalarArg(ctx, step, params.Height)
		if stepErr != nil {
			return nil, stepErr
		}
		c0 = geom.Pt(center.X-width/2, center.Y-height/2)
		c2 = geom.Pt(center.X+width/2, center.Y+height/2)

	default:
		return nil, figure.NewInvalidParamsError(step.ID(), fmt.Errorf("unknown rect mode %q", params.Mode))
	}

	if math.Abs(c2.X-c0.X) < degenEps || math.Abs(c2.Y-c0.Y) < degenEps {
		return nil, figure.NewDegenerateGeometryError(step.ID(), "coincident rect corners")
	}
	return geom.Polyline{
		Vertices: []geom.Point{c0, geom.Pt(c2.X, c0.Y), c2, geom.Pt(c0.X, c2.Y)},
		Closed:   true,
	}, nil
}

func (p *pass) computeCircle(ctx context.Context, step *figure.Step, params figure.CircleParams) (geom.Shape, *figure.StepError) {
	switch params.Mode {
	case figure.CircleCenterRadius:
		center, stepErr := p.pointArg(ctx, step, params.Center)
		if stepErr != nil {
			return nil, stepErr
		}
		radius, stepErr := p.scalarArg(ctx, step, params.Radius)
		if stepErr != nil {
			return nil, stepErr
		}
		if radius < degenEps {
			return nil, figure.NewDegenerateGeometryError(step.ID(), "zero-radius circle")
		}
		return geom.Circle{CenterPoint: center, Radius: radius}, nil

	case figure.CircleThreePoint:
		a, stepErr := p.pointArg(ctx, step, params.A)
		if stepErr != nil {
			return nil, stepErr
		}
		b, stepErr := p.pointArg(ctx, step, params.B)
		if stepErr != nil {
			return nil, stepErr
		}
		c, stepErr := p.pointArg(ctx, step, params.C)
		if stepErr != nil {
			return nil, stepErr
		}
		circle, ok := circumcircle(a, b, c)
		if !ok {
			return nil, figure.NewDegenerateGeometryError(step.ID(), "three-point circle needs non-collinear points")
		}
		return circle, nil

	default:
		return nil, figure.NewInvalidParamsError(step.ID(), fmt.Errorf("unknown circle mode %q", params.Mode))
	}
}

// circumcircle fits the circle through three points. Collinear points
// have no finite fit.
func circumcircle(a, b, c geom.Point) (geom.Circle, bool) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < degenEps {
		return geom.Circle{}, false
	}
	aa := a.X*a.X + a.Y*a.Y
	bb := b.X*b.X + b.Y*b.Y
	cc := c.X*c.X + c.Y*c.Y
	center := geom.Pt(
		(aa*(b.Y-c.Y)+bb*(c.Y-a.Y)+cc*(a.Y-b.Y))/d,
		(aa*(c.X-b.X)+bb*(a.X-c.X)+cc*(b.X-a.X))/d,
	)
	return geom.Circle{CenterPoint: center, Radius: center.Distance(a)}, true
}

// computeAdjustment applies an affine transform to the target reference's
// current geometry, deriving new geometry without touching the source.
// Scale and rotate default their pivot to the target's canonical center:
// the recognized shape's center when a classification exists, the raw
// geometry's otherwise.
func (p *pass) computeAdjustment(ctx context.Context, step *figure.Step) (geom.Shape, *figure.StepError) {
	var (
		targetSlot int
		detail     string
		transform  geom.Affine
	)

	switch params := step.Params().(type) {
	case figure.MoveParams:
		targetSlot = params.Target
		dx, stepErr := p.scalarArg(ctx, step, params.DX)
		if stepErr != nil {
			return nil, stepErr
		}
		dy, stepErr := p.scalarArg(ctx, step, params.DY)
		if stepErr != nil {
			return nil, stepErr
		}
		transform = geom.Translate(geom.Vec2{X: dx, Y: dy})
		detail = "move collapsed the geometry"

	case figure.ScaleParams:
		targetSlot = params.Target
		factor, stepErr := p.scalarArg(ctx, step, params.Factor)
		if stepErr != nil {
			return nil, stepErr
		}
		pivot, stepErr := p.pivotPoint(ctx, step, params.Pivot, targetSlot)
		if stepErr != nil {
			return nil, stepErr
		}
		transform = geom.Scale(factor).About(pivot)
		detail = "scale collapsed the geometry"

	case figure.RotateParams:
		targetSlot = params.Target
		angle, stepErr := p.scalarArg(ctx, step, params.Angle)
		if stepErr != nil {
			return nil, stepErr
		}
		pivot, stepErr := p.pivotPoint(ctx, step, params.Pivot, targetSlot)
		if stepErr != nil {
			return nil, stepErr
		}
		transform = geom.Rotate(angle).About(pivot)
		detail = "rotation collapsed the geometry"

	default:
		return nil, figure.NewInvalidParamsError(step.ID(), fmt.Errorf("unhandled kind %s", step.Kind()))
	}

	ref := step.References()[targetSlot]
	source := p.geometryOf(ref.Step)
	if source == nil {
		return nil, figure.NewDanglingSelectorError(step.ID(), ref).
			WithUnderlying(fmt.Errorf("%w: target has no geometry", errSelectorGone))
	}

	result := source.Transform(transform)
	if result.Degenerate() {
		return nil, figure.NewDegenerateGeometryError(step.ID(), detail)
	}
	return result, nil
}

// pivotPoint resolves an explicit pivot argument, falling back to the
// target's canonical center.
func (p *pass) pivotPoint(ctx context.Context, step *figure.Step, pivot *figure.PointArg, targetSlot int) (geom.Point, *figure.StepError) {
	if pivot != nil {
		return p.pointArg(ctx, step, *pivot)
	}

	ref := step.References()[targetSlot]
	target, ok := p.log.Get(ref.Step)
	if !ok || target.Geometry() == nil {
		return geom.Point{}, figure.NewDanglingSelectorError(step.ID(), ref).
			WithUnderlying(fmt.Errorf("%w: target has no geometry", errSelectorGone))
	}
	if match := target.Recognized(); match != nil {
		return match.Center, nil
	}
	return target.Geometry().Center(), nil
}
