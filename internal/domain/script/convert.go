package script

import (
	"fmt"

	"github.com/felixgeelhaar/linework/internal/domain/expr"
	"github.com/felixgeelhaar/linework/internal/domain/figure"
	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

// Op is one decoded append, ready for the engine.
type Op struct {
	Kind   figure.Kind
	Params figure.Params
	Refs   []figure.Reference
}

var selectorKinds = map[string]figure.SelectorKind{
	string(figure.SelectWhole):        figure.SelectWhole,
	string(figure.SelectAnchor):       figure.SelectAnchor,
	string(figure.SelectVertex):       figure.SelectVertex,
	string(figure.SelectCenter):       figure.SelectCenter,
	string(figure.SelectIntersection): figure.SelectIntersection,
}

// Ops decodes every step into an engine-ready operation. programs maps
// the ids of the document's programs section to their loaded form.
func (d *Document) Ops(programs map[string]*expr.Program) ([]Op, error) {
	ops := make([]Op, 0, len(d.Steps))
	for i, step := range d.Steps {
		op, err := decodeStep(step, programs)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d (%s): %w", ErrScriptInvalid, i+1, step.Kind, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func decodeStep(step StepSpec, programs map[string]*expr.Program) (Op, error) {
	refs, err := decodeRefs(step.Refs)
	if err != nil {
		return Op{}, err
	}

	dec := decoder{programs: programs}
	var params figure.Params

	switch figure.Kind(step.Kind) {
	case figure.KindPoint:
		params = figure.PointParams{At: dec.point("at", step.At)}

	case figure.KindLine:
		params = figure.LineParams{
			Start: dec.point("start", step.Start),
			End:   dec.point("end", step.End),
		}

	case figure.KindPath:
		vertices := make([]figure.PointArg, len(step.Vertices))
		for i := range step.Vertices {
			vertices[i] = dec.point(fmt.Sprintf("vertices[%d]", i), &step.Vertices[i])
		}
		params = figure.PathParams{Vertices: vertices, Closed: step.Closed}

	case figure.KindRect:
		p := figure.RectParams{Mode: figure.RectMode(step.Mode)}
		switch p.Mode {
		case figure.RectCorners:
			p.Corner = dec.point("corner", step.Corner)
			p.Opposite = dec.point("opposite", step.Opposite)
		case figure.RectCenter:
			p.Center = dec.point("center", step.Center)
			p.Width = dec.scalar("width", step.Width)
			p.Height = dec.scalar("height", step.Height)
		default:
			return Op{}, fmt.Errorf("unknown rect mode %q", step.Mode)
		}
		params = p

	case figure.KindCircle:
		p := figure.CircleParams{Mode: figure.CircleMode(step.Mode)}
		switch p.Mode {
		case figure.CircleCenterRadius:
			p.Center = dec.point("center", step.Center)
			p.Radius = dec.scalar("radius", step.Radius)
		case figure.CircleThreePoint:
			p.A = dec.point("a", step.A)
			p.B = dec.point("b", step.B)
			p.C = dec.point("c", step.C)
		default:
			return Op{}, fmt.Errorf("unknown circle mode %q", step.Mode)
		}
		params = p

	case figure.KindText:
		params = figure.TextParams{
			At:      dec.point("at", step.At),
			Content: step.Content,
			Size:    dec.scalar("size", step.Size),
		}

	case figure.KindPicture:
		params = figure.PictureParams{
			At:     dec.point("at", step.At),
			Source: step.Source,
			Width:  dec.scalar("width", step.Width),
			Height: dec.scalar("height", step.Height),
		}

	case figure.KindMove:
		params = figure.MoveParams{
			Target: dec.target(step.Target),
			DX:     dec.scalar("dx", step.DX),
			DY:     dec.scalar("dy", step.DY),
		}

	case figure.KindScale:
		params = figure.ScaleParams{
			Target: dec.target(step.Target),
			Factor: dec.scalar("factor", step.Factor),
			Pivot:  dec.optionalPoint("pivot", step.Pivot),
		}

	case figure.KindRotate:
		params = figure.RotateParams{
			Target: dec.target(step.Target),
			Angle:  dec.scalar("angle", step.Angle),
			Pivot:  dec.optionalPoint("pivot", step.Pivot),
		}

	case figure.KindDuplicate:
		params = figure.DuplicateParams{
			Target: dec.target(step.Target),
			DX:     dec.scalar("dx", step.DX),
			DY:     dec.scalar("dy", step.DY),
		}

	case figure.KindLoop:
		if len(refs) != 0 {
			return Op{}, fmt.Errorf("loop references are derived, not authored")
		}
		params = figure.LoopParams{
			TemplateLen: step.TemplateLen,
			Count:       step.Count,
			DX:          dec.scalar("dx", step.DX),
			DY:          dec.scalar("dy", step.DY),
		}

	default:
		return Op{}, fmt.Errorf("unknown kind %q", step.Kind)
	}

	if dec.err != nil {
		return Op{}, dec.err
	}
	return Op{Kind: figure.Kind(step.Kind), Params: params, Refs: refs}, nil
}

func decodeRefs(specs []RefSpec) ([]figure.Reference, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	refs := make([]figure.Reference, len(specs))
	for i, spec := range specs {
		kind, ok := selectorKinds[spec.Selector]
		if !ok {
			return nil, fmt.Errorf("refs[%d]: unknown selector %q", i, spec.Selector)
		}
		refs[i] = figure.Reference{
			Step: figure.StepID(spec.Step),
			Selector: figure.Selector{
				Kind:  kind,
				Index: spec.Index,
				Other: figure.StepID(spec.Other),
			},
		}
	}
	return refs, nil
}

// decoder accumulates the first argument decoding error so kind handlers
// can assemble params without threading errors through every field.
type decoder struct {
	programs map[string]*expr.Program
	err      error
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *decoder) point(field string, spec *PointArgSpec) figure.PointArg {
	if spec == nil {
		d.fail(fmt.Errorf("missing %s", field))
		return figure.PointArg{}
	}
	set := 0
	for _, present := range []bool{spec.At != nil, spec.Ref != nil, spec.Expr != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		d.fail(fmt.Errorf("%s: exactly one of at, ref, expr must be set", field))
		return figure.PointArg{}
	}
	switch {
	case spec.At != nil:
		return figure.LiteralPoint(geom.Pt(spec.At.X, spec.At.Y))
	case spec.Ref != nil:
		return figure.RefPoint(*spec.Ref)
	default:
		arg, err := d.exprArg(spec.Expr)
		if err != nil {
			d.fail(fmt.Errorf("%s: %w", field, err))
			return figure.PointArg{}
		}
		return figure.ExprPoint(arg)
	}
}

func (d *decoder) optionalPoint(field string, spec *PointArgSpec) *figure.PointArg {
	if spec == nil {
		return nil
	}
	arg := d.point(field, spec)
	return &arg
}

func (d *decoder) scalar(field string, spec *ScalarArgSpec) figure.ScalarArg {
	if spec == nil {
		d.fail(fmt.Errorf("missing %s", field))
		return figure.ScalarArg{}
	}
	if (spec.Value != nil) == (spec.Expr != nil) {
		d.fail(fmt.Errorf("%s: exactly one of value, expr must be set", field))
		return figure.ScalarArg{}
	}
	if spec.Value != nil {
		return figure.LiteralScalar(*spec.Value)
	}
	arg, err := d.exprArg(spec.Expr)
	if err != nil {
		d.fail(fmt.Errorf("%s: %w", field, err))
		return figure.ScalarArg{}
	}
	return figure.ExprScalar(arg)
}

func (d *decoder) target(spec *int) int {
	if spec == nil {
		d.fail(fmt.Errorf("missing target"))
		return 0
	}
	return *spec
}

func (d *decoder) exprArg(spec *ExprSpec) (*figure.ExprArg, error) {
	program, ok := d.programs[spec.Program]
	if !ok {
		return nil, fmt.Errorf("program %q is not in the programs section", spec.Program)
	}
	arg := &figure.ExprArg{Program: program}
	for _, input := range spec.Inputs {
		arg.Inputs = append(arg.Inputs, figure.ExprInput{Name: input.Name, Slot: input.Ref})
	}
	return arg, nil
}

// FromOps encodes operations back into a document, collecting the
// expression programs they use into the programs section. Module paths
// default to "<id>.wasm" next to the script.
func FromOps(name string, ops []Op) (*Document, error) {
	doc := &Document{
		Version: SupportedMajor,
		Name:    name,
		Steps:   make([]StepSpec, 0, len(ops)),
	}
	enc := encoder{seen: make(map[string]bool)}

	for i, op := range ops {
		step, err := enc.encodeStep(op)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d (%s): %w", ErrScriptInvalid, i+1, op.Kind, err)
		}
		doc.Steps = append(doc.Steps, step)
	}
	doc.Programs = enc.programs
	return doc, nil
}

type encoder struct {
	programs []ProgramSpec
	seen     map[string]bool
}

func (e *encoder) encodeStep(op Op) (StepSpec, error) {
	step := StepSpec{Kind: string(op.Kind), Refs: encodeRefs(op.Refs)}

	switch p := op.Params.(type) {
	case figure.PointParams:
		step.At = e.point(p.At)
	case figure.LineParams:
		step.Start = e.point(p.Start)
		step.End = e.point(p.End)
	case figure.PathParams:
		step.Vertices = make([]PointArgSpec, len(p.Vertices))
		for i, v := range p.Vertices {
			step.Vertices[i] = *e.point(v)
		}
		step.Closed = p.Closed
	case figure.RectParams:
		step.Mode = string(p.Mode)
		switch p.Mode {
		case figure.RectCorners:
			step.Corner = e.point(p.Corner)
			step.Opposite = e.point(p.Opposite)
		case figure.RectCenter:
			step.Center = e.point(p.Center)
			step.Width = e.scalar(p.Width)
			step.Height = e.scalar(p.Height)
		}
	case figure.CircleParams:
		step.Mode = string(p.Mode)
		switch p.Mode {
		case figure.CircleCenterRadius:
			step.Center = e.point(p.Center)
			step.Radius = e.scalar(p.Radius)
		case figure.CircleThreePoint:
			step.A = e.point(p.A)
			step.B = e.point(p.B)
			step.C = e.point(p.C)
		}
	case figure.TextParams:
		step.At = e.point(p.At)
		step.Content = p.Content
		step.Size = e.scalar(p.Size)
	case figure.PictureParams:
		step.At = e.point(p.At)
		step.Source = p.Source
		step.Width = e.scalar(p.Width)
		step.Height = e.scalar(p.Height)
	case figure.MoveParams:
		step.Target = intPtr(p.Target)
		step.DX = e.scalar(p.DX)
		step.DY = e.scalar(p.DY)
	case figure.ScaleParams:
		step.Target = intPtr(p.Target)
		step.Factor = e.scalar(p.Factor)
		if p.Pivot != nil {
			step.Pivot = e.point(*p.Pivot)
		}
	case figure.RotateParams:
		step.Target = intPtr(p.Target)
		step.Angle = e.scalar(p.Angle)
		if p.Pivot != nil {
			step.Pivot = e.point(*p.Pivot)
		}
	case figure.DuplicateParams:
		step.Target = intPtr(p.Target)
		step.DX = e.scalar(p.DX)
		step.DY = e.scalar(p.DY)
	case figure.LoopParams:
		step.Refs = nil
		step.TemplateLen = p.TemplateLen
		step.Count = p.Count
		step.DX = e.scalar(p.DX)
		step.DY = e.scalar(p.DY)
	default:
		return StepSpec{}, fmt.Errorf("unhandled params %T", op.Params)
	}

	return step, nil
}

func encodeRefs(refs []figure.Reference) []RefSpec {
	if len(refs) == 0 {
		return nil
	}
	specs := make([]RefSpec, len(refs))
	for i, ref := range refs {
		specs[i] = RefSpec{
			Step:     int64(ref.Step),
			Selector: string(ref.Selector.Kind),
			Index:    ref.Selector.Index,
			Other:    int64(ref.Selector.Other),
		}
	}
	return specs
}

func (e *encoder) point(arg figure.PointArg) *PointArgSpec {
	switch arg.Source {
	case figure.ArgLiteral:
		return &PointArgSpec{At: &PointSpec{X: arg.Literal.X, Y: arg.Literal.Y}}
	case figure.ArgReference:
		slot := arg.Slot
		return &PointArgSpec{Ref: &slot}
	case figure.ArgExpression:
		return &PointArgSpec{Expr: e.expr(arg.Expr)}
	default:
		return nil
	}
}

func (e *encoder) scalar(arg figure.ScalarArg) *ScalarArgSpec {
	switch arg.Source {
	case figure.ArgLiteral:
		value := arg.Literal
		return &ScalarArgSpec{Value: &value}
	case figure.ArgExpression:
		return &ScalarArgSpec{Expr: e.expr(arg.Expr)}
	default:
		return nil
	}
}

func (e *encoder) expr(arg *figure.ExprArg) *ExprSpec {
	spec := &ExprSpec{Program: arg.Program.ID}
	for _, input := range arg.Inputs {
		spec.Inputs = append(spec.Inputs, InputSpec{Name: input.Name, Ref: input.Slot})
	}
	if !e.seen[arg.Program.ID] {
		e.seen[arg.Program.ID] = true
		e.programs = append(e.programs, ProgramSpec{
			ID:       arg.Program.ID,
			Source:   arg.Program.Source,
			Module:   arg.Program.ID + ".wasm",
			Checksum: arg.Program.Checksum,
		})
	}
	return spec
}

func intPtr(v int) *int { return &v }
