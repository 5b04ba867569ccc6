package figure

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

// SlotKey identifies one expansion slot: which iteration of which
// template step an instance fills.
type SlotKey struct {
	Iteration int
	Template  StepID
}

// Expansion records what a loop or duplicate step currently has
// instantiated. Slot keys are structural, so a re-expansion can diff the
// new shape against the old one and keep surviving instance ids stable.
type Expansion struct {
	Slots map[SlotKey]StepID
}

// Instances returns the instantiated ids in ascending order.
func (e *Expansion) Instances() []StepID {
	if e == nil {
		return nil
	}
	out := make([]StepID, 0, len(e.Slots))
	for _, id := range e.Slots {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ExpansionPlan is the structural diff between an expansion step's
// current instances and the ones its params now call for. Keys lists the
// full new slot set in instantiation order (iteration-major, template
// ascending); fresh slots mint tail ids in exactly that order, so
// instance references stay backward.
type ExpansionPlan struct {
	Owner     StepID
	First     StepID
	Last      StepID
	Count     int
	Keys      []SlotKey
	Surviving map[SlotKey]StepID
	Fresh     []SlotKey
	Vanished  []StepID
}

// expansionShape normalizes loop and duplicate params to a template range
// plus iteration count. Duplicate is a single iteration over a one-step
// range.
func expansionShape(owner StepID, params Params, refs []Reference) (first, last StepID, count int, err error) {
	switch p := params.(type) {
	case LoopParams:
		first, last = p.TemplateRange(owner)
		return first, last, p.Count, nil
	case DuplicateParams:
		target := refs[p.Target].Step
		return target, target, 1, nil
	default:
		return 0, 0, 0, fmt.Errorf("%s params do not expand", params.Kind())
	}
}

// PlanExpansion structurally diffs what an expansion step's params call
// for against its current instances. It fails with ExpansionConflict when
// a vanished instance still has dependents outside the expansion, or when
// a surviving instance would have to reference an instance minted after
// it. The log is not modified.
func (l *Log) PlanExpansion(owner StepID, params Params, refs []Reference) (*ExpansionPlan, error) {
	first, last, count, err := expansionShape(owner, params, refs)
	if err != nil {
		return nil, NewInvalidParamsError(owner, err)
	}

	var old map[SlotKey]StepID
	if step, ok := l.Get(owner); ok && step.expansion != nil {
		old = step.expansion.Slots
	}

	plan := &ExpansionPlan{
		Owner:     owner,
		First:     first,
		Last:      last,
		Count:     count,
		Surviving: make(map[SlotKey]StepID),
	}

	newKeys := make(map[SlotKey]bool)
	for i := 1; i <= count; i++ {
		for t := first; t <= last; t++ {
			key := SlotKey{Iteration: i, Template: t}
			plan.Keys = append(plan.Keys, key)
			newKeys[key] = true
			if id, ok := old[key]; ok {
				plan.Surviving[key] = id
			} else {
				plan.Fresh = append(plan.Fresh, key)
			}
		}
	}

	// A surviving instance may only reference slots that already have
	// ids. A template dependency whose slot is fresh would be minted at
	// the tail, after the survivor.
	for key, id := range plan.Surviving {
		for _, dep := range l.graph.DependsOn(key.Template) {
			if dep < first || dep > last {
				continue
			}
			depKey := SlotKey{Iteration: key.Iteration, Template: dep}
			if _, survived := old[depKey]; !survived {
				return nil, NewExpansionConflictError(owner,
					fmt.Sprintf("instance %s would reference a slot minted after it", id))
			}
		}
	}

	// Vanished instances must not leave dangling dependents. Dependents
	// that are themselves instances of this expansion are fine: they are
	// rewritten or vanish in the same pass.
	vanished := make(map[StepID]bool)
	for key, id := range old {
		if !newKeys[key] {
			vanished[id] = true
			plan.Vanished = append(plan.Vanished, id)
		}
	}
	sort.Slice(plan.Vanished, func(i, j int) bool { return plan.Vanished[i] < plan.Vanished[j] })

	for _, id := range plan.Vanished {
		for _, dependent := range l.graph.Dependents(id) {
			step, ok := l.Get(dependent)
			if ok && step.origin != nil && step.origin.Owner == owner {
				continue
			}
			return nil, NewExpansionConflictError(owner,
				fmt.Sprintf("step %s still references instance %s", dependent, id))
		}
	}

	return plan, nil
}

// ShiftParams returns a copy of params with every literal point argument
// translated. Reference and expression arguments are untouched: their
// values follow the remapped reference list.
func ShiftParams(params Params, by geom.Vec2) Params {
	shift := func(a PointArg) PointArg {
		if a.Source == ArgLiteral {
			a.Literal = a.Literal.Add(by)
		}
		return a
	}
	shiftOpt := func(a *PointArg) *PointArg {
		if a == nil {
			return nil
		}
		shifted := shift(*a)
		return &shifted
	}

	switch p := params.(type) {
	case PointParams:
		p.At = shift(p.At)
		return p
	case LineParams:
		p.Start = shift(p.Start)
		p.End = shift(p.End)
		return p
	case PathParams:
		vertices := make([]PointArg, len(p.Vertices))
		for i, v := range p.Vertices {
			vertices[i] = shift(v)
		}
		p.Vertices = vertices
		return p
	case RectParams:
		p.Corner = shift(p.Corner)
		p.Opposite = shift(p.Opposite)
		p.Center = shift(p.Center)
		return p
	case CircleParams:
		p.Center = shift(p.Center)
		p.A = shift(p.A)
		p.B = shift(p.B)
		p.C = shift(p.C)
		return p
	case TextParams:
		p.At = shift(p.At)
		return p
	case PictureParams:
		p.At = shift(p.At)
		return p
	case MoveParams:
		return p
	case ScaleParams:
		p.Pivot = shiftOpt(p.Pivot)
		return p
	case RotateParams:
		p.Pivot = shiftOpt(p.Pivot)
		return p
	default:
		return params
	}
}

// RemapRefs returns a copy of refs with every id found in the mapping
// replaced, including intersection partners.
func RemapRefs(refs []Reference, mapping map[StepID]StepID) []Reference {
	if len(refs) == 0 {
		return nil
	}
	out := make([]Reference, len(refs))
	for i, ref := range refs {
		if mapped, ok := mapping[ref.Step]; ok {
			ref.Step = mapped
		}
		if other, ok := mapping[ref.Selector.Other]; ok {
			ref.Selector.Other = other
		}
		out[i] = ref
	}
	return out
}

// Expansion returns the step's current instantiation record, or nil.
func (s *Step) Expansion() *Expansion { return s.expansion }

// SetExpansion installs an expansion step's instantiation record.
func (l *Log) SetExpansion(id StepID, exp *Expansion) {
	if step, ok := l.Get(id); ok {
		step.expansion = exp
	}
}
