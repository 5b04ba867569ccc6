package figure

import (
	"fmt"
	"reflect"

	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

// Log is the ordered record store of construction steps. It owns id
// assignment, reference validation and the dependency graph; geometry
// derivation is the recomputation engine's job. The log itself is not
// goroutine safe: the engine serializes access around it.
type Log struct {
	steps []*Step
	graph *Graph
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{graph: NewGraph()}
}

// Len returns the number of ids ever assigned, tombstones included.
func (l *Log) Len() int { return len(l.steps) }

// LiveLen returns the number of live steps.
func (l *Log) LiveLen() int {
	n := 0
	for _, s := range l.steps {
		if !s.tombstone {
			n++
		}
	}
	return n
}

// NextID returns the id the next append will assign.
func (l *Log) NextID() StepID { return StepID(len(l.steps) + 1) }

// Get retrieves a step by id, tombstones included.
func (l *Log) Get(id StepID) (*Step, bool) {
	if id < 1 || int(id) > len(l.steps) {
		return nil, false
	}
	return l.steps[id-1], true
}

// Graph returns the dependency graph.
func (l *Log) Graph() *Graph { return l.graph }

// Live returns the live steps in id order.
func (l *Log) Live() []*Step {
	out := make([]*Step, 0, len(l.steps))
	for _, s := range l.steps {
		if !s.tombstone {
			out = append(out, s)
		}
	}
	return out
}

// LivePrefix returns the first n live steps in id order. The cursor
// counts positions in the live sequence, so tombstones never widen or
// shift the visible prefix.
func (l *Log) LivePrefix(n int) []*Step {
	if n <= 0 {
		return nil
	}
	out := make([]*Step, 0, n)
	for _, s := range l.steps {
		if s.tombstone {
			continue
		}
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out
}

// Authored returns the live steps a user appended directly, excluding
// expansion instances. Serializing these is enough to rebuild the whole
// log: replay re-runs each expansion deterministically.
func (l *Log) Authored() []*Step {
	out := make([]*Step, 0, len(l.steps))
	for _, s := range l.steps {
		if !s.tombstone && s.origin == nil {
			out = append(out, s)
		}
	}
	return out
}

// Append validates and records a new step, marking it dirty. The caller
// recomputes before exposing the log again. Loop steps derive their
// references from the template range; the provided refs must be empty.
func (l *Log) Append(kind Kind, params Params, refs []Reference) (*Step, error) {
	return l.appendStep(kind, params, refs, nil)
}

// AppendInstance records a step minted by an expansion.
func (l *Log) AppendInstance(kind Kind, params Params, refs []Reference, origin *ExpansionOrigin) (*Step, error) {
	if origin == nil {
		return nil, fmt.Errorf("expansion instance needs an origin")
	}
	return l.appendStep(kind, params, refs, origin)
}

func (l *Log) appendStep(kind Kind, params Params, refs []Reference, origin *ExpansionOrigin) (*Step, error) {
	id := l.NextID()

	refs, err := l.validateStep(id, kind, params, refs)
	if err != nil {
		return nil, err
	}

	step := newStep(id, kind, params, refs, origin)
	l.steps = append(l.steps, step)
	l.graph.Add(id, refs)
	return step, nil
}

// Edit replaces a step's params and references, marking the step dirty.
// It fails with ErrUnchanged when nothing differs, and leaves the log
// untouched on any failure. The caller recomputes the step and its
// transitive dependents before exposing the log again.
func (l *Log) Edit(id StepID, params Params, refs []Reference) error {
	step, normalized, err := l.validateEdit(id, params, refs)
	if err != nil {
		return err
	}

	step.setParams(params, normalized)
	l.graph.Replace(id, normalized)
	step.markDirty()
	return nil
}

// ValidateEdit dry-runs an edit's checks, including the ErrUnchanged
// short-circuit, without mutating anything.
func (l *Log) ValidateEdit(id StepID, params Params, refs []Reference) error {
	_, _, err := l.validateEdit(id, params, refs)
	return err
}

func (l *Log) validateEdit(id StepID, params Params, refs []Reference) (*Step, []Reference, error) {
	step, ok := l.Get(id)
	if !ok || step.tombstone {
		return nil, nil, NewStepNotFoundError(id)
	}
	if params.Kind() != step.kind {
		return nil, nil, NewInvalidParamsError(id,
			fmt.Errorf("params are for %s, step is %s", params.Kind(), step.kind))
	}

	normalized, err := l.validateStep(id, step.kind, params, refs)
	if err != nil {
		return nil, nil, err
	}

	if reflect.DeepEqual(step.params, params) && reflect.DeepEqual(step.refs, normalized) {
		return nil, nil, ErrUnchanged
	}
	return step, normalized, nil
}

// validateStep checks params and references for a step that will carry
// the given id, returning the normalized reference list.
func (l *Log) validateStep(id StepID, kind Kind, params Params, refs []Reference) ([]Reference, error) {
	if !kind.IsValid() {
		return nil, NewInvalidParamsError(id, fmt.Errorf("unknown kind %q", kind))
	}
	if params == nil {
		return nil, NewInvalidParamsError(id, fmt.Errorf("missing params"))
	}
	if params.Kind() != kind {
		return nil, NewInvalidParamsError(id,
			fmt.Errorf("params are for %s, step is %s", params.Kind(), kind))
	}
	if err := params.Validate(); err != nil {
		return nil, NewInvalidParamsError(id, err)
	}

	if loop, ok := params.(LoopParams); ok {
		if len(refs) != 0 {
			return nil, NewInvalidParamsError(id,
				fmt.Errorf("loop references are derived from the template range"))
		}
		derived, err := l.loopRefs(id, loop)
		if err != nil {
			return nil, err
		}
		refs = derived
	} else {
		refs = normalizeRefs(refs)
	}

	for _, ref := range refs {
		if err := ref.Validate(); err != nil {
			return nil, NewInvalidReferenceError(id, ref).WithUnderlying(err)
		}
		for _, dep := range ref.Dependencies() {
			target, ok := l.Get(dep)
			if !ok || target.tombstone || !dep.Before(id) {
				return nil, NewInvalidReferenceError(id, ref)
			}
		}
	}

	for _, slot := range params.Slots() {
		if slot >= len(refs) {
			return nil, NewInvalidParamsError(id,
				fmt.Errorf("argument reads reference slot %d, step has %d references", slot, len(refs)))
		}
	}

	if err := l.checkKindTargets(id, kind, params, refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// loopRefs derives a loop step's references: one whole-step reference per
// template step, in template order.
func (l *Log) loopRefs(id StepID, params LoopParams) ([]Reference, error) {
	first, last := params.TemplateRange(id)
	if first < 1 {
		return nil, NewInvalidParamsError(id,
			fmt.Errorf("loop template covers %d steps but only %d precede it", params.TemplateLen, id-1))
	}
	refs := make([]Reference, 0, params.TemplateLen)
	for t := first; t <= last; t++ {
		step, ok := l.Get(t)
		if !ok || step.tombstone {
			return nil, NewInvalidReferenceError(id, Ref(t, Whole()))
		}
		if step.kind.IsExpansion() {
			return nil, NewInvalidParamsError(id,
				fmt.Errorf("loop template cannot contain %s step %s", step.kind, t))
		}
		refs = append(refs, Ref(t, Whole()))
	}
	return refs, nil
}

// checkKindTargets enforces per-kind constraints on what references may
// point at.
func (l *Log) checkKindTargets(id StepID, kind Kind, params Params, refs []Reference) error {
	targetSlot := -1
	switch p := params.(type) {
	case MoveParams:
		targetSlot = p.Target
	case ScaleParams:
		targetSlot = p.Target
	case RotateParams:
		targetSlot = p.Target
	case DuplicateParams:
		targetSlot = p.Target
	default:
		return nil
	}

	ref := refs[targetSlot]
	if ref.Selector.Kind != SelectWhole {
		return NewInvalidParamsError(id,
			fmt.Errorf("%s target must select a whole step, got %s", kind, ref.Selector))
	}
	target, _ := l.Get(ref.Step)
	if kind == KindDuplicate && target.kind.IsExpansion() {
		return NewInvalidParamsError(id,
			fmt.Errorf("cannot duplicate %s step %s", target.kind, target.id))
	}
	return nil
}

// MarkDirty queues a step and returns it, ignoring tombstones.
func (l *Log) MarkDirty(id StepID) {
	if step, ok := l.Get(id); ok && !step.tombstone {
		step.markDirty()
	}
}

// SetClean installs derived geometry on a step.
func (l *Log) SetClean(id StepID, shape geom.Shape) {
	if step, ok := l.Get(id); ok {
		step.setClean(shape)
	}
}

// SetError marks a step's recomputation failed.
func (l *Log) SetError(id StepID, stepErr *StepError) {
	if step, ok := l.Get(id); ok {
		step.setError(stepErr)
	}
}

// Tombstone retires a step and drops its outgoing edges.
func (l *Log) Tombstone(id StepID) {
	if step, ok := l.Get(id); ok && !step.tombstone {
		step.entomb()
		l.graph.Remove(id)
	}
}

func normalizeRefs(refs []Reference) []Reference {
	if len(refs) == 0 {
		return nil
	}
	out := make([]Reference, len(refs))
	copy(out, refs)
	return out
}
