// Package figure holds the construction log domain: steps with their
// params and references, the dependency graph they induce, statuses,
// expansion records and the events mutations emit.
package figure

import (
	"sync"

	"github.com/felixgeelhaar/linework/internal/domain/geom"
	"github.com/felixgeelhaar/linework/internal/domain/recognize"
)

// ExpansionOrigin records which expansion instantiated a step.
type ExpansionOrigin struct {
	// Owner is the loop or duplicate step
	Owner StepID

	// Iteration is the 1-based iteration the instance belongs to
	Iteration int

	// Template is the step this instance mirrors
	Template StepID
}

// Step is one logged construction or adjustment operation. Its geometry,
// status and recognized classification are derived state owned by the
// recomputation engine; params and references change only through edits.
type Step struct {
	id        StepID
	kind      Kind
	params    Params
	refs      []Reference
	geometry  geom.Shape
	status    Status
	errKind   ErrorKind
	err       *StepError
	origin    *ExpansionOrigin
	expansion *Expansion
	tombstone bool

	// recognized is filled lazily on first read after a geometry change.
	// recogMu only serializes concurrent readers; geometry itself is
	// stable while any reader runs.
	recogMu    sync.Mutex
	recognized *recognize.Match
	recogStale bool
}

func newStep(id StepID, kind Kind, params Params, refs []Reference, origin *ExpansionOrigin) *Step {
	return &Step{
		id:     id,
		kind:   kind,
		params: params,
		refs:   refs,
		status: StatusDirty,
		origin: origin,
	}
}

// ID returns the step's id.
func (s *Step) ID() StepID { return s.id }

// Kind returns the step's operation kind.
func (s *Step) Kind() Kind { return s.kind }

// Params returns the step's parameters.
func (s *Step) Params() Params { return s.params }

// References returns the step's ordered reference list. Callers must not
// modify it; edits replace the slice wholesale.
func (s *Step) References() []Reference { return s.refs }

// Geometry returns the derived geometry, or nil before the first
// successful recomputation. While the step is in error it holds the last
// good value.
func (s *Step) Geometry() geom.Shape { return s.geometry }

// Status returns the step's recomputation state.
func (s *Step) Status() Status { return s.status }

// ErrKind returns what failed when the status is StatusError.
func (s *Step) ErrKind() ErrorKind { return s.errKind }

// Err returns the last recomputation failure, or nil.
func (s *Step) Err() *StepError { return s.err }

// Origin returns the expansion that instantiated this step, or nil for
// directly authored steps.
func (s *Step) Origin() *ExpansionOrigin { return s.origin }

// IsInstance reports whether an expansion instantiated this step.
func (s *Step) IsInstance() bool { return s.origin != nil }

// IsTombstone reports whether the step was retired by a re-expansion.
// Tombstones keep their id forever but are invisible to cursors, snapping
// and recomputation.
func (s *Step) IsTombstone() bool { return s.tombstone }

// Recognized returns the shape classification of the current geometry,
// computing it on first read after a geometry change. Nil when nothing
// matched or there is no geometry yet.
func (s *Step) Recognized() *recognize.Match {
	s.recogMu.Lock()
	defer s.recogMu.Unlock()

	if s.recogStale {
		if s.geometry != nil {
			s.recognized = recognize.Classify(s.geometry)
		} else {
			s.recognized = nil
		}
		s.recogStale = false
	}
	return s.recognized
}

// markDirty queues the step for recomputation.
func (s *Step) markDirty() {
	s.status = StatusDirty
}

// setClean installs freshly derived geometry and invalidates the
// recognized classification.
func (s *Step) setClean(shape geom.Shape) {
	s.geometry = shape
	s.status = StatusClean
	s.errKind = ""
	s.err = nil

	s.recogMu.Lock()
	s.recogStale = true
	s.recogMu.Unlock()
}

// setError marks the step failed, freezing the previous geometry. The
// recognized classification stays valid because the geometry did not
// change.
func (s *Step) setError(err *StepError) {
	s.status = StatusError
	s.errKind = err.Kind
	s.err = err
}

// setParams replaces the step's parameters and references.
func (s *Step) setParams(params Params, refs []Reference) {
	s.params = params
	s.refs = refs
}

// entomb retires the step.
func (s *Step) entomb() {
	s.tombstone = true
}
