// Package engine drives a construction step log: appends and edits go
// through validation, then an incremental recompute pass rebuilds the
// geometry of every step the change can reach. Failures localize to the
// failing step; independent branches keep their geometry.
package engine

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/linework/internal/domain/expr"
	"github.com/felixgeelhaar/linework/internal/domain/figure"
)

// Engine owns a step log and recomputes it incrementally. Mutations take
// the write lock and publish their events only after it is released, so
// subscribers may call back into the engine.
type Engine struct {
	mu        sync.RWMutex
	log       *figure.Log
	evaluator expr.Evaluator
	bus       *EventBus
}

// New returns an empty engine. The evaluator may be nil, in which case
// expression-bearing steps fail with an expression error when computed.
func New(evaluator expr.Evaluator) *Engine {
	return &Engine{
		log:       figure.NewLog(),
		evaluator: evaluator,
		bus:       NewEventBus(),
	}
}

// Events returns the bus mutation events are published on.
func (e *Engine) Events() *EventBus {
	return e.bus
}

// Append validates and appends a step, then recomputes it (and, for loop
// and duplicate steps, its instances). The returned view reflects the
// step after recomputation.
func (e *Engine) Append(ctx context.Context, kind figure.Kind, params figure.Params, refs []figure.Reference) (StepView, error) {
	e.mu.Lock()
	step, err := e.log.Append(kind, params, refs)
	if err != nil {
		e.mu.Unlock()
		return StepView{}, err
	}

	pass := newPass(e.log, e.evaluator)
	pass.events = append(pass.events, figure.NewStepEvent(figure.EventStepAppended, step.ID()))
	pass.dirty[step.ID()] = true
	pass.run(ctx)

	view := makeView(step)
	events := pass.events
	e.mu.Unlock()

	e.bus.Publish(events...)
	return view, nil
}

// Edit replaces a step's params and references in place, then recomputes
// the step and everything downstream of it. Identical edits fail with
// figure.ErrUnchanged and leave the log untouched. Editing a loop or
// duplicate step re-plans its expansion first; a conflict rejects the
// edit with the prior expansion intact.
func (e *Engine) Edit(ctx context.Context, id figure.StepID, params figure.Params, refs []figure.Reference) error {
	e.mu.Lock()

	step, ok := e.log.Get(id)
	if !ok || step.IsTombstone() {
		e.mu.Unlock()
		return figure.NewStepNotFoundError(id)
	}

	if step.Kind().IsExpansion() {
		if err := e.log.ValidateEdit(id, params, refs); err != nil {
			e.mu.Unlock()
			return err
		}
		if _, err := e.log.PlanExpansion(id, params, refs); err != nil {
			e.mu.Unlock()
			return err
		}
	}

	if err := e.log.Edit(id, params, refs); err != nil {
		e.mu.Unlock()
		return err
	}

	pass := newPass(e.log, e.evaluator)
	pass.events = append(pass.events, figure.NewStepEvent(figure.EventStepEdited, id))
	pass.seed(id)
	pass.run(ctx)

	events := pass.events
	e.mu.Unlock()

	e.bus.Publish(events...)
	return nil
}

// Replay recomputes every live step from scratch, in id order.
func (e *Engine) Replay(ctx context.Context) {
	e.mu.Lock()

	pass := newPass(e.log, e.evaluator)
	for _, step := range e.log.Live() {
		pass.dirty[step.ID()] = true
	}
	pass.run(ctx)

	events := pass.events
	e.mu.Unlock()

	e.bus.Publish(events...)
}

// Step returns a snapshot of one step, tombstoned or not.
func (e *Engine) Step(id figure.StepID) (StepView, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	step, ok := e.log.Get(id)
	if !ok {
		return StepView{}, false
	}
	return makeView(step), true
}

// Steps returns snapshots of all live steps in id order.
func (e *Engine) Steps() []StepView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return makeViews(e.log.Live())
}

// VisiblePrefix returns snapshots of the first n live steps in id order.
func (e *Engine) VisiblePrefix(n int) []StepView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return makeViews(e.log.LivePrefix(n))
}

// Authored returns snapshots of the live steps a user wrote directly,
// excluding expansion instances.
func (e *Engine) Authored() []StepView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return makeViews(e.log.Authored())
}

// Len returns the total number of steps ever appended.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.log.Len()
}

// LiveLen returns the number of live steps.
func (e *Engine) LiveLen() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.log.LiveLen()
}

// StatusCounts tallies live steps by status.
func (e *Engine) StatusCounts() map[figure.Status]int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	counts := make(map[figure.Status]int)
	for _, step := range e.log.Live() {
		counts[step.Status()]++
	}
	return counts
}
