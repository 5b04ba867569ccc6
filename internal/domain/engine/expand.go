package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/linework/internal/domain/figure"
	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

// applyExpansion re-derives a loop or duplicate step's instances from its
// current params. Surviving slots keep their instance ids and are edited
// in place; fresh slots mint tail ids in iteration-major order; vanished
// instances are tombstoned. Nothing is mutated until the plan and the
// offset arguments have both resolved, so a failure here leaves the prior
// expansion intact.
func (p *pass) applyExpansion(ctx context.Context, step *figure.Step) *figure.StepError {
	plan, err := p.log.PlanExpansion(step.ID(), step.Params(), step.References())
	if err != nil {
		return asStepError(step.ID(), err)
	}

	var dxArg, dyArg figure.ScalarArg
	switch params := step.Params().(type) {
	case figure.LoopParams:
		dxArg, dyArg = params.DX, params.DY
	case figure.DuplicateParams:
		dxArg, dyArg = params.DX, params.DY
	}
	dx, stepErr := p.scalarArg(ctx, step, dxArg)
	if stepErr != nil {
		return stepErr
	}
	dy, stepErr := p.scalarArg(ctx, step, dyArg)
	if stepErr != nil {
		return stepErr
	}

	slots := make(map[figure.SlotKey]figure.StepID, len(plan.Keys))
	remap := make(map[figure.StepID]figure.StepID, plan.Count)
	iteration := 0
	for _, key := range plan.Keys {
		if key.Iteration != iteration {
			iteration = key.Iteration
			clear(remap)
		}

		template, ok := p.log.Get(key.Template)
		if !ok {
			return figure.NewInvalidParamsError(step.ID(),
				fmt.Errorf("template step %s is gone", key.Template))
		}
		shift := geom.Vec2{X: dx * float64(key.Iteration), Y: dy * float64(key.Iteration)}
		params := figure.ShiftParams(template.Params(), shift)
		refs := figure.RemapRefs(template.References(), remap)

		if instance, ok := plan.Surviving[key]; ok {
			switch err := p.log.Edit(instance, params, refs); {
			case errors.Is(err, figure.ErrUnchanged):
				// Still current; upstream dirtiness reaches it through
				// the graph, not through the expansion.
			case err != nil:
				return asStepError(step.ID(), err)
			default:
				p.seed(instance)
				p.events = append(p.events, figure.NewStepEvent(figure.EventStepEdited, instance))
			}
			remap[key.Template] = instance
			slots[key] = instance
			continue
		}

		origin := &figure.ExpansionOrigin{
			Owner:     step.ID(),
			Iteration: key.Iteration,
			Template:  key.Template,
		}
		instance, err := p.log.AppendInstance(template.Kind(), params, refs, origin)
		if err != nil {
			return asStepError(step.ID(), err)
		}
		p.dirty[instance.ID()] = true
		p.events = append(p.events, figure.NewStepEvent(figure.EventStepAppended, instance.ID()))
		remap[key.Template] = instance.ID()
		slots[key] = instance.ID()
	}

	for _, gone := range plan.Vanished {
		p.log.Tombstone(gone)
		delete(p.dirty, gone)
		p.events = append(p.events, figure.NewStepEvent(figure.EventStepRetired, gone))
	}

	p.log.SetExpansion(step.ID(), &figure.Expansion{Slots: slots})
	return nil
}

// asStepError pins an error to the given step, wrapping foreign errors.
func asStepError(id figure.StepID, err error) *figure.StepError {
	var stepErr *figure.StepError
	if errors.As(err, &stepErr) {
		return stepErr
	}
	return figure.NewInvalidParamsError(id, err)
}
