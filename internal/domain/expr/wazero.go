package expr

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

// hostModule is the namespace expression modules import their bindings and
// result sinks from.
const hostModule = "linework"

// WazeroEvaluator implements Evaluator using Wazero.
//
// Expression modules export an "eval" function. While it runs, the module
// reads its inputs through the host functions binding_num and binding_coord
// and reports its output through yield_num and yield_point. Yielding once
// produces a scalar or point value; yielding more than once produces a
// sequence.
type WazeroEvaluator struct {
	runtime   wazero.Runtime
	config    Config
	hostReady bool
	current   *evalState
	evals     uint64
	mu        sync.Mutex
	closed    bool
}

// evalState is the per-evaluation view the host functions read and write.
type evalState struct {
	bindings *Bindings
	items    []Value
	err      error
}

// NewWazeroEvaluator creates a new Wazero-based evaluator.
func NewWazeroEvaluator(ctx context.Context, config Config) (*WazeroEvaluator, error) {
	cfg := wazero.NewRuntimeConfig().
		WithCloseOnContextDone(true)

	r := wazero.NewRuntimeWithConfig(ctx, cfg)

	// Instantiate WASI for standard I/O
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	return &WazeroEvaluator{
		runtime: r,
		config:  config,
	}, nil
}

// Eval runs a program and returns its value. Evaluations are serialized:
// the host functions are shared across instantiations and read the state of
// the evaluation in flight.
func (e *WazeroEvaluator) Eval(ctx context.Context, program *Program, bindings *Bindings) (Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Value{}, ErrEvaluatorClosed
	}
	if err := program.Validate(); err != nil {
		return Value{}, err
	}
	if bindings == nil {
		bindings = NewBindings()
	}

	// Apply timeout
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	if !e.hostReady {
		if err := e.registerHostFunctions(ctx); err != nil {
			return Value{}, fmt.Errorf("failed to register host functions: %w", err)
		}
		e.hostReady = true
	}

	state := &evalState{bindings: bindings}
	e.current = state
	defer func() { e.current = nil }()

	compiled, err := e.runtime.CompileModule(ctx, program.Module)
	if err != nil {
		return Value{}, fmt.Errorf("%w: failed to compile: %w", ErrProgramInvalid, err)
	}
	defer func() { _ = compiled.Close(ctx) }()

	// Module names must be unique within the runtime, so repeated
	// evaluations of the same program get a per-call suffix.
	e.evals++
	modConfig := wazero.NewModuleConfig().
		WithName(fmt.Sprintf("%s#%d", program.ID, e.evals)).
		WithStartFunctions("_initialize")

	instance, err := e.runtime.InstantiateModule(ctx, compiled, modConfig)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Value{}, ErrEvalTimeout
		}
		return Value{}, fmt.Errorf("%w: failed to instantiate: %w", ErrProgramInvalid, err)
	}
	defer func() { _ = instance.Close(ctx) }()

	evalFn := instance.ExportedFunction("eval")
	if evalFn == nil {
		return Value{}, fmt.Errorf("%w: missing eval export", ErrProgramInvalid)
	}

	if _, err := evalFn.Call(ctx); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Value{}, ErrEvalTimeout
		}
		return Value{}, fmt.Errorf("expression failed: %w", err)
	}

	if state.err != nil {
		return Value{}, state.err
	}

	switch len(state.items) {
	case 0:
		return Value{}, ErrEmptyResult
	case 1:
		return state.items[0], nil
	default:
		return NewSequence(state.items...), nil
	}
}

// Validate checks if a program can be loaded without running it.
func (e *WazeroEvaluator) Validate(ctx context.Context, program *Program) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEvaluatorClosed
	}
	if err := program.Validate(); err != nil {
		return err
	}

	compiled, err := e.runtime.CompileModule(ctx, program.Module)
	if err != nil {
		return fmt.Errorf("%w: failed to compile: %w", ErrProgramInvalid, err)
	}
	defer func() { _ = compiled.Close(ctx) }()

	return nil
}

// Close releases evaluator resources.
func (e *WazeroEvaluator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	e.closed = true
	return e.runtime.Close(context.Background())
}

// registerHostFunctions adds the linework host functions to the runtime.
func (e *WazeroEvaluator) registerHostFunctions(ctx context.Context) error {
	builder := e.runtime.NewHostModuleBuilder(hostModule)

	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, ptr, length uint32) float64 {
			state := e.current
			if state == nil {
				return 0
			}
			name := readString(m, ptr, length)
			v, ok := state.bindings.Num(name)
			if !ok {
				state.fail(fmt.Errorf("%w: %s", ErrUnknownBinding, name))
				return 0
			}
			return v
		}).
		Export("binding_num")

	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, ptr, length, axis uint32) float64 {
			state := e.current
			if state == nil {
				return 0
			}
			name := readString(m, ptr, length)
			p, ok := state.bindings.Point(name)
			if !ok {
				state.fail(fmt.Errorf("%w: %s", ErrUnknownBinding, name))
				return 0
			}
			if axis == 0 {
				return p.X
			}
			return p.Y
		}).
		Export("binding_coord")

	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, _ api.Module, v float64) {
			e.yield(NewNum(v))
		}).
		Export("yield_num")

	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, _ api.Module, x, y float64) {
			e.yield(NewPoint(geom.Pt(x, y)))
		}).
		Export("yield_point")

	_, err := builder.Instantiate(ctx)
	return err
}

// yield appends a value to the evaluation in flight, enforcing the result
// size limit.
func (e *WazeroEvaluator) yield(v Value) {
	state := e.current
	if state == nil {
		return
	}
	if e.config.MaxResultItems > 0 && len(state.items) >= e.config.MaxResultItems {
		state.fail(fmt.Errorf("%w: more than %d items", ErrResultOverflow, e.config.MaxResultItems))
		return
	}
	state.items = append(state.items, v)
}

// fail records the first host-side error of an evaluation.
func (s *evalState) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// readString reads a string from WASM memory.
func readString(m api.Module, ptr, length uint32) string {
	if m == nil {
		return ""
	}
	mem := m.Memory()
	if mem == nil {
		return ""
	}
	data, ok := mem.Read(ptr, length)
	if !ok {
		return ""
	}
	return string(data)
}
