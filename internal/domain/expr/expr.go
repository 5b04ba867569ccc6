// Package expr provides sandboxed evaluation of the expressions a step's
// parameters may carry in place of literal values.
package expr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

// Evaluation errors.
var (
	ErrProgramInvalid  = errors.New("invalid expression program")
	ErrEvalTimeout     = errors.New("expression evaluation timeout")
	ErrUnknownBinding  = errors.New("unknown binding")
	ErrEmptyResult     = errors.New("expression produced no result")
	ErrResultOverflow  = errors.New("expression result too large")
	ErrEvaluatorClosed = errors.New("evaluator closed")
	ErrKindMismatch    = errors.New("value kind mismatch")
)

// ValueKind identifies what an expression produced.
type ValueKind string

// Value kinds.
const (
	KindNum      ValueKind = "num"
	KindPoint    ValueKind = "point"
	KindSequence ValueKind = "sequence"
)

// Value is the result of evaluating an expression: a scalar, a point, or a
// sequence of either.
type Value struct {
	kind  ValueKind
	num   float64
	point geom.Point
	items []Value
}

// NewNum creates a scalar value.
func NewNum(v float64) Value {
	return Value{kind: KindNum, num: v}
}

// NewPoint creates a point value.
func NewPoint(p geom.Point) Value {
	return Value{kind: KindPoint, point: p}
}

// NewSequence creates a sequence value.
func NewSequence(items ...Value) Value {
	return Value{kind: KindSequence, items: items}
}

// Kind returns the value's kind.
func (v Value) Kind() ValueKind { return v.kind }

// AsNum returns the scalar, or ErrKindMismatch for other kinds.
func (v Value) AsNum() (float64, error) {
	if v.kind != KindNum {
		return 0, fmt.Errorf("%w: want %s, got %s", ErrKindMismatch, KindNum, v.kind)
	}
	return v.num, nil
}

// AsPoint returns the point, or ErrKindMismatch for other kinds.
func (v Value) AsPoint() (geom.Point, error) {
	if v.kind != KindPoint {
		return geom.Point{}, fmt.Errorf("%w: want %s, got %s", ErrKindMismatch, KindPoint, v.kind)
	}
	return v.point, nil
}

// Items returns the sequence elements. Non-sequence values are returned as
// a single-element slice so callers can iterate uniformly.
func (v Value) Items() []Value {
	if v.kind == KindSequence {
		return v.items
	}
	return []Value{v}
}

// Bindings are the named inputs visible to an expression while it runs.
// The engine populates them from the geometry of the steps the expression's
// owner references.
type Bindings struct {
	nums   map[string]float64
	points map[string]geom.Point
}

// NewBindings creates an empty binding set.
func NewBindings() *Bindings {
	return &Bindings{
		nums:   make(map[string]float64),
		points: make(map[string]geom.Point),
	}
}

// SetNum binds a scalar.
func (b *Bindings) SetNum(name string, v float64) {
	b.nums[name] = v
}

// SetPoint binds a point.
func (b *Bindings) SetPoint(name string, p geom.Point) {
	b.points[name] = p
}

// Num looks up a scalar binding.
func (b *Bindings) Num(name string) (float64, bool) {
	v, ok := b.nums[name]
	return v, ok
}

// Point looks up a point binding.
func (b *Bindings) Point(name string) (geom.Point, bool) {
	p, ok := b.points[name]
	return p, ok
}

// Names returns all bound names in sorted order.
func (b *Bindings) Names() []string {
	names := make([]string, 0, len(b.nums)+len(b.points))
	for name := range b.nums {
		names = append(names, name)
	}
	for name := range b.points {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Program is a compiled expression. The module is a WASM binary exporting
// an eval function; the source is the authored text it was compiled from,
// kept for display and error messages.
type Program struct {
	// ID is the stable identifier steps use to reference the expression
	ID string

	// Source is the authored expression text
	Source string

	// Module is the compiled WASM module bytes
	Module []byte

	// Checksum is the SHA256 hash of the module
	Checksum string
}

// Validate checks if the program can be evaluated.
func (p *Program) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil program", ErrProgramInvalid)
	}
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrProgramInvalid)
	}
	if len(p.Module) == 0 {
		return fmt.Errorf("%w: missing module", ErrProgramInvalid)
	}
	return nil
}

// Config holds evaluator configuration.
type Config struct {
	// Timeout bounds a single evaluation
	Timeout time.Duration

	// MaxResultItems bounds the size of a produced sequence
	MaxResultItems int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        100 * time.Millisecond,
		MaxResultItems: 1024,
	}
}

// Evaluator runs compiled expressions against a binding set.
type Evaluator interface {
	// Eval runs a program and returns its value
	Eval(ctx context.Context, program *Program, bindings *Bindings) (Value, error)

	// Validate checks if a program can be loaded without running it
	Validate(ctx context.Context, program *Program) error

	// Close releases evaluator resources
	Close() error
}
