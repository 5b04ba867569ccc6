package figure

import (
	"fmt"

	"github.com/felixgeelhaar/linework/internal/domain/expr"
	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

// ArgSource identifies where an argument's value comes from.
type ArgSource string

// Argument sources.
const (
	ArgLiteral    ArgSource = "literal"
	ArgReference  ArgSource = "reference"
	ArgExpression ArgSource = "expression"
)

// ExprInput names one reference slot for an expression, making the
// referenced snap point visible to the program under that name.
type ExprInput struct {
	// Name the program looks the binding up by
	Name string

	// Slot indexes the owning step's reference list
	Slot int
}

// ExprArg carries a compiled expression plus the bindings it reads.
type ExprArg struct {
	// Program is the compiled expression
	Program *expr.Program

	// Inputs are the named reference slots exposed as bindings
	Inputs []ExprInput
}

// Validate checks the expression argument's shape.
func (e *ExprArg) Validate() error {
	if e == nil {
		return fmt.Errorf("missing expression")
	}
	if err := e.Program.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(e.Inputs))
	for _, in := range e.Inputs {
		if in.Name == "" {
			return fmt.Errorf("expression input needs a name")
		}
		if seen[in.Name] {
			return fmt.Errorf("duplicate expression input %q", in.Name)
		}
		seen[in.Name] = true
		if in.Slot < 0 {
			return fmt.Errorf("expression input %q has a negative slot", in.Name)
		}
	}
	return nil
}

// slots returns the reference slots the expression reads.
func (e *ExprArg) slots() []int {
	if e == nil {
		return nil
	}
	out := make([]int, len(e.Inputs))
	for i, in := range e.Inputs {
		out[i] = in.Slot
	}
	return out
}

// PointArg is a point-valued parameter: a literal coordinate, a slot into
// the step's reference list, or an expression producing a point.
type PointArg struct {
	// Source of the value
	Source ArgSource

	// Literal coordinate when Source is ArgLiteral
	Literal geom.Point

	// Slot into the step's reference list when Source is ArgReference
	Slot int

	// Expr when Source is ArgExpression
	Expr *ExprArg
}

// LiteralPoint builds a literal point argument.
func LiteralPoint(p geom.Point) PointArg {
	return PointArg{Source: ArgLiteral, Literal: p}
}

// RefPoint builds a point argument resolved through a reference slot.
func RefPoint(slot int) PointArg {
	return PointArg{Source: ArgReference, Slot: slot}
}

// ExprPoint builds a point argument computed by an expression.
func ExprPoint(arg *ExprArg) PointArg {
	return PointArg{Source: ArgExpression, Expr: arg}
}

// Validate checks the argument's shape.
func (a PointArg) Validate() error {
	switch a.Source {
	case ArgLiteral:
		return nil
	case ArgReference:
		if a.Slot < 0 {
			return fmt.Errorf("point argument has a negative reference slot")
		}
		return nil
	case ArgExpression:
		return a.Expr.Validate()
	default:
		return fmt.Errorf("unknown argument source %q", a.Source)
	}
}

// slots returns the reference slots the argument reads.
func (a PointArg) slots() []int {
	switch a.Source {
	case ArgReference:
		return []int{a.Slot}
	case ArgExpression:
		return a.Expr.slots()
	}
	return nil
}

// ScalarArg is a number-valued parameter: a literal or an expression
// producing a number.
type ScalarArg struct {
	// Source of the value
	Source ArgSource

	// Literal value when Source is ArgLiteral
	Literal float64

	// Expr when Source is ArgExpression
	Expr *ExprArg
}

// LiteralScalar builds a literal scalar argument.
func LiteralScalar(v float64) ScalarArg {
	return ScalarArg{Source: ArgLiteral, Literal: v}
}

// ExprScalar builds a scalar argument computed by an expression.
func ExprScalar(arg *ExprArg) ScalarArg {
	return ScalarArg{Source: ArgExpression, Expr: arg}
}

// Validate checks the argument's shape.
func (a ScalarArg) Validate() error {
	switch a.Source {
	case ArgLiteral:
		return nil
	case ArgExpression:
		return a.Expr.Validate()
	case ArgReference:
		return fmt.Errorf("scalar arguments cannot be references")
	default:
		return fmt.Errorf("unknown argument source %q", a.Source)
	}
}

// slots returns the reference slots the argument reads.
func (a ScalarArg) slots() []int {
	if a.Source == ArgExpression {
		return a.Expr.slots()
	}
	return nil
}
