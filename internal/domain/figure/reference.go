package figure

import (
	"fmt"
	"strconv"
)

// SelectorKind identifies what part of a step's geometry a reference
// addresses.
type SelectorKind string

// Selector kinds.
const (
	// SelectWhole addresses the step's entire geometry. Adjustment and
	// expansion operations use it; it does not resolve to a point.
	SelectWhole SelectorKind = "whole"

	// SelectAnchor addresses an index into the geometry's ordered anchor
	// list.
	SelectAnchor SelectorKind = "anchor"

	// SelectVertex addresses a path vertex by index.
	SelectVertex SelectorKind = "vertex"

	// SelectCenter addresses the geometry's center point.
	SelectCenter SelectorKind = "center"

	// SelectIntersection addresses the k-th crossing between the owning
	// step and Other, which becomes a second dependency.
	SelectIntersection SelectorKind = "intersection"
)

// Selector identifies an anchor within a step's geometry.
type Selector struct {
	// Kind of the selector
	Kind SelectorKind

	// Index into the anchor, vertex or intersection list
	Index int

	// Other is the second step of an intersection selector
	Other StepID
}

// Whole selects a step's entire geometry.
func Whole() Selector { return Selector{Kind: SelectWhole} }

// Anchor selects the i-th anchor.
func Anchor(i int) Selector { return Selector{Kind: SelectAnchor, Index: i} }

// Vertex selects the i-th path vertex.
func Vertex(i int) Selector { return Selector{Kind: SelectVertex, Index: i} }

// Center selects the geometry's center.
func Center() Selector { return Selector{Kind: SelectCenter} }

// Intersection selects the k-th crossing with the other step.
func Intersection(k int, other StepID) Selector {
	return Selector{Kind: SelectIntersection, Index: k, Other: other}
}

// Validate checks the selector's shape.
func (s Selector) Validate() error {
	switch s.Kind {
	case SelectWhole, SelectCenter:
		return nil
	case SelectAnchor, SelectVertex:
		if s.Index < 0 {
			return fmt.Errorf("%s index must not be negative, got %d", s.Kind, s.Index)
		}
		return nil
	case SelectIntersection:
		if s.Index < 0 {
			return fmt.Errorf("intersection index must not be negative, got %d", s.Index)
		}
		if !s.Other.IsValid() {
			return fmt.Errorf("intersection selector needs a second step")
		}
		return nil
	default:
		return fmt.Errorf("unknown selector kind %q", s.Kind)
	}
}

// String formats the selector for messages, e.g. "anchor[2]".
func (s Selector) String() string {
	switch s.Kind {
	case SelectWhole, SelectCenter:
		return string(s.Kind)
	case SelectIntersection:
		return "intersection[" + strconv.Itoa(s.Index) + "] with " + s.Other.String()
	default:
		return string(s.Kind) + "[" + strconv.Itoa(s.Index) + "]"
	}
}

// Reference is one dependency of a step: a target step plus the selector
// addressing part of its geometry. Every referenced id must be strictly
// smaller than the referencing step's id.
type Reference struct {
	// Step is the referenced step
	Step StepID

	// Selector addresses a part of the referenced step's geometry
	Selector Selector
}

// Ref builds a reference.
func Ref(step StepID, selector Selector) Reference {
	return Reference{Step: step, Selector: selector}
}

// Dependencies returns the ids the reference depends on: the target, plus
// the intersection partner when present.
func (r Reference) Dependencies() []StepID {
	if r.Selector.Kind == SelectIntersection {
		return []StepID{r.Step, r.Selector.Other}
	}
	return []StepID{r.Step}
}

// Validate checks the reference's shape. Backward ordering is checked by
// the log, which knows the referencing step's id.
func (r Reference) Validate() error {
	if !r.Step.IsValid() {
		return fmt.Errorf("reference targets no step")
	}
	return r.Selector.Validate()
}

// String formats the reference for messages, e.g. "#3 anchor[1]".
func (r Reference) String() string {
	return r.Step.String() + " " + r.Selector.String()
}

// DisplayName renders the reference as a picker label using the target's
// kind, e.g. "Line #4, SP #2". Anchor, vertex and intersection ordinals
// are shown one-based.
func (r Reference) DisplayName(kind Kind) string {
	label := kind.DisplayName() + " " + r.Step.String()
	switch r.Selector.Kind {
	case SelectWhole:
		return label
	case SelectCenter:
		return label + ", center"
	case SelectIntersection:
		return label + ", intersection " + strconv.Itoa(r.Selector.Index+1) + " with " + r.Selector.Other.String()
	default:
		return label + ", SP #" + strconv.Itoa(r.Selector.Index+1)
	}
}
