package figure

import "fmt"

// Params is the closed set of kind-specific parameter structs. The
// recomputation engine type-switches over it exhaustively; adding an
// operation means adding a variant here, not ad-hoc dispatch.
type Params interface {
	// Kind returns the operation the params belong to.
	Kind() Kind

	// Slots returns every reference slot the params read, in declared
	// order. The log bounds-checks them against the step's reference
	// list.
	Slots() []int

	// Validate checks the params' shape.
	Validate() error

	isParams()
}

// PointParams places a single point.
type PointParams struct {
	At PointArg
}

func (p PointParams) Kind() Kind   { return KindPoint }
func (p PointParams) Slots() []int { return p.At.slots() }
func (p PointParams) Validate() error {
	return p.At.Validate()
}
func (PointParams) isParams() {}

// LineParams draws a segment between two points.
type LineParams struct {
	Start PointArg
	End   PointArg
}

func (p LineParams) Kind() Kind   { return KindLine }
func (p LineParams) Slots() []int { return append(p.Start.slots(), p.End.slots()...) }
func (p LineParams) Validate() error {
	if err := p.Start.Validate(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := p.End.Validate(); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	return nil
}
func (LineParams) isParams() {}

// PathParams draws a polyline through its vertices.
type PathParams struct {
	Vertices []PointArg
	Closed   bool
}

func (p PathParams) Kind() Kind { return KindPath }
func (p PathParams) Slots() []int {
	var slots []int
	for _, v := range p.Vertices {
		slots = append(slots, v.slots()...)
	}
	return slots
}
func (p PathParams) Validate() error {
	if len(p.Vertices) < 2 {
		return fmt.Errorf("path needs at least 2 vertices, got %d", len(p.Vertices))
	}
	for i, v := range p.Vertices {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	return nil
}
func (PathParams) isParams() {}

// RectMode selects how a rect is given.
type RectMode string

// Rect modes.
const (
	RectCorners RectMode = "corners"
	RectCenter  RectMode = "center"
)

// RectParams draws an axis-aligned rectangle, either from two opposite
// corners or from a center plus extents.
type RectParams struct {
	Mode RectMode

	// Corner and Opposite are used in corners mode
	Corner   PointArg
	Opposite PointArg

	// Center, Width and Height are used in center mode
	Center PointArg
	Width  ScalarArg
	Height ScalarArg
}

func (p RectParams) Kind() Kind { return KindRect }
func (p RectParams) Slots() []int {
	switch p.Mode {
	case RectCorners:
		return append(p.Corner.slots(), p.Opposite.slots()...)
	case RectCenter:
		slots := p.Center.slots()
		slots = append(slots, p.Width.slots()...)
		return append(slots, p.Height.slots()...)
	}
	return nil
}
func (p RectParams) Validate() error {
	switch p.Mode {
	case RectCorners:
		if err := p.Corner.Validate(); err != nil {
			return fmt.Errorf("corner: %w", err)
		}
		if err := p.Opposite.Validate(); err != nil {
			return fmt.Errorf("opposite: %w", err)
		}
		return nil
	case RectCenter:
		if err := p.Center.Validate(); err != nil {
			return fmt.Errorf("center: %w", err)
		}
		if err := p.Width.Validate(); err != nil {
			return fmt.Errorf("width: %w", err)
		}
		if err := p.Height.Validate(); err != nil {
			return fmt.Errorf("height: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown rect mode %q", p.Mode)
	}
}
func (RectParams) isParams() {}

// CircleMode selects how a circle is given.
type CircleMode string

// Circle modes.
const (
	CircleCenterRadius CircleMode = "center_radius"
	CircleThreePoint   CircleMode = "three_point"
)

// CircleParams draws a circle, either from a center plus radius or fitted
// through three points.
type CircleParams struct {
	Mode CircleMode

	// Center and Radius are used in center_radius mode
	Center PointArg
	Radius ScalarArg

	// A, B and C are used in three_point mode
	A PointArg
	B PointArg
	C PointArg
}

func (p CircleParams) Kind() Kind { return KindCircle }
func (p CircleParams) Slots() []int {
	switch p.Mode {
	case CircleCenterRadius:
		return append(p.Center.slots(), p.Radius.slots()...)
	case CircleThreePoint:
		slots := p.A.slots()
		slots = append(slots, p.B.slots()...)
		return append(slots, p.C.slots()...)
	}
	return nil
}
func (p CircleParams) Validate() error {
	switch p.Mode {
	case CircleCenterRadius:
		if err := p.Center.Validate(); err != nil {
			return fmt.Errorf("center: %w", err)
		}
		if err := p.Radius.Validate(); err != nil {
			return fmt.Errorf("radius: %w", err)
		}
		return nil
	case CircleThreePoint:
		if err := p.A.Validate(); err != nil {
			return fmt.Errorf("a: %w", err)
		}
		if err := p.B.Validate(); err != nil {
			return fmt.Errorf("b: %w", err)
		}
		if err := p.C.Validate(); err != nil {
			return fmt.Errorf("c: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown circle mode %q", p.Mode)
	}
}
func (CircleParams) isParams() {}

// TextParams places a text label.
type TextParams struct {
	At      PointArg
	Content string
	Size    ScalarArg
}

func (p TextParams) Kind() Kind   { return KindText }
func (p TextParams) Slots() []int { return append(p.At.slots(), p.Size.slots()...) }
func (p TextParams) Validate() error {
	if err := p.At.Validate(); err != nil {
		return fmt.Errorf("at: %w", err)
	}
	if err := p.Size.Validate(); err != nil {
		return fmt.Errorf("size: %w", err)
	}
	return nil
}
func (TextParams) isParams() {}

// PictureParams places an image by origin and extents.
type PictureParams struct {
	At     PointArg
	Source string
	Width  ScalarArg
	Height ScalarArg
}

func (p PictureParams) Kind() Kind { return KindPicture }
func (p PictureParams) Slots() []int {
	slots := p.At.slots()
	slots = append(slots, p.Width.slots()...)
	return append(slots, p.Height.slots()...)
}
func (p PictureParams) Validate() error {
	if p.Source == "" {
		return fmt.Errorf("picture needs a source")
	}
	if err := p.At.Validate(); err != nil {
		return fmt.Errorf("at: %w", err)
	}
	if err := p.Width.Validate(); err != nil {
		return fmt.Errorf("width: %w", err)
	}
	if err := p.Height.Validate(); err != nil {
		return fmt.Errorf("height: %w", err)
	}
	return nil
}
func (PictureParams) isParams() {}

// MoveParams translates the geometry of the step in the target slot.
type MoveParams struct {
	// Target is the reference slot of the step being moved
	Target int

	DX ScalarArg
	DY ScalarArg
}

func (p MoveParams) Kind() Kind { return KindMove }
func (p MoveParams) Slots() []int {
	slots := []int{p.Target}
	slots = append(slots, p.DX.slots()...)
	return append(slots, p.DY.slots()...)
}
func (p MoveParams) Validate() error {
	if p.Target < 0 {
		return fmt.Errorf("move target slot must not be negative")
	}
	if err := p.DX.Validate(); err != nil {
		return fmt.Errorf("dx: %w", err)
	}
	if err := p.DY.Validate(); err != nil {
		return fmt.Errorf("dy: %w", err)
	}
	return nil
}
func (MoveParams) isParams() {}

// ScaleParams scales the geometry of the step in the target slot by a
// uniform factor. A nil pivot scales about the target's center.
type ScaleParams struct {
	Target int
	Factor ScalarArg
	Pivot  *PointArg
}

func (p ScaleParams) Kind() Kind { return KindScale }
func (p ScaleParams) Slots() []int {
	slots := []int{p.Target}
	slots = append(slots, p.Factor.slots()...)
	if p.Pivot != nil {
		slots = append(slots, p.Pivot.slots()...)
	}
	return slots
}
func (p ScaleParams) Validate() error {
	if p.Target < 0 {
		return fmt.Errorf("scale target slot must not be negative")
	}
	if err := p.Factor.Validate(); err != nil {
		return fmt.Errorf("factor: %w", err)
	}
	if p.Pivot != nil {
		if err := p.Pivot.Validate(); err != nil {
			return fmt.Errorf("pivot: %w", err)
		}
	}
	return nil
}
func (ScaleParams) isParams() {}

// RotateParams rotates the geometry of the step in the target slot. The
// angle is in radians; a nil pivot rotates about the target's center.
type RotateParams struct {
	Target int
	Angle  ScalarArg
	Pivot  *PointArg
}

func (p RotateParams) Kind() Kind { return KindRotate }
func (p RotateParams) Slots() []int {
	slots := []int{p.Target}
	slots = append(slots, p.Angle.slots()...)
	if p.Pivot != nil {
		slots = append(slots, p.Pivot.slots()...)
	}
	return slots
}
func (p RotateParams) Validate() error {
	if p.Target < 0 {
		return fmt.Errorf("rotate target slot must not be negative")
	}
	if err := p.Angle.Validate(); err != nil {
		return fmt.Errorf("angle: %w", err)
	}
	if p.Pivot != nil {
		if err := p.Pivot.Validate(); err != nil {
			return fmt.Errorf("pivot: %w", err)
		}
	}
	return nil
}
func (RotateParams) isParams() {}

// DuplicateParams instantiates one offset copy of the step in the target
// slot.
type DuplicateParams struct {
	Target int
	DX     ScalarArg
	DY     ScalarArg
}

func (p DuplicateParams) Kind() Kind { return KindDuplicate }
func (p DuplicateParams) Slots() []int {
	slots := []int{p.Target}
	slots = append(slots, p.DX.slots()...)
	return append(slots, p.DY.slots()...)
}
func (p DuplicateParams) Validate() error {
	if p.Target < 0 {
		return fmt.Errorf("duplicate target slot must not be negative")
	}
	if err := p.DX.Validate(); err != nil {
		return fmt.Errorf("dx: %w", err)
	}
	if err := p.DY.Validate(); err != nil {
		return fmt.Errorf("dy: %w", err)
	}
	return nil
}
func (DuplicateParams) isParams() {}

// LoopParams instantiates the TemplateLen steps immediately preceding the
// loop Count more times, shifting iteration i by (i*DX, i*DY). The log
// derives the loop's references from the template range itself.
type LoopParams struct {
	TemplateLen int
	Count       int
	DX          ScalarArg
	DY          ScalarArg
}

func (p LoopParams) Kind() Kind { return KindLoop }

// Slots returns only the slots of the offset arguments; the template
// references are positional and derived by the log.
func (p LoopParams) Slots() []int {
	var slots []int
	slots = append(slots, p.DX.slots()...)
	return append(slots, p.DY.slots()...)
}
func (p LoopParams) Validate() error {
	if p.TemplateLen < 1 {
		return fmt.Errorf("loop template must cover at least 1 step, got %d", p.TemplateLen)
	}
	if p.Count < 0 {
		return fmt.Errorf("loop count must not be negative, got %d", p.Count)
	}
	if err := p.DX.Validate(); err != nil {
		return fmt.Errorf("dx: %w", err)
	}
	if err := p.DY.Validate(); err != nil {
		return fmt.Errorf("dy: %w", err)
	}
	return nil
}
func (LoopParams) isParams() {}

// TemplateRange returns the id range [first, last] the loop instantiates,
// given the loop step's own id.
func (p LoopParams) TemplateRange(loop StepID) (first, last StepID) {
	last = loop - 1
	first = last - StepID(p.TemplateLen) + 1
	return first, last
}
