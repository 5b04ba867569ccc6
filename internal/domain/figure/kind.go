package figure

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind identifies the operation a step performs. The set is closed: the
// recomputation engine switches over it exhaustively.
type Kind string

// Step kinds.
const (
	KindPoint     Kind = "point"
	KindLine      Kind = "line"
	KindPath      Kind = "path"
	KindRect      Kind = "rect"
	KindCircle    Kind = "circle"
	KindText      Kind = "text"
	KindPicture   Kind = "picture"
	KindMove      Kind = "move"
	KindScale     Kind = "scale"
	KindRotate    Kind = "rotate"
	KindDuplicate Kind = "duplicate"
	KindLoop      Kind = "loop"
)

// allKinds lists every valid kind.
var allKinds = map[Kind]bool{
	KindPoint: true, KindLine: true, KindPath: true, KindRect: true,
	KindCircle: true, KindText: true, KindPicture: true, KindMove: true,
	KindScale: true, KindRotate: true, KindDuplicate: true, KindLoop: true,
}

// IsValid reports whether the kind is one of the closed set.
func (k Kind) IsValid() bool { return allKinds[k] }

// IsDrawing reports whether the kind produces geometry directly from its
// own parameters.
func (k Kind) IsDrawing() bool {
	switch k {
	case KindPoint, KindLine, KindPath, KindRect, KindCircle, KindText, KindPicture:
		return true
	}
	return false
}

// IsAdjustment reports whether the kind derives geometry by transforming
// another step's geometry.
func (k Kind) IsAdjustment() bool {
	switch k {
	case KindMove, KindScale, KindRotate:
		return true
	}
	return false
}

// IsExpansion reports whether the kind instantiates other steps.
func (k Kind) IsExpansion() bool {
	return k == KindDuplicate || k == KindLoop
}

// DisplayName returns the kind title-cased for presentation, e.g. "Line".
func (k Kind) DisplayName() string {
	return cases.Title(language.English).String(string(k))
}
