package engine

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/linework/internal/domain/figure"
	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

// errSelectorGone marks a selector its target's current geometry no
// longer carries. The recomputer wraps it into a DanglingSnapSelector
// step error.
var errSelectorGone = errors.New("selector no longer resolves")

// resolveSelector derives the point a selector addresses on the target's
// current geometry. other is the intersection partner's geometry, nil for
// every other selector kind. A whole-step selector resolves to the
// geometry's center, so expressions can bind adjustment-style references
// as points.
func resolveSelector(target geom.Shape, sel figure.Selector, other geom.Shape) (geom.Point, error) {
	if target == nil {
		return geom.Point{}, fmt.Errorf("%w: target has no geometry", errSelectorGone)
	}

	switch sel.Kind {
	case figure.SelectWhole, figure.SelectCenter:
		return target.Center(), nil

	case figure.SelectAnchor:
		anchors := target.Anchors()
		if sel.Index >= len(anchors) {
			return geom.Point{}, fmt.Errorf("%w: anchor %d, target has %d", errSelectorGone, sel.Index, len(anchors))
		}
		return anchors[sel.Index], nil

	case figure.SelectVertex:
		poly, ok := target.(geom.Polyline)
		if !ok {
			return geom.Point{}, fmt.Errorf("%w: target has no vertices", errSelectorGone)
		}
		if sel.Index >= len(poly.Vertices) {
			return geom.Point{}, fmt.Errorf("%w: vertex %d, path has %d", errSelectorGone, sel.Index, len(poly.Vertices))
		}
		return poly.Vertices[sel.Index], nil

	case figure.SelectIntersection:
		if other == nil {
			return geom.Point{}, fmt.Errorf("%w: intersection partner has no geometry", errSelectorGone)
		}
		crossings := geom.Intersections(target, other)
		if sel.Index >= len(crossings) {
			return geom.Point{}, fmt.Errorf("%w: intersection %d, shapes cross %d times", errSelectorGone, sel.Index, len(crossings))
		}
		return crossings[sel.Index], nil

	default:
		return geom.Point{}, fmt.Errorf("%w: unknown selector kind %q", errSelectorGone, sel.Kind)
	}
}
