// Package recognize classifies raw polyline geometry into known shape
// families. The classification is an annotation: it never replaces the
// raw geometry, it gives adjustments and snapping canonical parameters
// (center, radius, corners) to work against.
package recognize

import (
	"math"

	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

// Kind is a recognized shape family.
type Kind string

// Recognized shape kinds.
const (
	KindCircle Kind = "circle"
	KindRect   Kind = "rect"
)

// Match is the canonical representation of a recognized shape. Center is
// filled for both kinds; Radius only for circles; Corners, Width, Height
// and Angle only for rects.
type Match struct {
	Kind Kind

	Center geom.Point
	Radius float64

	Corners [4]geom.Point
	Width   float64
	Height  float64

	// Angle is the rect's rotation from the x axis, in radians
	Angle float64
}

// Config holds the recognition tolerances.
type Config struct {
	// RadiusTolerance is the maximum relative deviation of a vertex from
	// the mean centroid distance for the circle template
	RadiusTolerance float64

	// AngleTolerance is the allowed deviation from a right angle, in
	// radians, for the rect template
	AngleTolerance float64

	// MinCircleVertices is the fewest vertices the circle template
	// accepts
	MinCircleVertices int
}

// DefaultConfig returns the tolerances used by Classify.
func DefaultConfig() Config {
	return Config{
		RadiusTolerance:   0.05,
		AngleTolerance:    0.1,
		MinCircleVertices: 8,
	}
}

// Classify matches a shape against the templates with default tolerances.
func Classify(shape geom.Shape) *Match {
	return ClassifyWith(shape, DefaultConfig())
}

// ClassifyWith matches a shape against the templates in fixed priority
// order: circle first, then rect. It is a pure function of the geometry;
// a nil result means the shape stays a generic primitive.
func ClassifyWith(shape geom.Shape, cfg Config) *Match {
	switch s := shape.(type) {
	case geom.Circle:
		// Already canonical; expose it so adjustments treat drawn and
		// recognized circles uniformly.
		return &Match{Kind: KindCircle, Center: s.CenterPoint, Radius: s.Radius}
	case geom.Polyline:
		if !s.Closed {
			return nil
		}
		vertices := dropClosingVertex(s.Vertices)
		if m := matchCircle(vertices, cfg); m != nil {
			return m
		}
		return matchRect(vertices, cfg)
	default:
		return nil
	}
}

// dropClosingVertex removes a repeated final vertex so templates see each
// corner once.
func dropClosingVertex(vertices []geom.Point) []geom.Point {
	n := len(vertices)
	if n > 1 && vertices[0].Near(vertices[n-1], 1e-9) {
		return vertices[:n-1]
	}
	return vertices
}

// matchCircle accepts a closed polyline whose vertices are equidistant
// from their centroid within the tolerance.
func matchCircle(vertices []geom.Point, cfg Config) *Match {
	if len(vertices) < cfg.MinCircleVertices {
		return nil
	}

	center := geom.Centroid(vertices)
	mean := 0.0
	for _, v := range vertices {
		mean += center.Distance(v)
	}
	mean /= float64(len(vertices))
	if mean <= 0 {
		return nil
	}

	for _, v := range vertices {
		if math.Abs(center.Distance(v)-mean)/mean > cfg.RadiusTolerance {
			return nil
		}
	}
	return &Match{Kind: KindCircle, Center: center, Radius: mean}
}

// matchRect accepts a closed quadrilateral whose four corner angles are
// right within the tolerance.
func matchRect(vertices []geom.Point, cfg Config) *Match {
	if len(vertices) != 4 {
		return nil
	}

	for i := range vertices {
		prev := vertices[(i+3)%4]
		next := vertices[(i+1)%4]
		a := prev.Sub(vertices[i])
		b := next.Sub(vertices[i])
		if a.Length() == 0 || b.Length() == 0 {
			return nil
		}
		cos := (a.X*b.X + a.Y*b.Y) / (a.Length() * b.Length())
		if math.Abs(math.Acos(cos)-math.Pi/2) > cfg.AngleTolerance {
			return nil
		}
	}

	var corners [4]geom.Point
	copy(corners[:], vertices)
	edge := vertices[1].Sub(vertices[0])
	return &Match{
		Kind:    KindRect,
		Center:  geom.Centroid(vertices),
		Corners: corners,
		Width:   edge.Length(),
		Height:  vertices[2].Sub(vertices[1]).Length(),
		Angle:   math.Atan2(edge.Y, edge.X),
	}
}
