package geom

import "math"

const intersectEps = 1e-9

// Intersections returns the points where two shapes cross, in a
// deterministic order: segment-bearing shapes are walked in segment order
// and per-pair intersections are ordered along the first shape. Coincident
// results from tangencies are collapsed to a single point. Shapes without
// an outline (dots, labels, pictures) never intersect anything.
func Intersections(a, b Shape) []Point {
	switch sa := a.(type) {
	case Line:
		return segmentIntersections([]Line{sa}, b)
	case Polyline:
		return segmentIntersections(sa.Segments(), b)
	case Circle:
		switch sb := b.(type) {
		case Line:
			return dedupe(lineCircle(sb, sa))
		case Polyline:
			var pts []Point
			for _, seg := range sb.Segments() {
				pts = append(pts, lineCircle(seg, sa)...)
			}
			return dedupe(pts)
		case Circle:
			return dedupe(circleCircle(sa, sb))
		}
	}
	return nil
}

func segmentIntersections(segs []Line, b Shape) []Point {
	var pts []Point
	for _, seg := range segs {
		switch sb := b.(type) {
		case Line:
			if p, ok := lineLine(seg, sb); ok {
				pts = append(pts, p)
			}
		case Polyline:
			for _, other := range sb.Segments() {
				if p, ok := lineLine(seg, other); ok {
					pts = append(pts, p)
				}
			}
		case Circle:
			pts = append(pts, lineCircle(seg, sb)...)
		}
	}
	return dedupe(pts)
}

// lineLine intersects two segments. Parallel and collinear pairs yield no
// point, even when they overlap: an overlap has no single crossing to
// anchor against.
func lineLine(a, b Line) (Point, bool) {
	d1 := a.End.Sub(a.Start)
	d2 := b.End.Sub(b.Start)
	denom := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(denom) < intersectEps {
		return Point{}, false
	}
	w := b.Start.Sub(a.Start)
	t := (w.X*d2.Y - w.Y*d2.X) / denom
	u := (w.X*d1.Y - w.Y*d1.X) / denom
	if t < -intersectEps || t > 1+intersectEps || u < -intersectEps || u > 1+intersectEps {
		return Point{}, false
	}
	return a.Start.Add(d1.Scale(t)), true
}

// lineCircle intersects a segment with a circle, returning hits ordered
// along the segment.
func lineCircle(l Line, c Circle) []Point {
	d := l.End.Sub(l.Start)
	f := l.Start.Sub(c.CenterPoint)
	qa := d.X*d.X + d.Y*d.Y
	if qa < intersectEps {
		return nil
	}
	qb := 2 * (f.X*d.X + f.Y*d.Y)
	qc := f.X*f.X + f.Y*f.Y - c.Radius*c.Radius
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return nil
	}
	root := math.Sqrt(disc)
	var pts []Point
	for _, t := range []float64{(-qb - root) / (2 * qa), (-qb + root) / (2 * qa)} {
		if t < -intersectEps || t > 1+intersectEps {
			continue
		}
		pts = append(pts, l.Start.Add(d.Scale(t)))
	}
	return pts
}

// circleCircle intersects two circles. The pair of crossings is ordered by
// the perpendicular offset sign so the result is stable for a given
// argument order.
func circleCircle(a, b Circle) []Point {
	d := b.CenterPoint.Sub(a.CenterPoint)
	dist := d.Length()
	if dist < intersectEps {
		return nil
	}
	if dist > a.Radius+b.Radius+intersectEps || dist < math.Abs(a.Radius-b.Radius)-intersectEps {
		return nil
	}
	// Distance from a's center to the chord through the crossings.
	along := (dist*dist + a.Radius*a.Radius - b.Radius*b.Radius) / (2 * dist)
	offSq := a.Radius*a.Radius - along*along
	if offSq < 0 {
		offSq = 0
	}
	off := math.Sqrt(offSq)
	mid := a.CenterPoint.Add(d.Scale(along / dist))
	if off < intersectEps {
		return []Point{mid}
	}
	perp := Vec2{X: -d.Y / dist, Y: d.X / dist}
	return []Point{
		mid.Add(perp.Scale(off)),
		mid.Add(perp.Scale(-off)),
	}
}

func dedupe(pts []Point) []Point {
	if len(pts) < 2 {
		return pts
	}
	out := pts[:1]
	for _, p := range pts[1:] {
		seen := false
		for _, q := range out {
			if p.Near(q, intersectEps) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, p)
		}
	}
	return out
}
