package geom

// ShapeKind identifies a geometry variant.
type ShapeKind string

// Shape kinds.
const (
	KindDot      ShapeKind = "point"
	KindLine     ShapeKind = "line"
	KindPolyline ShapeKind = "path"
	KindCircle   ShapeKind = "circle"
	KindLabel    ShapeKind = "text"
	KindImage    ShapeKind = "picture"
)

// Shape is the closed set of geometry variants a step's recomputation can
// produce. Anchors returns the shape's snap anchors in canonical order; the
// order is part of the engine's contract because references address anchors
// by index.
type Shape interface {
	// Kind returns the geometry variant.
	Kind() ShapeKind

	// Anchors returns the snap anchors in canonical order.
	Anchors() []Point

	// Center returns the shape's center point.
	Center() Point

	// Transform returns a copy with the affine applied. Circle, Label and
	// Image extents assume a similarity transform (rotation, translation,
	// uniform scale); the engine only builds such transforms.
	Transform(Affine) Shape

	// Degenerate reports whether the shape collapsed to something that
	// cannot be drawn or snapped against.
	Degenerate() bool

	// Equal reports exact equality with another shape.
	Equal(Shape) bool
}

// Dot is the geometry of a point step.
type Dot struct {
	P Point
}

// Kind returns KindDot.
func (d Dot) Kind() ShapeKind { return KindDot }

// Anchors returns the point itself.
func (d Dot) Anchors() []Point { return []Point{d.P} }

// Center returns the point itself.
func (d Dot) Center() Point { return d.P }

// Transform applies the affine to the point.
func (d Dot) Transform(a Affine) Shape { return Dot{P: a.Apply(d.P)} }

// Degenerate always reports false: a point cannot collapse.
func (d Dot) Degenerate() bool { return false }

// Equal reports exact equality.
func (d Dot) Equal(other Shape) bool {
	o, ok := other.(Dot)
	return ok && d.P == o.P
}

// Line is the geometry of a line step.
// Anchor order: start, midpoint, end.
type Line struct {
	Start Point
	End   Point
}

// Kind returns KindLine.
func (l Line) Kind() ShapeKind { return KindLine }

// Anchors returns start, midpoint, end.
func (l Line) Anchors() []Point {
	return []Point{l.Start, l.Start.Midpoint(l.End), l.End}
}

// Center returns the midpoint.
func (l Line) Center() Point { return l.Start.Midpoint(l.End) }

// Transform applies the affine to both endpoints.
func (l Line) Transform(a Affine) Shape {
	return Line{Start: a.Apply(l.Start), End: a.Apply(l.End)}
}

// Degenerate reports whether the endpoints coincide.
func (l Line) Degenerate() bool { return l.Start == l.End }

// Equal reports exact equality.
func (l Line) Equal(other Shape) bool {
	o, ok := other.(Line)
	return ok && l.Start == o.Start && l.End == o.End
}

// Polyline is the geometry of a path step and the raw form of a rect step.
// Anchor order: vertices in order, then edge midpoints in edge order
// (including the closing edge when Closed).
type Polyline struct {
	Vertices []Point
	Closed   bool
}

// Kind returns KindPolyline.
func (p Polyline) Kind() ShapeKind { return KindPolyline }

// Anchors returns the vertices followed by the edge midpoints.
func (p Polyline) Anchors() []Point {
	anchors := make([]Point, 0, 2*len(p.Vertices))
	anchors = append(anchors, p.Vertices...)
	for i := 0; i+1 < len(p.Vertices); i++ {
		anchors = append(anchors, p.Vertices[i].Midpoint(p.Vertices[i+1]))
	}
	if p.Closed && len(p.Vertices) > 2 {
		last := len(p.Vertices) - 1
		anchors = append(anchors, p.Vertices[last].Midpoint(p.Vertices[0]))
	}
	return anchors
}

// Center returns the vertex centroid.
func (p Polyline) Center() Point { return Centroid(p.Vertices) }

// Transform applies the affine to every vertex.
func (p Polyline) Transform(a Affine) Shape {
	vertices := make([]Point, len(p.Vertices))
	for i, v := range p.Vertices {
		vertices[i] = a.Apply(v)
	}
	return Polyline{Vertices: vertices, Closed: p.Closed}
}

// Degenerate reports whether the polyline has fewer than two distinct
// vertices. A rect whose corners all coincide collapses here.
func (p Polyline) Degenerate() bool {
	if len(p.Vertices) < 2 {
		return true
	}
	first := p.Vertices[0]
	for _, v := range p.Vertices[1:] {
		if v != first {
			return false
		}
	}
	return true
}

// Equal reports exact equality, including the closed flag.
func (p Polyline) Equal(other Shape) bool {
	o, ok := other.(Polyline)
	if !ok || p.Closed != o.Closed || len(p.Vertices) != len(o.Vertices) {
		return false
	}
	for i, v := range p.Vertices {
		if v != o.Vertices[i] {
			return false
		}
	}
	return true
}

// Segments returns the polyline's edges in order, including the closing
// edge when Closed.
func (p Polyline) Segments() []Line {
	if len(p.Vertices) < 2 {
		return nil
	}
	segments := make([]Line, 0, len(p.Vertices))
	for i := 0; i+1 < len(p.Vertices); i++ {
		segments = append(segments, Line{Start: p.Vertices[i], End: p.Vertices[i+1]})
	}
	if p.Closed && len(p.Vertices) > 2 {
		last := len(p.Vertices) - 1
		segments = append(segments, Line{Start: p.Vertices[last], End: p.Vertices[0]})
	}
	return segments
}

// Circle is the geometry of a circle step.
// Anchor order: center, then the right, top, left and bottom rim points.
type Circle struct {
	CenterPoint Point
	Radius      float64
}

// Kind returns KindCircle.
func (c Circle) Kind() ShapeKind { return KindCircle }

// Anchors returns the center and the four axis-aligned rim points.
func (c Circle) Anchors() []Point {
	return []Point{
		c.CenterPoint,
		{X: c.CenterPoint.X + c.Radius, Y: c.CenterPoint.Y},
		{X: c.CenterPoint.X, Y: c.CenterPoint.Y + c.Radius},
		{X: c.CenterPoint.X - c.Radius, Y: c.CenterPoint.Y},
		{X: c.CenterPoint.X, Y: c.CenterPoint.Y - c.Radius},
	}
}

// Center returns the circle's center.
func (c Circle) Center() Point { return c.CenterPoint }

// Transform applies the affine, scaling the radius by the transform's
// uniform scale factor.
func (c Circle) Transform(a Affine) Shape {
	return Circle{
		CenterPoint: a.Apply(c.CenterPoint),
		Radius:      c.Radius * a.UniformScale(),
	}
}

// Degenerate reports whether the radius is not positive.
func (c Circle) Degenerate() bool { return c.Radius <= 0 }

// Equal reports exact equality.
func (c Circle) Equal(other Shape) bool {
	o, ok := other.(Circle)
	return ok && c.CenterPoint == o.CenterPoint && c.Radius == o.Radius
}

// Label is the geometry of a text step. Labels stay upright: transforms
// move the origin and scale the size but never rotate the glyphs.
type Label struct {
	At      Point
	Content string
	Size    float64
}

// Kind returns KindLabel.
func (l Label) Kind() ShapeKind { return KindLabel }

// Anchors returns the origin.
func (l Label) Anchors() []Point { return []Point{l.At} }

// Center returns the origin.
func (l Label) Center() Point { return l.At }

// Transform moves the origin and scales the size.
func (l Label) Transform(a Affine) Shape {
	return Label{At: a.Apply(l.At), Content: l.Content, Size: l.Size * a.UniformScale()}
}

// Degenerate reports whether the size is negative.
func (l Label) Degenerate() bool { return l.Size < 0 }

// Equal reports exact equality.
func (l Label) Equal(other Shape) bool {
	o, ok := other.(Label)
	return ok && l.At == o.At && l.Content == o.Content && l.Size == o.Size
}

// Image is the geometry of a picture step: an axis-aligned placement
// rectangle plus the source it was loaded from. Transforms move the origin
// and scale the extents; the placement stays axis-aligned.
// Anchor order: origin, the remaining three corners clockwise, center.
type Image struct {
	At     Point
	Width  float64
	Height float64
	Source string
}

// Kind returns KindImage.
func (im Image) Kind() ShapeKind { return KindImage }

// Anchors returns the four corners followed by the center.
func (im Image) Anchors() []Point {
	return []Point{
		im.At,
		{X: im.At.X + im.Width, Y: im.At.Y},
		{X: im.At.X + im.Width, Y: im.At.Y + im.Height},
		{X: im.At.X, Y: im.At.Y + im.Height},
		im.Center(),
	}
}

// Center returns the placement rectangle's center.
func (im Image) Center() Point {
	return Point{X: im.At.X + im.Width/2, Y: im.At.Y + im.Height/2}
}

// Transform moves the origin and scales the extents.
func (im Image) Transform(a Affine) Shape {
	f := a.UniformScale()
	return Image{
		At:     a.Apply(im.At),
		Width:  im.Width * f,
		Height: im.Height * f,
		Source: im.Source,
	}
}

// Degenerate reports whether either extent is not positive.
func (im Image) Degenerate() bool { return im.Width <= 0 || im.Height <= 0 }

// Equal reports exact equality.
func (im Image) Equal(other Shape) bool {
	o, ok := other.(Image)
	return ok && im == o
}
