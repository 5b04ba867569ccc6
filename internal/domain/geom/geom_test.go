package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint(t *testing.T) {
	t.Run("computes distance and midpoint", func(t *testing.T) {
		a := Pt(0, 0)
		b := Pt(3, 4)

		assert.InDelta(t, 5.0, a.Distance(b), 1e-12)
		assert.Equal(t, Pt(1.5, 2), a.Midpoint(b))
	})

	t.Run("near uses the supplied epsilon", func(t *testing.T) {
		a := Pt(1, 1)

		assert.True(t, a.Near(Pt(1.0005, 1), 1e-3))
		assert.False(t, a.Near(Pt(1.002, 1), 1e-3))
	})

	t.Run("centroid of no points is the origin", func(t *testing.T) {
		assert.Equal(t, Point{}, Centroid(nil))
	})

	t.Run("centroid averages the vertices", func(t *testing.T) {
		pts := []Point{Pt(0, 0), Pt(4, 0), Pt(4, 2), Pt(0, 2)}

		assert.Equal(t, Pt(2, 1), Centroid(pts))
	})
}

func TestAffine(t *testing.T) {
	t.Run("identity leaves points alone", func(t *testing.T) {
		p := Pt(3, -7)

		assert.Equal(t, p, Identity().Apply(p))
	})

	t.Run("translate shifts by the vector", func(t *testing.T) {
		a := Translate(Vec2{X: 2, Y: -1})

		assert.Equal(t, Pt(5, 3), a.Apply(Pt(3, 4)))
	})

	t.Run("scale about a point keeps that point fixed", func(t *testing.T) {
		pivot := Pt(10, 10)
		a := Scale(3).About(pivot)

		assert.Equal(t, pivot, a.Apply(pivot))
		assert.Equal(t, Pt(13, 10), a.Apply(Pt(11, 10)))
	})

	t.Run("rotate about a point keeps that point fixed", func(t *testing.T) {
		pivot := Pt(1, 1)
		a := Rotate(math.Pi / 2).About(pivot)

		got := a.Apply(Pt(2, 1))
		assert.True(t, got.Near(Pt(1, 2), 1e-12), "got %v", got)
	})

	t.Run("mul composes right to left", func(t *testing.T) {
		scale := Scale(2)
		shift := Translate(Vec2{X: 1, Y: 0})

		// shift then scale
		a := scale.Mul(shift)
		assert.Equal(t, Pt(4, 0), a.Apply(Pt(1, 0)))
	})

	t.Run("uniform scale is recovered from rotations and scales", func(t *testing.T) {
		a := Rotate(0.7).Mul(Scale(2.5)).About(Pt(4, 4))

		require.True(t, a.IsUniform())
		assert.InDelta(t, 2.5, a.UniformScale(), 1e-12)
	})
}

func TestShapeAnchors(t *testing.T) {
	t.Run("dot anchors to itself", func(t *testing.T) {
		d := Dot{P: Pt(2, 3)}

		assert.Equal(t, []Point{Pt(2, 3)}, d.Anchors())
	})

	t.Run("line anchors are start mid end", func(t *testing.T) {
		l := Line{Start: Pt(0, 0), End: Pt(10, 0)}

		assert.Equal(t, []Point{Pt(0, 0), Pt(5, 0), Pt(10, 0)}, l.Anchors())
	})

	t.Run("open polyline anchors are vertices then edge midpoints", func(t *testing.T) {
		p := Polyline{Vertices: []Point{Pt(0, 0), Pt(2, 0), Pt(2, 2)}}

		assert.Equal(t, []Point{
			Pt(0, 0), Pt(2, 0), Pt(2, 2),
			Pt(1, 0), Pt(2, 1),
		}, p.Anchors())
	})

	t.Run("closed polyline adds the closing edge midpoint", func(t *testing.T) {
		p := Polyline{Vertices: []Point{Pt(0, 0), Pt(2, 0), Pt(2, 2), Pt(0, 2)}, Closed: true}

		anchors := p.Anchors()
		require.Len(t, anchors, 8)
		assert.Equal(t, Pt(0, 1), anchors[7])
	})

	t.Run("circle anchors are center then rim points", func(t *testing.T) {
		c := Circle{CenterPoint: Pt(5, 5), Radius: 2}

		assert.Equal(t, []Point{
			Pt(5, 5), Pt(7, 5), Pt(5, 7), Pt(3, 5), Pt(5, 3),
		}, c.Anchors())
	})

	t.Run("picture anchors are corners then center", func(t *testing.T) {
		im := Image{At: Pt(0, 0), Width: 4, Height: 2, Source: "logo.png"}

		assert.Equal(t, []Point{
			Pt(0, 0), Pt(4, 0), Pt(4, 2), Pt(0, 2), Pt(2, 1),
		}, im.Anchors())
	})
}

func TestShapeTransform(t *testing.T) {
	t.Run("circle radius scales with uniform transforms", func(t *testing.T) {
		c := Circle{CenterPoint: Pt(1, 1), Radius: 2}

		got := c.Transform(Scale(3).About(Pt(1, 1)))

		require.IsType(t, Circle{}, got)
		scaled := got.(Circle)
		assert.Equal(t, Pt(1, 1), scaled.CenterPoint)
		assert.InDelta(t, 6.0, scaled.Radius, 1e-12)
	})

	t.Run("rotation preserves circle radius", func(t *testing.T) {
		c := Circle{CenterPoint: Pt(4, 0), Radius: 1.5}

		got := c.Transform(Rotate(math.Pi)).(Circle)

		assert.True(t, got.CenterPoint.Near(Pt(-4, 0), 1e-12))
		assert.InDelta(t, 1.5, got.Radius, 1e-12)
	})

	t.Run("polyline keeps its closed flag", func(t *testing.T) {
		p := Polyline{Vertices: []Point{Pt(0, 0), Pt(1, 0), Pt(1, 1)}, Closed: true}

		got := p.Transform(Translate(Vec2{X: 1, Y: 1})).(Polyline)

		assert.True(t, got.Closed)
		assert.Equal(t, Pt(1, 1), got.Vertices[0])
	})

	t.Run("label keeps its content and scales its size", func(t *testing.T) {
		l := Label{At: Pt(0, 0), Content: "A", Size: 12}

		got := l.Transform(Scale(2)).(Label)

		assert.Equal(t, "A", got.Content)
		assert.InDelta(t, 24.0, got.Size, 1e-12)
	})
}

func TestShapeDegenerate(t *testing.T) {
	t.Run("zero length line is degenerate", func(t *testing.T) {
		assert.True(t, Line{Start: Pt(1, 1), End: Pt(1, 1)}.Degenerate())
		assert.False(t, Line{Start: Pt(1, 1), End: Pt(2, 1)}.Degenerate())
	})

	t.Run("zero radius circle is degenerate", func(t *testing.T) {
		assert.True(t, Circle{CenterPoint: Pt(0, 0), Radius: 0}.Degenerate())
		assert.False(t, Circle{CenterPoint: Pt(0, 0), Radius: 0.1}.Degenerate())
	})

	t.Run("polyline with coincident vertices is degenerate", func(t *testing.T) {
		p := Polyline{Vertices: []Point{Pt(2, 2), Pt(2, 2), Pt(2, 2), Pt(2, 2)}, Closed: true}

		assert.True(t, p.Degenerate())
	})

	t.Run("picture with zero extent is degenerate", func(t *testing.T) {
		assert.True(t, Image{At: Pt(0, 0), Width: 0, Height: 3}.Degenerate())
	})
}

func TestShapeEqual(t *testing.T) {
	t.Run("equality is exact not approximate", func(t *testing.T) {
		a := Dot{P: Pt(1, 1)}
		b := Dot{P: Pt(1, 1 + 1e-15)}

		assert.False(t, a.Equal(b))
		assert.True(t, a.Equal(Dot{P: Pt(1, 1)}))
	})

	t.Run("different kinds never compare equal", func(t *testing.T) {
		assert.False(t, Dot{P: Pt(0, 0)}.Equal(Circle{CenterPoint: Pt(0, 0), Radius: 1}))
	})
}

func TestIntersections(t *testing.T) {
	t.Run("crossing segments meet at one point", func(t *testing.T) {
		a := Line{Start: Pt(0, 0), End: Pt(4, 4)}
		b := Line{Start: Pt(0, 4), End: Pt(4, 0)}

		pts := Intersections(a, b)

		require.Len(t, pts, 1)
		assert.True(t, pts[0].Near(Pt(2, 2), 1e-9))
	})

	t.Run("parallel segments never meet", func(t *testing.T) {
		a := Line{Start: Pt(0, 0), End: Pt(4, 0)}
		b := Line{Start: Pt(0, 1), End: Pt(4, 1)}

		assert.Empty(t, Intersections(a, b))
	})

	t.Run("segment through a circle hits twice in segment order", func(t *testing.T) {
		l := Line{Start: Pt(-3, 0), End: Pt(3, 0)}
		c := Circle{CenterPoint: Pt(0, 0), Radius: 1}

		pts := Intersections(l, c)

		require.Len(t, pts, 2)
		assert.True(t, pts[0].Near(Pt(-1, 0), 1e-9))
		assert.True(t, pts[1].Near(Pt(1, 0), 1e-9))
	})

	t.Run("tangent segment hits once", func(t *testing.T) {
		l := Line{Start: Pt(-3, 1), End: Pt(3, 1)}
		c := Circle{CenterPoint: Pt(0, 0), Radius: 1}

		pts := Intersections(l, c)

		require.Len(t, pts, 1)
		assert.True(t, pts[0].Near(Pt(0, 1), 1e-6))
	})

	t.Run("overlapping circles meet twice", func(t *testing.T) {
		a := Circle{CenterPoint: Pt(0, 0), Radius: 2}
		b := Circle{CenterPoint: Pt(2, 0), Radius: 2}

		pts := Intersections(a, b)

		require.Len(t, pts, 2)
		for _, p := range pts {
			assert.InDelta(t, 2.0, a.CenterPoint.Distance(p), 1e-9)
			assert.InDelta(t, 2.0, b.CenterPoint.Distance(p), 1e-9)
		}
	})

	t.Run("distant circles never meet", func(t *testing.T) {
		a := Circle{CenterPoint: Pt(0, 0), Radius: 1}
		b := Circle{CenterPoint: Pt(10, 0), Radius: 1}

		assert.Empty(t, Intersections(a, b))
	})

	t.Run("polyline intersections walk segments in order", func(t *testing.T) {
		p := Polyline{Vertices: []Point{Pt(0, 1), Pt(2, 1), Pt(2, -1), Pt(4, -1)}}
		l := Line{Start: Pt(0, 0), End: Pt(4, 0)}

		pts := Intersections(p, l)

		require.Len(t, pts, 1)
		assert.True(t, pts[0].Near(Pt(2, 0), 1e-9))
	})

	t.Run("dots have no outline to intersect", func(t *testing.T) {
		assert.Empty(t, Intersections(Dot{P: Pt(0, 0)}, Line{Start: Pt(-1, 0), End: Pt(1, 0)}))
	})
}
