package recognize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

// regularPolygon builds n vertices at the given radius around a center.
func regularPolygon(center geom.Point, radius float64, n int) []geom.Point {
	vertices := make([]geom.Point, n)
	for i := range vertices {
		a := 2 * math.Pi * float64(i) / float64(n)
		vertices[i] = geom.Pt(center.X+radius*math.Cos(a), center.Y+radius*math.Sin(a))
	}
	return vertices
}

func TestClassifyCircle(t *testing.T) {
	t.Parallel()

	t.Run("equidistant closed polyline matches", func(t *testing.T) {
		t.Parallel()
		poly := geom.Polyline{
			Vertices: regularPolygon(geom.Pt(2, 3), 5, 16),
			Closed:   true,
		}

		m := Classify(poly)

		require.NotNil(t, m)
		assert.Equal(t, KindCircle, m.Kind)
		assert.InDelta(t, 2, m.Center.X, 1e-9)
		assert.InDelta(t, 3, m.Center.Y, 1e-9)
		assert.InDelta(t, 5, m.Radius, 1e-9)
	})

	t.Run("an outlier vertex breaks the match", func(t *testing.T) {
		t.Parallel()
		vertices := regularPolygon(geom.Pt(0, 0), 5, 16)
		vertices[4] = geom.Pt(0, 7)

		m := Classify(geom.Polyline{Vertices: vertices, Closed: true})

		assert.Nil(t, m)
	})

	t.Run("too few vertices fall through to the rect template", func(t *testing.T) {
		t.Parallel()
		// A square is equidistant from its centroid but has only four
		// vertices, so the circle template must not claim it.
		m := Classify(geom.Polyline{
			Vertices: regularPolygon(geom.Pt(0, 0), 3, 4),
			Closed:   true,
		})

		require.NotNil(t, m)
		assert.Equal(t, KindRect, m.Kind)
	})

	t.Run("open polylines never match", func(t *testing.T) {
		t.Parallel()
		m := Classify(geom.Polyline{
			Vertices: regularPolygon(geom.Pt(0, 0), 5, 16),
			Closed:   false,
		})

		assert.Nil(t, m)
	})

	t.Run("drawn circles expose their canonical parameters", func(t *testing.T) {
		t.Parallel()
		m := Classify(geom.Circle{CenterPoint: geom.Pt(1, 1), Radius: 4})

		require.NotNil(t, m)
		assert.Equal(t, KindCircle, m.Kind)
		assert.Equal(t, geom.Pt(1, 1), m.Center)
		assert.Equal(t, 4.0, m.Radius)
	})
}

func TestClassifyRect(t *testing.T) {
	t.Parallel()

	t.Run("axis-aligned rectangle", func(t *testing.T) {
		t.Parallel()
		poly := geom.Polyline{
			Vertices: []geom.Point{
				geom.Pt(0, 0), geom.Pt(4, 0), geom.Pt(4, 3), geom.Pt(0, 3),
			},
			Closed: true,
		}

		m := Classify(poly)

		require.NotNil(t, m)
		assert.Equal(t, KindRect, m.Kind)
		assert.InDelta(t, 4, m.Width, 1e-9)
		assert.InDelta(t, 3, m.Height, 1e-9)
		assert.InDelta(t, 0, m.Angle, 1e-9)
		assert.InDelta(t, 2, m.Center.X, 1e-9)
		assert.InDelta(t, 1.5, m.Center.Y, 1e-9)
	})

	t.Run("rotated square carries its angle", func(t *testing.T) {
		t.Parallel()
		r := math.Sqrt2
		poly := geom.Polyline{
			Vertices: []geom.Point{
				geom.Pt(0, 0), geom.Pt(r, r), geom.Pt(0, 2*r), geom.Pt(-r, r),
			},
			Closed: true,
		}

		m := Classify(poly)

		require.NotNil(t, m)
		assert.Equal(t, KindRect, m.Kind)
		assert.InDelta(t, math.Pi/4, m.Angle, 1e-9)
		assert.InDelta(t, 2, m.Width, 1e-9)
		assert.InDelta(t, 2, m.Height, 1e-9)
	})

	t.Run("a repeated closing vertex is tolerated", func(t *testing.T) {
		t.Parallel()
		poly := geom.Polyline{
			Vertices: []geom.Point{
				geom.Pt(0, 0), geom.Pt(4, 0), geom.Pt(4, 3), geom.Pt(0, 3), geom.Pt(0, 0),
			},
			Closed: true,
		}

		m := Classify(poly)

		require.NotNil(t, m)
		assert.Equal(t, KindRect, m.Kind)
	})

	t.Run("skewed quadrilaterals stay generic", func(t *testing.T) {
		t.Parallel()
		poly := geom.Polyline{
			Vertices: []geom.Point{
				geom.Pt(0, 0), geom.Pt(4, 0), geom.Pt(5, 2), geom.Pt(1, 2),
			},
			Closed: true,
		}

		assert.Nil(t, Classify(poly))
	})

	t.Run("slightly off angles match within tolerance", func(t *testing.T) {
		t.Parallel()
		poly := geom.Polyline{
			Vertices: []geom.Point{
				geom.Pt(0, 0), geom.Pt(4, 0.05), geom.Pt(4, 3), geom.Pt(0, 3),
			},
			Closed: true,
		}

		m := Classify(poly)

		require.NotNil(t, m)
		assert.Equal(t, KindRect, m.Kind)
	})
}

func TestClassifyOtherShapes(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Classify(geom.Dot{P: geom.Pt(0, 0)}))
	assert.Nil(t, Classify(geom.Line{Start: geom.Pt(0, 0), End: geom.Pt(1, 1)}))
	assert.Nil(t, Classify(nil))
}
