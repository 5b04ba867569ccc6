package geom

import "math"

// Affine is a 2D affine transform. Applying it to a point computes
//
//	x' = XX*x + XY*y + TX
//	y' = YX*x + YY*y + TY
type Affine struct {
	XX, XY float64
	YX, YY float64
	TX, TY float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{XX: 1, YY: 1}
}

// Translate returns a transform that displaces by v.
func Translate(v Vec2) Affine {
	return Affine{XX: 1, YY: 1, TX: v.X, TY: v.Y}
}

// Scale returns a uniform scale by f about the origin.
func Scale(f float64) Affine {
	return Affine{XX: f, YY: f}
}

// Rotate returns a rotation by theta radians about the origin,
// counterclockwise in a y-up plane.
func Rotate(theta float64) Affine {
	sin, cos := math.Sincos(theta)
	return Affine{XX: cos, XY: -sin, YX: sin, YY: cos}
}

// About recenters the transform so it acts about p instead of the origin.
func (a Affine) About(p Point) Affine {
	return Translate(p.Sub(Point{})).Mul(a).Mul(Translate(Point{}.Sub(p)))
}

// Mul returns the composition a∘b: b is applied first, then a.
func (a Affine) Mul(b Affine) Affine {
	return Affine{
		XX: a.XX*b.XX + a.XY*b.YX,
		XY: a.XX*b.XY + a.XY*b.YY,
		YX: a.YX*b.XX + a.YY*b.YX,
		YY: a.YX*b.XY + a.YY*b.YY,
		TX: a.XX*b.TX + a.XY*b.TY + a.TX,
		TY: a.YX*b.TX + a.YY*b.TY + a.TY,
	}
}

// Apply transforms the point p.
func (a Affine) Apply(p Point) Point {
	return Point{
		X: a.XX*p.X + a.XY*p.Y + a.TX,
		Y: a.YX*p.X + a.YY*p.Y + a.TY,
	}
}

// IsUniform reports whether the transform preserves circles: a rotation
// and/or uniform scale with translation, without shear or anisotropy.
func (a Affine) IsUniform() bool {
	const eps = 1e-9
	return math.Abs(a.XX-a.YY) <= eps && math.Abs(a.XY+a.YX) <= eps
}

// UniformScale returns the scale factor of a uniform transform.
// Meaningful only when IsUniform reports true.
func (a Affine) UniformScale() float64 {
	return math.Hypot(a.XX, a.YX)
}
