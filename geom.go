package mapengine

import "math"

// Vec2 is a 2D vector or point.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in world or screen space.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies within r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return !(o.X >= r.X+r.Width || o.X+o.Width <= r.X ||
		o.Y >= r.Y+r.Height || o.Y+o.Height <= r.Y)
}

// identityTransform is the identity affine matrix [a b c d tx ty].
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// multiplyAffine composes two 2D affine matrices: result = p * c.
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine inverts a 2D affine matrix, returning identity if singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// rotationMatrix builds a pure rotation affine matrix by angle radians about
// the origin, with a zero translation part.
func rotationMatrix(angle float64) [6]float64 {
	sin, cos := math.Sincos(angle)
	return [6]float64{cos, sin, -sin, cos, 0, 0}
}
