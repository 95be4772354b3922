package distortion

import (
	"math"

	"github.com/golang/geo/r2"
)

// Distort returns a new point holding the distorted position of the undistorted point p. A nil p
// yields a NaN point.
func (m *Model) Distort(p *r2.Point) *r2.Point {
	return m.DistortTo(p, nil)
}

// DistortTo writes the distorted position of the undistorted point p into dst and returns dst. A nil
// dst is allocated; a nil p yields NaN coordinates.
func (m *Model) DistortTo(p, dst *r2.Point) *r2.Point {
	if dst == nil {
		dst = &r2.Point{}
	}
	if p == nil {
		dst.X, dst.Y = math.NaN(), math.NaN()
		return dst
	}
	dst.X, dst.Y = m.distort(p.X, p.Y)
	return dst
}

func (m *Model) distort(x, y float64) (float64, float64) {
	if m.components.IsNone() {
		return x, y
	}
	rsq := x*x + y*y
	xd, yd := x, y
	if m.components.HasRadial() {
		scale := m.radialScale(rsq)
		xd, yd = x*scale, y*scale
	}
	if m.components.HasTangential() {
		dx, dy := m.tangentialOffset(x, y, rsq)
		xd += dx
		yd += dy
	}
	if m.components.HasPrism() {
		dx, dy := m.prismOffset(rsq)
		xd += dx
		yd += dy
	}
	return xd, yd
}

// radialScale returns the radial magnification at squared radius rsq.
func (m *Model) radialScale(rsq float64) float64 {
	c := &m.coeffs
	r4 := rsq * rsq
	r6 := r4 * rsq
	if m.conv.radial == rationalRadial {
		num := 1 + c.K1*rsq + c.K2*r4 + c.K3*r6
		den := 1 + c.K4*rsq + c.K5*r4 + c.K6*r6
		return num / den
	}
	return 1 + c.K1*rsq + c.K2*r4 + c.K3*r6 + c.K4*r4*r4
}

// tangentialOffset returns the decentering offset at (x, y), where rsq is the squared radius the
// caller evaluates the model at.
func (m *Model) tangentialOffset(x, y, rsq float64) (float64, float64) {
	c := &m.coeffs
	xy2 := 2 * x * y
	if m.conv.tangential == openCVTangential {
		return c.P1*xy2 + c.P2*(rsq+2*x*x), c.P1*(rsq+2*y*y) + c.P2*xy2
	}
	scale := 1 + c.P3*rsq + c.P4*rsq*rsq
	return (c.P1*(rsq+2*x*x) + c.P2*xy2) * scale, (c.P2*(rsq+2*y*y) + c.P1*xy2) * scale
}

// prismOffset returns the thin prism offset at squared radius rsq.
func (m *Model) prismOffset(rsq float64) (float64, float64) {
	c := &m.coeffs
	r4 := rsq * rsq
	return c.S1*rsq + c.S2*r4, c.S3*rsq + c.S4*r4
}
