package distortion

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/lensdistort/utils"
)

// Undistort returns a new point holding the undistorted position of the distorted point p. A nil p
// yields a NaN point.
func (m *Model) Undistort(p *r2.Point) *r2.Point {
	return m.UndistortTo(p, nil)
}

// UndistortTo writes the undistorted position of the distorted point p into dst and returns dst. A
// nil dst is allocated; a nil p yields NaN coordinates.
func (m *Model) UndistortTo(p, dst *r2.Point) *r2.Point {
	if dst == nil {
		dst = &r2.Point{}
	}
	if p == nil {
		dst.X, dst.Y = math.NaN(), math.NaN()
		return dst
	}
	dst.X, dst.Y = m.undistort(p.X, p.Y)
	return dst
}

// undistort inverts the model by fixed-point iteration. The forward model has no closed-form inverse,
// so each pass removes the offsets evaluated at the current estimate and divides by the radial scale.
//
// The squared radius is taken from the distorted input on every pass rather than from the estimate.
// That keeps the radial scale constant across passes and is accurate as long as the distortion is
// small. The iteration count is bounded by the convention; conventions with an epsilon stop early
// once successive estimates agree.
func (m *Model) undistort(xd, yd float64) (float64, float64) {
	if m.components.IsNone() {
		return xd, yd
	}
	rsq := xd*xd + yd*yd

	scale := 1.0
	if m.components.HasRadial() {
		scale = m.radialScale(rsq)
	}
	var prismX, prismY float64
	if m.components.HasPrism() {
		prismX, prismY = m.prismOffset(rsq)
	}
	var tilt *TiltMatrices
	if m.conv.epsilon > 0 && m.components.HasRadialRational() && m.components.HasTilt() {
		tilt = m.convergenceTilt()
	}

	xu, yu := xd, yd
	for i := 0; i < m.iterations; i++ {
		dx, dy := prismX, prismY
		if m.components.HasTangential() {
			tx, ty := m.tangentialOffset(xu, yu, rsq)
			dx += tx
			dy += ty
		}
		nextX := (xd - dx) / scale
		nextY := (yd - dy) / scale
		step := stepLength(tilt, xu, yu, nextX, nextY)
		xu, yu = nextX, nextY
		if m.conv.epsilon > 0 && step < m.conv.epsilon {
			break
		}
	}
	return xu, yu
}

// convergenceTilt returns the tilt projection the early exit is measured in, or nil if the tilt
// cannot be used.
func (m *Model) convergenceTilt() *TiltMatrices {
	tilt, err := m.TiltProjection()
	if err != nil {
		m.logger.Warnw("measuring undistort convergence without sensor tilt", "error", err)
		return nil
	}
	return tilt
}

// stepLength is the distance between two successive estimates, measured on the tilted sensor when a
// tilt projection is given.
func stepLength(tilt *TiltMatrices, x0, y0, x1, y1 float64) float64 {
	if tilt != nil {
		x0, y0 = tilt.Project(x0, y0)
		x1, y1 = tilt.Project(x1, y1)
	}
	return math.Sqrt(utils.Square(x1-x0) + utils.Square(y1-y0))
}

// inverseModel undistorts through the Distorter interface.
type inverseModel struct {
	m *Model
}

// Inverse returns a Distorter whose Transform undistorts according to m.
func (m *Model) Inverse() Distorter {
	return &inverseModel{m}
}

// ModelType returns the type of distortion model being inverted.
func (inv *inverseModel) ModelType() DistortionType {
	return inv.m.ModelType()
}

// CheckValid checks if the inverted model is valid.
func (inv *inverseModel) CheckValid() error {
	if inv == nil {
		return InvalidDistortionError("inverse distortion model not provided")
	}
	return inv.m.CheckValid()
}

// Parameters returns the parameters of the inverted model.
func (inv *inverseModel) Parameters() []float64 {
	return inv.m.Parameters()
}

// Transform converts the distorted point (x, y) to its undistorted position.
func (inv *inverseModel) Transform(x, y float64) (float64, float64) {
	return inv.m.undistort(x, y)
}
