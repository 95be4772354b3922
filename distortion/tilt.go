package distortion

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// tiltDegeneracyEpsilon bounds |R22| below which the tilted sensor is considered edge-on.
const tiltDegeneracyEpsilon = 1e-9

// TiltMatrices is the projection of a tilted image sensor (Scheimpflug) and its derivatives. All
// matrices are 3x3 and act on homogeneous normalized coordinates.
type TiltMatrices struct {
	// Tilt maps untilted to tilted sensor coordinates.
	Tilt *mat.Dense
	// DTiltDTauX is the derivative of Tilt with respect to the tilt angle about the x axis.
	DTiltDTauX *mat.Dense
	// DTiltDTauY is the derivative of Tilt with respect to the tilt angle about the y axis.
	DTiltDTauY *mat.Dense
	// InvTilt is the inverse of Tilt.
	InvTilt *mat.Dense
}

// ComputeTiltProjection builds the tilt projection for the angles tauX and tauY (radians).
//
// With R = Ry(tauY)·Rx(tauX), the projection P = [[R22,0,-R02],[0,R22,-R12],[0,0,1]] brings the
// rotated plane back onto z = 1, and Tilt = P·R. The inverse uses the structure of P rather than a
// general inversion, which requires R22 to be away from zero.
func ComputeTiltProjection(tauX, tauY float64) (*TiltMatrices, error) {
	cTauX, sTauX := math.Cos(tauX), math.Sin(tauX)
	cTauY, sTauY := math.Cos(tauY), math.Sin(tauY)

	rotX := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, cTauX, sTauX,
		0, -sTauX, cTauX,
	})
	rotY := mat.NewDense(3, 3, []float64{
		cTauY, 0, -sTauY,
		0, 1, 0,
		sTauY, 0, cTauY,
	})
	var rotXY mat.Dense
	rotXY.Mul(rotY, rotX)

	r22 := rotXY.At(2, 2)
	if math.Abs(r22) < tiltDegeneracyEpsilon {
		return nil, errors.Wrapf(ErrNumericDegeneracy, "tilt angles (%g, %g) put the sensor edge-on (R22 = %g)",
			tauX, tauY, r22)
	}
	projZ := projectionZ(&rotXY, 1)

	tilt := mat.NewDense(3, 3, nil)
	tilt.Mul(projZ, &rotXY)

	// dR/dtauX = Ry·dRx/dtauX
	dRotX := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		0, -sTauX, cTauX,
		0, -cTauX, -sTauX,
	})
	var dRotXYdTauX mat.Dense
	dRotXYdTauX.Mul(rotY, dRotX)

	// dR/dtauY = dRy/dtauY·Rx
	dRotY := mat.NewDense(3, 3, []float64{
		-sTauY, 0, -cTauY,
		0, 0, 0,
		cTauY, 0, -sTauY,
	})
	var dRotXYdTauY mat.Dense
	dRotXYdTauY.Mul(dRotY, rotX)

	inv := 1 / r22
	invProjZ := mat.NewDense(3, 3, []float64{
		inv, 0, inv * rotXY.At(0, 2),
		0, inv, inv * rotXY.At(1, 2),
		0, 0, 1,
	})
	invTilt := mat.NewDense(3, 3, nil)
	invTilt.Mul(rotXY.T(), invProjZ)

	return &TiltMatrices{
		Tilt:       tilt,
		DTiltDTauX: productDerivative(projZ, &dRotXYdTauX, &rotXY),
		DTiltDTauY: productDerivative(projZ, &dRotXYdTauY, &rotXY),
		InvTilt:    invTilt,
	}, nil
}

// projectionZ builds [[M22,0,-M02],[0,M22,-M12],[0,0,corner]] from m. With m = R and corner = 1 it is
// the projection P; with m = dR and corner = 0 it is dP.
func projectionZ(m mat.Matrix, corner float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m.At(2, 2), 0, -m.At(0, 2),
		0, m.At(2, 2), -m.At(1, 2),
		0, 0, corner,
	})
}

// productDerivative returns d(P·R) = P·dR + dP·R.
func productDerivative(projZ, dRot, rot *mat.Dense) *mat.Dense {
	out := mat.NewDense(3, 3, nil)
	out.Mul(projZ, dRot)
	var second mat.Dense
	second.Mul(projectionZ(dRot, 0), rot)
	out.Add(out, &second)
	return out
}

// Project maps the untilted point (x, y) onto the tilted sensor.
func (tm *TiltMatrices) Project(x, y float64) (float64, float64) {
	return applyHomogeneous(tm.Tilt, x, y)
}

// Unproject maps the tilted sensor point (x, y) back to the untilted plane.
func (tm *TiltMatrices) Unproject(x, y float64) (float64, float64) {
	return applyHomogeneous(tm.InvTilt, x, y)
}

// applyHomogeneous applies h to (x, y, 1). A zero homogeneous coordinate is treated as 1.
func applyHomogeneous(h mat.Matrix, x, y float64) (float64, float64) {
	u := h.At(0, 0)*x + h.At(0, 1)*y + h.At(0, 2)
	v := h.At(1, 0)*x + h.At(1, 1)*y + h.At(1, 2)
	w := h.At(2, 0)*x + h.At(2, 1)*y + h.At(2, 2)
	invW := 1.0
	if w != 0 {
		invW = 1 / w
	}
	return u * invW, v * invW
}

// TiltProjection builds the tilt projection for the model's tilt angles. Conventions without tilt
// coefficients get the identity.
func (m *Model) TiltProjection() (*TiltMatrices, error) {
	return ComputeTiltProjection(m.coeffs.Tx, m.coeffs.Ty)
}
