// Package distortion maps normalized image-plane coordinates between an ideal pinhole projection and
// the distorted projection of a real lens. Three coefficient conventions are supported (Brown, OpenCV
// and Agisoft Metashape); all of them are served by the same Model, parameterized by a Convention.
package distortion

import (
	"math"

	"github.com/pkg/errors"
)

// DistortionType is the name of the distortion model.
type DistortionType string

const (
	// BrownDistortionType is the radial/tangential model with four radial and four decentering terms.
	BrownDistortionType = DistortionType("brown")
	// OpenCVDistortionType is the OpenCV model with rational radial, thin prism and sensor tilt terms.
	OpenCVDistortionType = DistortionType("opencv")
	// MetashapeDistortionType is the reduced radial/tangential model used by Agisoft Metashape.
	MetashapeDistortionType = DistortionType("agisoft-metashape")
)

// Distorter defines a Transform that takes an undistorted point and distorts it according to the model.
type Distorter interface {
	ModelType() DistortionType
	CheckValid() error
	Parameters() []float64
	Transform(x, y float64) (float64, float64)
}

// NewDistorter returns a Model given a registered DistortionType and its parameters in the
// convention's wire order.
func NewDistorter(distortionType DistortionType, parameters []float64) (*Model, error) {
	conv, ok := LookupConvention(distortionType)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "do not know how to parse %q distortion model", distortionType)
	}
	return NewModelFromFloat64s(conv, parameters)
}

// ModelType returns the identifier of the model's convention.
func (m *Model) ModelType() DistortionType {
	return m.conv.name
}

// CheckValid checks that the model exists and holds finite coefficients.
func (m *Model) CheckValid() error {
	if m == nil || m.conv == nil {
		return InvalidDistortionError("distortion model not provided")
	}
	for _, f := range m.conv.fields {
		if v := m.coeffs.Get(f); math.IsNaN(v) || math.IsInf(v, 0) {
			return InvalidDistortionError("coefficient " + f.String() + " is not finite")
		}
	}
	return nil
}

// Parameters returns the coefficients of the model in the convention's full wire order.
func (m *Model) Parameters() []float64 {
	if m == nil {
		return []float64{}
	}
	return m.CoefficientsFloat64()
}

// Transform distorts the undistorted point (x, y).
func (m *Model) Transform(x, y float64) (float64, float64) {
	return m.distort(x, y)
}
