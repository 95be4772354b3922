package distortion

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/lensdistort/logging"
)

// Model holds the coefficients of one lens under one convention and evaluates the distortion and its
// inverse. A Model is not safe for concurrent mutation; concurrent Distort/Undistort calls on a Model
// nobody mutates are fine.
type Model struct {
	conv       *Convention
	coeffs     Coefficients
	components Components
	iterations int
	logger     logging.Logger
}

// NewModel returns a Model with all coefficients at zero, i.e. no distortion.
func NewModel(conv *Convention) *Model {
	return &Model{
		conv:       conv,
		iterations: conv.iterations,
		logger:     logging.NewBlankLogger("distortion"),
	}
}

// NewBrown returns a Brown model.
func NewBrown(k1, k2, k3, k4, p1, p2, p3, p4 float64) *Model {
	m := NewModel(BrownConvention)
	m.store(Coefficients{K1: k1, K2: k2, K3: k3, K4: k4, P1: p1, P2: p2, P3: p3, P4: p4})
	return m
}

// NewOpenCV returns an OpenCV model. The tilt angles tx and ty are in radians.
func NewOpenCV(k1, k2, k3, k4, k5, k6, p1, p2, s1, s2, s3, s4, tx, ty float64) *Model {
	m := NewModel(OpenCVConvention)
	m.store(Coefficients{
		K1: k1, K2: k2, K3: k3, K4: k4, K5: k5, K6: k6,
		P1: p1, P2: p2,
		S1: s1, S2: s2, S3: s3, S4: s4,
		Tx: tx, Ty: ty,
	})
	return m
}

// NewMetashape returns an Agisoft Metashape model.
func NewMetashape(k1, k2, k3, k4, p1, p2 float64) *Model {
	m := NewModel(MetashapeConvention)
	m.store(Coefficients{K1: k1, K2: k2, K3: k3, K4: k4, P1: p1, P2: p2})
	return m
}

// NewModelFromCoefficients returns a model holding coeffs. Fields the convention does not use must be 0.
func NewModelFromCoefficients(conv *Convention, coeffs Coefficients) (*Model, error) {
	m := NewModel(conv)
	if err := m.SetCoefficients(coeffs); err != nil {
		return nil, err
	}
	return m, nil
}

// NewModelFromVector returns a model whose coefficients are read from v in the convention's wire order.
func NewModelFromVector(conv *Convention, v mat.Vector) (*Model, error) {
	m := NewModel(conv)
	if err := m.SetCoefficientsVector(v); err != nil {
		return nil, err
	}
	return m, nil
}

// NewModelFromFloat32s returns a model whose coefficients are read from values in the convention's wire order.
func NewModelFromFloat32s(conv *Convention, values []float32) (*Model, error) {
	m := NewModel(conv)
	if err := m.SetCoefficientsFloat32(values); err != nil {
		return nil, err
	}
	return m, nil
}

// NewModelFromFloat64s returns a model whose coefficients are read from values in the convention's wire order.
func NewModelFromFloat64s(conv *Convention, values []float64) (*Model, error) {
	m := NewModel(conv)
	if err := m.SetCoefficientsFloat64(values); err != nil {
		return nil, err
	}
	return m, nil
}

// SetLogger replaces the logger the model reports solver problems to.
func (m *Model) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = logging.NewBlankLogger("distortion")
	}
	m.logger = logger
}

// Convention returns the model's convention descriptor.
func (m *Model) Convention() *Convention {
	return m.conv
}

// Components returns the term groups active for the current coefficients.
func (m *Model) Components() Components {
	return m.components
}

// Coefficients returns a copy of the current coefficients.
func (m *Model) Coefficients() Coefficients {
	return m.coeffs
}

// UndistortIterations returns the iteration bound of the inverse solver.
func (m *Model) UndistortIterations() int {
	return m.iterations
}

// SetUndistortIterations changes the iteration bound of the inverse solver. Only conventions with a
// settable bound accept it.
func (m *Model) SetUndistortIterations(n int) error {
	if !m.conv.iterationsSettable {
		return errors.Wrapf(ErrInvalidArgument, "%q distortion has a fixed undistort iteration count of %d",
			m.conv.name, m.conv.iterations)
	}
	if n < 1 {
		return errors.Wrapf(ErrInvalidArgument, "undistort iteration count must be at least 1, got %d", n)
	}
	m.iterations = n
	return nil
}

// store swaps in a new coefficient set and recomputes the component mask.
func (m *Model) store(coeffs Coefficients) {
	m.coeffs = coeffs
	m.components = m.conv.Classify(coeffs)
	m.logger.Debugw("distortion coefficients updated", "convention", m.conv.name, "components", m.components.String())
}

// SetCoefficients replaces every coefficient. It fails without modifying the model if a field the
// convention does not use is non-zero.
func (m *Model) SetCoefficients(coeffs Coefficients) error {
	for f := Field(0); f < numFields; f++ {
		if !m.conv.Uses(f) && coeffs.Get(f) != 0 {
			return errors.Wrapf(ErrInvalidArgument, "%q distortion has no %s coefficient", m.conv.name, f)
		}
	}
	m.store(coeffs)
	return nil
}

// SetCoefficientsVector reads the coefficients from v in the convention's wire order. A nil or empty
// vector resets the model to no distortion.
func (m *Model) SetCoefficientsVector(v mat.Vector) error {
	n := vectorLen(v)
	if n == 0 {
		return m.setFrom(0, "vector", nil)
	}
	return m.setFrom(n, "vector", v.AtVec)
}

// SetCoefficientsFloat32 reads the coefficients from values in the convention's wire order. A nil or
// empty slice resets the model to no distortion.
func (m *Model) SetCoefficientsFloat32(values []float32) error {
	return m.setFrom(len(values), "array", func(i int) float64 { return float64(values[i]) })
}

// SetCoefficientsFloat64 reads the coefficients from values in the convention's wire order. A nil or
// empty slice resets the model to no distortion.
func (m *Model) SetCoefficientsFloat64(values []float64) error {
	return m.setFrom(len(values), "array", func(i int) float64 { return values[i] })
}

func (m *Model) setFrom(length int, container string, at func(int) float64) error {
	if length == 0 {
		m.store(Coefficients{})
		return nil
	}
	layout, ok := m.conv.layouts[length]
	if !ok {
		return NewInvalidLengthError(m.conv.name, container, length, m.conv.lengths)
	}
	var coeffs Coefficients
	for i, f := range layout {
		coeffs.Set(f, at(i))
	}
	m.store(coeffs)
	return nil
}

// fillInto writes the coefficients of the layout matching length through set.
func (m *Model) fillInto(length int, container string, set func(int, float64)) error {
	layout, ok := m.conv.layouts[length]
	if !ok {
		return NewInvalidLengthError(m.conv.name, container, length, m.conv.lengths)
	}
	for i, f := range layout {
		set(i, m.coeffs.Get(f))
	}
	return nil
}

// CoefficientsVector returns a new vector holding every coefficient in the convention's wire order.
func (m *Model) CoefficientsVector() *mat.VecDense {
	return mat.NewVecDense(m.conv.FullLength(), m.CoefficientsFloat64())
}

// CoefficientsVectorInto fills dst with the coefficients of the layout matching its length and
// returns dst.
func (m *Model) CoefficientsVectorInto(dst *mat.VecDense) (*mat.VecDense, error) {
	if err := m.fillInto(vectorLen(dst), "vector", func(i int, v float64) { dst.SetVec(i, v) }); err != nil {
		return dst, err
	}
	return dst, nil
}

// CoefficientsFloat32 returns a new slice holding every coefficient in the convention's wire order.
func (m *Model) CoefficientsFloat32() []float32 {
	out := make([]float32, m.conv.FullLength())
	for i, f := range m.conv.fields {
		out[i] = float32(m.coeffs.Get(f))
	}
	return out
}

// CoefficientsFloat32Into fills dst with the coefficients of the layout matching its length and
// returns dst.
func (m *Model) CoefficientsFloat32Into(dst []float32) ([]float32, error) {
	if err := m.fillInto(len(dst), "array", func(i int, v float64) { dst[i] = float32(v) }); err != nil {
		return dst, err
	}
	return dst, nil
}

// CoefficientsFloat64 returns a new slice holding every coefficient in the convention's wire order.
func (m *Model) CoefficientsFloat64() []float64 {
	out := make([]float64, m.conv.FullLength())
	for i, f := range m.conv.fields {
		out[i] = m.coeffs.Get(f)
	}
	return out
}

// CoefficientsFloat64Into fills dst with the coefficients of the layout matching its length and
// returns dst.
func (m *Model) CoefficientsFloat64Into(dst []float64) ([]float64, error) {
	if err := m.fillInto(len(dst), "array", func(i int, v float64) { dst[i] = v }); err != nil {
		return dst, err
	}
	return dst, nil
}

// vectorLen returns the length of v, treating nil and typed-nil vectors as empty.
func vectorLen(v mat.Vector) int {
	if v == nil {
		return 0
	}
	if vd, ok := v.(*mat.VecDense); ok && (vd == nil || vd.IsEmpty()) {
		return 0
	}
	return v.Len()
}
