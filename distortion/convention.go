package distortion

import (
	"slices"

	"github.com/samber/lo"
)

type radialForm int

const (
	// 1 + k1r² + k2r⁴ + k3r⁶ + k4r⁸.
	polynomialRadial radialForm = iota
	// (1 + k1r² + k2r⁴ + k3r⁶) / (1 + k4r² + k5r⁴ + k6r⁶).
	rationalRadial
)

type tangentialForm int

const (
	// x += (p1(r²+2x²) + 2p2xy)(1 + p3r² + p4r⁴), y += (p2(r²+2y²) + 2p1xy)(1 + p3r² + p4r⁴).
	decenteringTangential tangentialForm = iota
	// x += 2p1xy + p2(r²+2x²), y += p1(r²+2y²) + 2p2xy.
	openCVTangential
)

// Convention describes one distortion coefficient convention: which coefficient layouts it accepts,
// which term formulas it evaluates, and how its inverse solver is bounded.
type Convention struct {
	name       DistortionType
	layouts    map[int][]Field
	lengths    []int
	fields     []Field
	radial     radialForm
	tangential tangentialForm

	iterations         int
	iterationsSettable bool
	// epsilon > 0 enables the early exit of the inverse solver.
	epsilon float64
}

type conventionConfig struct {
	name               DistortionType
	radial             radialForm
	tangential         tangentialForm
	iterations         int
	iterationsSettable bool
	epsilon            float64
	// layouts lists the accepted wire orders. The first one is the full layout.
	layouts [][]Field
}

func newConvention(cfg conventionConfig) *Convention {
	conv := &Convention{
		name:               cfg.name,
		layouts:            make(map[int][]Field, len(cfg.layouts)),
		fields:             cfg.layouts[0],
		radial:             cfg.radial,
		tangential:         cfg.tangential,
		iterations:         cfg.iterations,
		iterationsSettable: cfg.iterationsSettable,
		epsilon:            cfg.epsilon,
	}
	for _, layout := range cfg.layouts {
		conv.layouts[len(layout)] = layout
	}
	conv.lengths = lo.Keys(conv.layouts)
	slices.Sort(conv.lengths)
	slices.Reverse(conv.lengths)
	return conv
}

var (
	// BrownConvention accepts (k1,k2,k3,k4,p1,p2,p3,p4), (k1,k2,k3,p1,p2) or (k1,k2,k3).
	BrownConvention = newConvention(conventionConfig{
		name:       BrownDistortionType,
		radial:     polynomialRadial,
		tangential: decenteringTangential,
		iterations: 5,
		layouts: [][]Field{
			{K1, K2, K3, K4, P1, P2, P3, P4},
			{K1, K2, K3, P1, P2},
			{K1, K2, K3},
		},
	})

	// OpenCVConvention accepts prefixes of (k1,k2,p1,p2,k3,k4,k5,k6,s1,s2,s3,s4,tx,ty) of length 14,
	// 12, 8, 5 or 4, matching the order of OpenCV's distCoeffs.
	OpenCVConvention = newConvention(conventionConfig{
		name:       OpenCVDistortionType,
		radial:     rationalRadial,
		tangential: openCVTangential,
		iterations: 50,
		epsilon:    1e-6,
		layouts: [][]Field{
			{K1, K2, P1, P2, K3, K4, K5, K6, S1, S2, S3, S4, Tx, Ty},
			{K1, K2, P1, P2, K3, K4, K5, K6, S1, S2, S3, S4},
			{K1, K2, P1, P2, K3, K4, K5, K6},
			{K1, K2, P1, P2, K3},
			{K1, K2, P1, P2},
		},
	})

	// MetashapeConvention accepts (k1,k2,k3,k4,p1,p2), (k1,k2,k3,p1,p2) or (k1,k2,k3).
	MetashapeConvention = newConvention(conventionConfig{
		name:               MetashapeDistortionType,
		radial:             polynomialRadial,
		tangential:         decenteringTangential,
		iterations:         10,
		iterationsSettable: true,
		layouts: [][]Field{
			{K1, K2, K3, K4, P1, P2},
			{K1, K2, K3, P1, P2},
			{K1, K2, K3},
		},
	})
)

func init() {
	Register(BrownConvention)
	Register(OpenCVConvention)
	Register(MetashapeConvention)
}

// Name returns the convention identifier.
func (conv *Convention) Name() DistortionType {
	return conv.name
}

// AcceptedLengths returns the accepted coefficient container lengths, longest first.
func (conv *Convention) AcceptedLengths() []int {
	return slices.Clone(conv.lengths)
}

// FullLength returns the length of the layout carrying every coefficient of the convention.
func (conv *Convention) FullLength() int {
	return len(conv.fields)
}

// Layout returns the wire order of a container of the given length.
func (conv *Convention) Layout(length int) ([]Field, bool) {
	layout, ok := conv.layouts[length]
	if !ok {
		return nil, false
	}
	return slices.Clone(layout), true
}

// Uses reports whether the convention reads field f.
func (conv *Convention) Uses(f Field) bool {
	return slices.Contains(conv.fields, f)
}

// DefaultUndistortIterations returns the iteration bound a new Model starts with.
func (conv *Convention) DefaultUndistortIterations() int {
	return conv.iterations
}

// UndistortIterationsSettable reports whether Model.SetUndistortIterations is allowed.
func (conv *Convention) UndistortIterationsSettable() bool {
	return conv.iterationsSettable
}

// group returns the term group field f belongs to under this convention.
func (conv *Convention) group(f Field) Components {
	switch f {
	case K1, K2, K3:
		return RadialSimple
	case K4:
		if conv.radial == rationalRadial {
			return RadialRational
		}
		return RadialSimple
	case K5, K6:
		return RadialRational
	case P1, P2, P3, P4:
		return Tangential
	case S1, S2, S3, S4:
		return Prism
	case Tx, Ty:
		return Tilt
	case numFields:
	}
	return NoDistortion
}

// Classify derives the active term groups from a set of coefficients.
func (conv *Convention) Classify(coeffs Coefficients) Components {
	comps := NoDistortion
	for _, f := range conv.fields {
		if coeffs.Get(f) != 0 {
			comps |= conv.group(f)
		}
	}
	return comps
}
