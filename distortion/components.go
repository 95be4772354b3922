package distortion

import "strings"

// Components is the set of distortion term groups that are active for a set of coefficients.
type Components uint8

// The term groups. A group is active iff one of its coefficients is non-zero.
const (
	NoDistortion   Components = 0
	RadialSimple   Components = 1
	RadialRational Components = 2
	Tangential     Components = 4
	Prism          Components = 8
	Tilt           Components = 16

	// Radial is any radial term, simple or rational.
	Radial = RadialSimple | RadialRational
)

var componentNames = []struct {
	c    Components
	name string
}{
	{RadialSimple, "radial_simple"},
	{RadialRational, "radial_rational"},
	{Tangential, "tangential"},
	{Prism, "prism"},
	{Tilt, "tilt"},
}

// Has reports whether any of the groups in other is active.
func (c Components) Has(other Components) bool {
	return c&other != 0
}

// IsNone reports whether no distortion term is active.
func (c Components) IsNone() bool {
	return c == NoDistortion
}

// HasRadialSimple reports whether a polynomial radial term is active.
func (c Components) HasRadialSimple() bool {
	return c.Has(RadialSimple)
}

// HasRadialRational reports whether a rational radial denominator term is active.
func (c Components) HasRadialRational() bool {
	return c.Has(RadialRational)
}

// HasRadial reports whether any radial term is active.
func (c Components) HasRadial() bool {
	return c.Has(Radial)
}

// HasTangential reports whether a decentering term is active.
func (c Components) HasTangential() bool {
	return c.Has(Tangential)
}

// HasPrism reports whether a thin prism term is active.
func (c Components) HasPrism() bool {
	return c.Has(Prism)
}

// HasTilt reports whether a sensor tilt angle is set.
func (c Components) HasTilt() bool {
	return c.Has(Tilt)
}

// String returns the active groups joined by "|", or "none".
func (c Components) String() string {
	if c.IsNone() {
		return "none"
	}
	names := make([]string, 0, len(componentNames))
	for _, cn := range componentNames {
		if c.Has(cn.c) {
			names = append(names, cn.name)
		}
	}
	return strings.Join(names, "|")
}
