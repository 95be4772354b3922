package distortion

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// conventionRegistry maps a convention identifier to its descriptor. It is filled from init functions
// and read-only afterwards.
var conventionRegistry = map[DistortionType]*Convention{}

// Register registers a convention under its name. It is meant to be called from init and panics if
// the name is already taken.
func Register(conv *Convention) {
	if conv == nil {
		panic(errors.New("cannot register a nil distortion convention"))
	}
	_, old := conventionRegistry[conv.name]
	if old {
		panic(errors.Errorf("trying to register two distortion conventions with same name %s", conv.name))
	}
	conventionRegistry[conv.name] = conv
}

// LookupConvention returns the convention registered under name.
func LookupConvention(name DistortionType) (*Convention, bool) {
	conv, ok := conventionRegistry[name]
	return conv, ok
}

// RegisteredConventions returns the registered convention names in sorted order.
func RegisteredConventions() []DistortionType {
	names := lo.Keys(conventionRegistry)
	slices.Sort(names)
	return names
}
