package distortion

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned when coefficients or solver settings do not fit a convention.
	ErrInvalidArgument = errors.New("invalid distortion argument")
	// ErrNumericDegeneracy is returned when a tilt projection cannot be inverted.
	ErrNumericDegeneracy = errors.New("degenerate tilt projection")
)

// InvalidDistortionError is used when the distortion parameters are invalid.
func InvalidDistortionError(msg string) error {
	return errors.Wrap(ErrInvalidArgument, msg)
}

// NewInvalidLengthError is used when a coefficient container has a length the convention does not accept.
func NewInvalidLengthError(distortionType DistortionType, container string, length int, accepted []int) error {
	return errors.Wrapf(ErrInvalidArgument, "incorrect %s length %d for %q distortion, expected one of %v",
		container, length, distortionType, accepted)
}
