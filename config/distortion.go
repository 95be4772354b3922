package config

import (
	"math"
	"slices"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/lensdistort/distortion"
	"go.viam.com/lensdistort/logging"
)

// DistortionConfig describes one lens: the coefficient convention, the coefficients in that
// convention's wire order, and optionally the undistort iteration bound.
type DistortionConfig struct {
	Name                string    `json:"name,omitempty"`
	Convention          string    `json:"convention"`
	Coefficients        []float64 `json:"coefficients"`
	UndistortIterations int       `json:"undistort_iterations,omitempty"`
}

// FromAttributes decodes a DistortionConfig from loosely typed attributes, e.g. a section of a
// larger JSON document decoded into a map.
func FromAttributes(attributes map[string]interface{}) (*DistortionConfig, error) {
	var conf DistortionConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: &conf})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode distortion attributes")
	}
	return &conf, nil
}

// Validate reports every problem with the lens description, each prefixed with path.
func (conf *DistortionConfig) Validate(path string) error {
	if conf.Convention == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "convention")
	}
	conv, ok := distortion.LookupConvention(distortion.DistortionType(conf.Convention))
	if !ok {
		return goutils.NewConfigValidationError(path,
			errors.Wrapf(distortion.ErrInvalidArgument, "unknown distortion convention %q, expected one of %v",
				conf.Convention, distortion.RegisteredConventions()))
	}

	var errs error
	if n := len(conf.Coefficients); n != 0 && !slices.Contains(conv.AcceptedLengths(), n) {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			distortion.NewInvalidLengthError(conv.Name(), "coefficients", n, conv.AcceptedLengths())))
	}
	for i, c := range conf.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
				errors.Errorf("coefficient %d is not finite", i)))
		}
	}
	if conf.UndistortIterations < 0 {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("undistort_iterations must not be negative, got %d", conf.UndistortIterations)))
	}
	if conf.UndistortIterations > 0 && !conv.UndistortIterationsSettable() {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("%q distortion has a fixed undistort iteration count of %d",
				conv.Name(), conv.DefaultUndistortIterations())))
	}
	return errs
}

// Build validates the description and returns the model it describes. The model reports solver
// problems to logger.
func (conf *DistortionConfig) Build(logger logging.Logger) (*distortion.Model, error) {
	if err := conf.Validate(""); err != nil {
		return nil, err
	}
	model, err := distortion.NewDistorter(distortion.DistortionType(conf.Convention), conf.Coefficients)
	if err != nil {
		return nil, err
	}
	model.SetLogger(logger)
	if conf.UndistortIterations > 0 {
		if err := model.SetUndistortIterations(conf.UndistortIterations); err != nil {
			return nil, err
		}
	}
	return model, nil
}
