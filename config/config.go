// Package config reads lens descriptions from JSON files.
package config

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/lensdistort/logging"
)

// Config is the top level of a lens file: the lenses it describes and how to log.
type Config struct {
	Debug  bool                          `json:"debug,omitempty"`
	Lenses []DistortionConfig            `json:"lenses"`
	Log    []logging.LoggerPatternConfig `json:"log,omitempty"`

	// ConfigFilePath is the path the config was read from, if any.
	ConfigFilePath string `json:"-"`
}

// Validate returns every problem with the config. Lens names must be unique when given.
func (cfg *Config) Validate() error {
	var errs error
	seen := make(map[string]struct{}, len(cfg.Lenses))
	for i := range cfg.Lenses {
		lens := &cfg.Lenses[i]
		path := fmt.Sprintf("lenses.%d", i)
		if err := lens.Validate(path); err != nil {
			errs = multierr.Append(errs, err)
		}
		if lens.Name == "" {
			continue
		}
		if _, ok := seen[lens.Name]; ok {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
				errors.Errorf("duplicate lens name %q", lens.Name)))
		}
		seen[lens.Name] = struct{}{}
	}
	for i, lpc := range cfg.Log {
		if err := lpc.Validate(); err != nil {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(fmt.Sprintf("log.%d", i), err))
		}
	}
	return errs
}

// Lens returns the lens called name. An empty name selects the first lens.
func (cfg *Config) Lens(name string) (*DistortionConfig, error) {
	if len(cfg.Lenses) == 0 {
		return nil, errors.New("config describes no lenses")
	}
	if name == "" {
		return &cfg.Lenses[0], nil
	}
	for i := range cfg.Lenses {
		if cfg.Lenses[i].Name == name {
			return &cfg.Lenses[i], nil
		}
	}
	return nil, errors.Errorf("no lens named %q", name)
}

// ApplyLogging turns on debug logging if the config asks for it and applies the config's logger
// level patterns to the registered loggers.
func (cfg *Config) ApplyLogging(logger logging.Logger) error {
	UpdateFileConfigDebug(cfg.Debug)
	if len(cfg.Log) == 0 {
		return nil
	}
	return logging.UpdateLoggerRegistry(cfg.Log, logger)
}
