package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/lensdistort/logging"
)

func TestFromReaderValidate(t *testing.T) {
	logger := logging.NewTestLogger(t)

	_, err := FromReader("somepath", strings.NewReader(""), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "EOF")

	_, err = FromReader("somepath", strings.NewReader(`{"lenses": 1}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unmarshal")

	conf, err := FromReader("somepath", strings.NewReader(`{}`), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf, test.ShouldResemble, &Config{
		ConfigFilePath: "somepath",
	})

	_, err = FromReader("somepath", strings.NewReader(`{"lenses": [{}]}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `lenses.0`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"convention" is required`)

	_, err = FromReader("somepath", strings.NewReader(
		`{"lenses": [{"name": "a", "convention": "brown"}, {"name": "a", "convention": "opencv", "coefficients": [1, 2, 3]}]}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `duplicate lens name "a"`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `lenses.1`)
	test.That(t, err.Error(), test.ShouldContainSubstring, "incorrect coefficients length 3")

	_, err = FromReader("somepath", strings.NewReader(`{"log": [{"pattern": "..", "level": "debug"}]}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `log.0`)

	conf, err = FromReader("somepath", strings.NewReader(
		`{"lenses": [{"name": "front", "convention": "agisoft-metashape", "coefficients": [-0.07, 0.05, 0.027], "undistort_iterations": 20}]}`),
		logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf, test.ShouldResemble, &Config{
		ConfigFilePath: "somepath",
		Lenses: []DistortionConfig{
			{
				Name:                "front",
				Convention:          "agisoft-metashape",
				Coefficients:        []float64{-0.07, 0.05, 0.027},
				UndistortIterations: 20,
			},
		},
	})
}

func TestReadSubstitutesEnvironment(t *testing.T) {
	logger := logging.NewTestLogger(t)
	t.Setenv("LENS_K1", "-0.12")
	t.Setenv("LENS_CONVENTION", "opencv")

	path := filepath.Join(t.TempDir(), "lens.json")
	contents := `{"lenses": [{"convention": "${LENS_CONVENTION}", "coefficients": [$LENS_K1, 0.08, 0.001, -0.001]}]}`
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)

	conf, err := Read(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.ConfigFilePath, test.ShouldEqual, path)
	lens, err := conf.Lens("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lens.Convention, test.ShouldEqual, "opencv")
	test.That(t, lens.Coefficients, test.ShouldResemble, []float64{-0.12, 0.08, 0.001, -0.001})

	fromReader, err := FromReader("stdin", strings.NewReader(contents), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromReader.Lenses, test.ShouldResemble, conf.Lenses)

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLens(t *testing.T) {
	cfg := &Config{}
	_, err := cfg.Lens("")
	test.That(t, err, test.ShouldBeError, "config describes no lenses")

	cfg.Lenses = []DistortionConfig{{Name: "front"}, {Name: "rear"}}
	lens, err := cfg.Lens("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lens.Name, test.ShouldEqual, "front")
	lens, err = cfg.Lens("rear")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lens, test.ShouldEqual, &cfg.Lenses[1])
	_, err = cfg.Lens("side")
	test.That(t, err, test.ShouldBeError, `no lens named "side"`)
}

func TestApplyLogging(t *testing.T) {
	logger := logging.NewTestLogger(t)
	InitLoggingSettings(logger, false)
	defer InitLoggingSettings(logger, false)

	named := logging.NewBlankLogger("lensdistort-config-test")
	logging.RegisterLogger("lensdistort-config-test", named)

	cfg := &Config{
		Debug: true,
		Log:   []logging.LoggerPatternConfig{{Pattern: "lensdistort-config-test", Level: "error"}},
	}
	test.That(t, cfg.ApplyLogging(logger), test.ShouldBeNil)
	test.That(t, logging.GlobalLogLevel.Level().String(), test.ShouldEqual, "debug")
	test.That(t, named.GetLevel(), test.ShouldEqual, logging.ERROR)

	cfg = &Config{}
	test.That(t, cfg.ApplyLogging(logger), test.ShouldBeNil)
	test.That(t, logging.GlobalLogLevel.Level().String(), test.ShouldEqual, "info")
}
