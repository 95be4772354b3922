package config

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/lensdistort/distortion"
	"go.viam.com/lensdistort/logging"
)

func TestDistortionConfigValidate(t *testing.T) {
	for _, tc := range []struct {
		name     string
		conf     DistortionConfig
		errParts []string
	}{
		{
			name: "valid brown",
			conf: DistortionConfig{Convention: "brown", Coefficients: []float64{-0.1, 0.2, -0.03, 0.001, -0.002}},
		},
		{
			name: "valid empty coefficients",
			conf: DistortionConfig{Convention: "opencv"},
		},
		{
			name:     "missing convention",
			conf:     DistortionConfig{Coefficients: []float64{1}},
			errParts: []string{`"convention" is required`},
		},
		{
			name:     "unknown convention",
			conf:     DistortionConfig{Convention: "fisheye"},
			errParts: []string{`unknown distortion convention "fisheye"`, "agisoft-metashape"},
		},
		{
			name: "several problems at once",
			conf: DistortionConfig{
				Convention:          "brown",
				Coefficients:        []float64{1, math.NaN()},
				UndistortIterations: 7,
			},
			errParts: []string{
				"incorrect coefficients length 2",
				"coefficient 1 is not finite",
				"fixed undistort iteration count of 5",
			},
		},
		{
			name:     "negative iterations",
			conf:     DistortionConfig{Convention: "agisoft-metashape", UndistortIterations: -1},
			errParts: []string{"must not be negative"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.conf.Validate("lens")
			if len(tc.errParts) == 0 {
				test.That(t, err, test.ShouldBeNil)
				return
			}
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, "lens")
			for _, part := range tc.errParts {
				test.That(t, err.Error(), test.ShouldContainSubstring, part)
			}
		})
	}
}

func TestDistortionConfigBuild(t *testing.T) {
	logger := logging.NewTestLogger(t)

	conf := DistortionConfig{
		Convention:          "agisoft-metashape",
		Coefficients:        []float64{-0.0700973, 0.0505032, 0.0271614, -0.0224442, 0.000855335, 0.000181009},
		UndistortIterations: 25,
	}
	model, err := conf.Build(logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.ModelType(), test.ShouldEqual, distortion.MetashapeDistortionType)
	test.That(t, model.UndistortIterations(), test.ShouldEqual, 25)
	test.That(t, model.Parameters(), test.ShouldResemble, conf.Coefficients)
	test.That(t, model.Components(), test.ShouldEqual, distortion.RadialSimple|distortion.Tangential)

	p := r2.Point{X: 0.2, Y: -0.1}
	back := model.Undistort(model.Distort(&p))
	test.That(t, back.X, test.ShouldAlmostEqual, p.X, 1e-3)
	test.That(t, back.Y, test.ShouldAlmostEqual, p.Y, 1e-3)

	_, err = (&DistortionConfig{Convention: "opencv", Coefficients: []float64{1}}).Build(logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFromAttributes(t *testing.T) {
	conf, err := FromAttributes(map[string]interface{}{
		"name":                 "wide",
		"convention":           "opencv",
		"coefficients":         []interface{}{-0.12, 0.08, 0.0008, -0.0012, 1},
		"undistort_iterations": 0,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf, test.ShouldResemble, &DistortionConfig{
		Name:         "wide",
		Convention:   "opencv",
		Coefficients: []float64{-0.12, 0.08, 0.0008, -0.0012, 1},
	})
	test.That(t, conf.Validate("wide"), test.ShouldBeNil)

	_, err = FromAttributes(map[string]interface{}{"coefficients": "many"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to decode distortion attributes")
}
