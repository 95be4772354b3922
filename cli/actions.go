package cli

import (
	"context"
	"math"
	"os"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/vg"

	"go.viam.com/lensdistort/config"
	"go.viam.com/lensdistort/distortion"
	"go.viam.com/lensdistort/logging"
	"go.viam.com/lensdistort/plotting"
	"go.viam.com/lensdistort/utils"
)

const (
	loggerName           = "lensdistort"
	distortionLoggerName = loggerName + ".distortion"
	loggerMetadataKey    = "logger"

	plotSamplesPerLine = 100
)

// setupLogging creates the CLI loggers. Logs go to the error writer so they never mix with results.
func setupLogging(c *cli.Context) error {
	logger := logging.NewBlankLogger(loggerName)
	logger.SetLevel(logging.INFO)
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	logging.RegisterLogger(loggerName, logger)
	logging.RegisterLogger(distortionLoggerName, logger.Sublogger("distortion"))

	config.InitLoggingSettings(logger, c.Bool(flagDebug))
	c.App.Metadata[loggerMetadataKey] = logger
	return nil
}

func syncLogging(c *cli.Context) error {
	return loggerFrom(c).Sync()
}

func loggerFrom(c *cli.Context) logging.Logger {
	if logger, ok := c.App.Metadata[loggerMetadataKey].(logging.Logger); ok {
		return logger
	}
	return logging.NewBlankLogger(loggerName)
}

// modelFromContext builds the lens model named by the command's flags, either from a config file or
// from --convention and --coefficients.
func modelFromContext(c *cli.Context) (*distortion.Model, error) {
	logger := loggerFrom(c)

	var lens *config.DistortionConfig
	if path := c.String(flagConfig); path != "" {
		var cfg *config.Config
		var err error
		if path == "-" {
			cfg, err = config.FromReader("stdin", c.App.Reader, logger)
		} else {
			cfg, err = config.Read(path, logger)
		}
		if err != nil {
			return nil, err
		}
		if err := cfg.ApplyLogging(logger); err != nil {
			return nil, err
		}
		if lens, err = cfg.Lens(c.String(flagLens)); err != nil {
			return nil, err
		}
	} else {
		if !c.IsSet(flagConvention) {
			return nil, errors.Errorf("either --%s or --%s is required", flagConfig, flagConvention)
		}
		lens = &config.DistortionConfig{
			Convention:   c.String(flagConvention),
			Coefficients: c.Float64Slice(flagCoefficients),
		}
	}
	if c.IsSet(flagIterations) {
		lens.UndistortIterations = c.Int(flagIterations)
	}

	modelLogger, ok := logging.LoggerNamed(distortionLoggerName)
	if !ok {
		modelLogger = logger.Sublogger("distortion")
	}
	model, err := lens.Build(modelLogger)
	if err != nil {
		return nil, err
	}
	logger.Debugw("built lens model",
		"name", lens.Name,
		"convention", model.ModelType(),
		"components", model.Components().String(),
		"undistort_iterations", model.UndistortIterations())
	return model, nil
}

// ConventionsAction is the corresponding Action for 'conventions'.
func ConventionsAction(c *cli.Context) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Convention", "Lengths", "Full Layout", "Undistort Iterations", "Settable"})
	for _, name := range distortion.RegisteredConventions() {
		conv, _ := distortion.LookupConvention(name)
		layout, _ := conv.Layout(conv.FullLength())
		t.AppendRow(table.Row{
			name,
			joinInts(conv.AcceptedLengths()),
			strings.Join(lo.Map(layout, func(f distortion.Field, _ int) string { return f.String() }), " "),
			conv.DefaultUndistortIterations(),
			conv.UndistortIterationsSettable(),
		})
	}
	return renderTable(c, t)
}

// DistortAction is the corresponding Action for 'distort'.
func DistortAction(c *cli.Context) error {
	return transformPoints(c, "distorted", func(m *distortion.Model, p, dst *r2.Point) *r2.Point {
		return m.DistortTo(p, dst)
	})
}

// UndistortAction is the corresponding Action for 'undistort'.
func UndistortAction(c *cli.Context) error {
	return transformPoints(c, "undistorted", func(m *distortion.Model, p, dst *r2.Point) *r2.Point {
		return m.UndistortTo(p, dst)
	})
}

func transformPoints(c *cli.Context, label string, transform func(m *distortion.Model, p, dst *r2.Point) *r2.Point) error {
	if err := checkFormat(c); err != nil {
		return err
	}
	model, err := modelFromContext(c)
	if err != nil {
		return err
	}
	points, err := readPoints(c)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "X", "Y", label + " X", label + " Y"})
	var out r2.Point
	for i := range points {
		transform(model, &points[i], &out)
		t.AppendRow(table.Row{i, points[i].X, points[i].Y, out.X, out.Y})
	}
	return renderTable(c, t)
}

// CoefficientsAction is the corresponding Action for 'coefficients'.
func CoefficientsAction(c *cli.Context) error {
	if err := checkFormat(c); err != nil {
		return err
	}
	model, err := modelFromContext(c)
	if err != nil {
		return err
	}
	conv := model.Convention()
	layout, _ := conv.Layout(conv.FullLength())

	values := model.CoefficientsVector()
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Coefficient", "Value"})
	for i, f := range layout {
		t.AppendRow(table.Row{f.String(), values.AtVec(i)})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"convention", model.ModelType()})
	t.AppendRow(table.Row{"components", model.Components().String()})
	t.AppendRow(table.Row{"undistort iterations", model.UndistortIterations()})
	return renderTable(c, t)
}

// TiltAction is the corresponding Action for 'tilt'.
func TiltAction(c *cli.Context) error {
	if err := checkFormat(c); err != nil {
		return err
	}
	tauX, tauY := c.Float64(flagTauX), c.Float64(flagTauY)
	if !c.Bool(flagRadians) {
		tauX, tauY = utils.DegToRad(tauX), utils.DegToRad(tauY)
	}
	tilt, err := distortion.ComputeTiltProjection(tauX, tauY)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Matrix", "Row", "C0", "C1", "C2"})
	for _, named := range []struct {
		name string
		m    *mat.Dense
	}{
		{"tilt", tilt.Tilt},
		{"d tilt / d tau x", tilt.DTiltDTauX},
		{"d tilt / d tau y", tilt.DTiltDTauY},
		{"inverse tilt", tilt.InvTilt},
	} {
		for r := 0; r < 3; r++ {
			t.AppendRow(table.Row{named.name, r, named.m.At(r, 0), named.m.At(r, 1), named.m.At(r, 2)})
		}
		t.AppendSeparator()
	}
	return renderTable(c, t)
}

// roundTrip summarizes the error of one direction of a round trip over a set of points.
type roundTrip struct {
	maxErr  float64
	meanErr float64
	worst   r2.Point
}

func measureRoundTrip(
	ctx context.Context, points []r2.Point, there, back func(context.Context, []r2.Point) ([]r2.Point, error),
) (roundTrip, error) {
	var rt roundTrip
	if len(points) == 0 {
		return rt, nil
	}
	mid, err := there(ctx, points)
	if err != nil {
		return rt, err
	}
	out, err := back(ctx, mid)
	if err != nil {
		return rt, err
	}
	var sum float64
	for i, p := range points {
		e := out[i].Sub(p).Norm()
		sum += e
		if e > rt.maxErr || math.IsNaN(e) {
			rt.maxErr = e
			rt.worst = p
		}
	}
	rt.meanErr = sum / float64(len(points))
	return rt, nil
}

// CheckAction is the corresponding Action for 'check'.
func CheckAction(c *cli.Context) error {
	if err := checkFormat(c); err != nil {
		return err
	}
	if c.Float64(flagLimit) <= 0 || c.Int(flagSteps) < 1 {
		return errors.Errorf("--%s must be positive and --%s at least 1", flagLimit, flagSteps)
	}
	model, err := modelFromContext(c)
	if err != nil {
		return err
	}
	grid := utils.SquareGrid(c.Float64(flagLimit), c.Int(flagSteps))

	forward, err := measureRoundTrip(c.Context, grid, model.DistortPoints, model.UndistortPoints)
	if err != nil {
		return err
	}
	inverse, err := measureRoundTrip(c.Context, grid, model.UndistortPoints, model.DistortPoints)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Round Trip", "Points", "Max Error", "Mean Error", "Worst X", "Worst Y"})
	for _, row := range []struct {
		name string
		rt   roundTrip
	}{
		{"undistort(distort(p))", forward},
		{"distort(undistort(p))", inverse},
	} {
		t.AppendRow(table.Row{
			row.name, len(grid), row.rt.maxErr, row.rt.meanErr, row.rt.worst.X, row.rt.worst.Y,
		})
	}
	loggerFrom(c).Debugw("round trip checked", "max_forward", forward.maxErr, "max_inverse", inverse.maxErr)
	return renderTable(c, t)
}

// PlotAction is the corresponding Action for 'plot'.
func PlotAction(c *cli.Context) error {
	model, err := modelFromContext(c)
	if err != nil {
		return err
	}
	path := c.Path(flagOutput)
	size := vg.Length(c.Float64(flagSize)) * vg.Inch
	if err := plotting.SaveDistortionGrid(model, c.Float64(flagLimit), c.Int(flagLines), plotSamplesPerLine, size, path); err != nil {
		return errors.Wrapf(err, "could not plot to %s", path)
	}
	printf(c.App.Writer, "wrote %s", path)
	return nil
}

// readPoints collects the points given as arguments and through --input.
func readPoints(c *cli.Context) ([]r2.Point, error) {
	points := make([]r2.Point, 0, c.NArg())
	for i, arg := range c.Args().Slice() {
		p, err := parsePoint(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i+1)
		}
		points = append(points, p)
	}

	switch input := c.Path(flagInput); input {
	case "":
	case "-":
		fromStdin, err := ParsePoints(c.App.Reader)
		if err != nil {
			return nil, err
		}
		points = append(points, fromStdin...)
	default:
		//nolint:gosec
		f, err := os.Open(input)
		if err != nil {
			return nil, errors.Wrap(err, "could not open points file")
		}
		defer func() {
			if err := f.Close(); err != nil {
				loggerFrom(c).Warnw("could not close points file", "path", input, "error", err)
			}
		}()
		fromFile, err := ParsePoints(f)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read %s", input)
		}
		points = append(points, fromFile...)
	}

	if len(points) == 0 {
		return nil, errors.Errorf("no points given; pass x,y arguments or --%s", flagInput)
	}
	return points, nil
}
