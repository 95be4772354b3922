// Package cli contains the lensdistort command line.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Global flags.
	flagConfig       = "config"
	flagLens         = "lens"
	flagConvention   = "convention"
	flagCoefficients = "coefficients"
	flagIterations   = "undistort-iterations"
	flagDebug        = "debug"

	// Command flags.
	flagInput   = "input"
	flagFormat  = "format"
	flagTauX    = "tau-x"
	flagTauY    = "tau-y"
	flagRadians = "radians"
	flagLimit   = "limit"
	flagSteps   = "steps"
	flagOutput  = "output"
	flagLines   = "lines"
	flagSize    = "size"
)

var modelFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    flagConfig,
		Aliases: []string{"c"},
		Usage:   "load lenses from `FILE`, - for stdin",
	},
	&cli.StringFlag{
		Name:  flagLens,
		Usage: "lens to use from the config file, defaults to the first",
	},
	&cli.StringFlag{
		Name:  flagConvention,
		Usage: "distortion convention when no config file is given",
	},
	&cli.Float64SliceFlag{
		Name:  flagCoefficients,
		Usage: "coefficients in the convention's wire order when no config file is given",
	},
	&cli.IntFlag{
		Name:  flagIterations,
		Usage: "undistort iteration bound, for conventions that allow changing it",
	},
}

var formatFlag = &cli.StringFlag{
	Name:  flagFormat,
	Value: formatTable,
	Usage: "output format: table, csv or markdown",
}

var pointFlags = []cli.Flag{
	&cli.PathFlag{
		Name:    flagInput,
		Aliases: []string{"i"},
		Usage:   "read points, one x,y pair per line, from `FILE`, - for stdin",
	},
	formatFlag,
}

var app = &cli.App{
	Name:            "lensdistort",
	Usage:           "map points between ideal and distorted lens projections",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Before: setupLogging,
	After:  syncLogging,
	Commands: []*cli.Command{
		{
			Name:   "conventions",
			Usage:  "list the supported distortion conventions",
			Flags:  []cli.Flag{formatFlag},
			Action: ConventionsAction,
		},
		{
			Name:      "distort",
			Usage:     "map undistorted points to their distorted positions",
			ArgsUsage: "[x,y ...]",
			Flags:     append(append([]cli.Flag{}, modelFlags...), pointFlags...),
			Action:    DistortAction,
		},
		{
			Name:      "undistort",
			Usage:     "map distorted points back to their undistorted positions",
			ArgsUsage: "[x,y ...]",
			Flags:     append(append([]cli.Flag{}, modelFlags...), pointFlags...),
			Action:    UndistortAction,
		},
		{
			Name:   "coefficients",
			Usage:  "show the coefficients and active terms of a lens",
			Flags:  append(append([]cli.Flag{}, modelFlags...), formatFlag),
			Action: CoefficientsAction,
		},
		{
			Name:  "tilt",
			Usage: "show the sensor tilt projection for two tilt angles",
			Flags: []cli.Flag{
				&cli.Float64Flag{
					Name:  flagTauX,
					Usage: "tilt about the x axis, in degrees",
				},
				&cli.Float64Flag{
					Name:  flagTauY,
					Usage: "tilt about the y axis, in degrees",
				},
				&cli.BoolFlag{
					Name:  flagRadians,
					Usage: "read the tilt angles as radians",
				},
				formatFlag,
			},
			Action: TiltAction,
		},
		{
			Name:  "check",
			Usage: "measure the distort/undistort round trip error over a grid",
			Flags: append(append([]cli.Flag{}, modelFlags...),
				&cli.Float64Flag{
					Name:  flagLimit,
					Value: 0.3,
					Usage: "half width of the square grid, in normalized coordinates",
				},
				&cli.IntFlag{
					Name:  flagSteps,
					Value: 21,
					Usage: "grid points per axis",
				},
				formatFlag,
			),
			Action: CheckAction,
		},
		{
			Name:  "plot",
			Usage: "draw an ideal grid and its distorted image",
			Flags: append(append([]cli.Flag{}, modelFlags...),
				&cli.PathFlag{
					Name:     flagOutput,
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "image `FILE`; the extension picks the format (png, svg, pdf)",
				},
				&cli.Float64Flag{
					Name:  flagLimit,
					Value: 0.5,
					Usage: "half width of the plotted grid, in normalized coordinates",
				},
				&cli.IntFlag{
					Name:  flagLines,
					Value: 11,
					Usage: "grid lines per direction",
				},
				&cli.Float64Flag{
					Name:  flagSize,
					Value: 6,
					Usage: "image width and height, in inches",
				},
			),
			Action: PlotAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
