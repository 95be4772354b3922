// Package plotting renders distortion models as images.
package plotting

import (
	"fmt"
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.viam.com/lensdistort/distortion"
	"go.viam.com/lensdistort/utils"
)

var (
	idealColor     = color.Gray{Y: 170}
	distortedColor = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

// GridLines maps a grid of `lines` horizontal and `lines` vertical lines covering
// [-limit, limit]² through transform. Each line is sampled at `samples` points. Horizontal lines
// come first.
func GridLines(transform func(x, y float64) (float64, float64), limit float64, lines, samples int) []plotter.XYs {
	offsets := utils.Linspace(-limit, limit, lines)
	along := utils.Linspace(-limit, limit, samples)

	out := make([]plotter.XYs, 0, 2*len(offsets))
	for _, y := range offsets {
		pts := make(plotter.XYs, len(along))
		for i, x := range along {
			pts[i].X, pts[i].Y = transform(x, y)
		}
		out = append(out, pts)
	}
	for _, x := range offsets {
		pts := make(plotter.XYs, len(along))
		for i, y := range along {
			pts[i].X, pts[i].Y = transform(x, y)
		}
		out = append(out, pts)
	}
	return out
}

func identity(x, y float64) (float64, float64) {
	return x, y
}

// DistortionGrid plots an ideal grid over [-limit, limit]² together with its image under d.
func DistortionGrid(d distortion.Distorter, limit float64, lines, samples int) (*plot.Plot, error) {
	if err := d.CheckValid(); err != nil {
		return nil, err
	}
	if limit <= 0 || lines < 2 || samples < 2 {
		return nil, errors.Errorf("cannot plot %d lines of %d samples over ±%g", lines, samples, limit)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s distortion", d.ModelType())
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	if err := addLines(p, GridLines(identity, limit, lines, samples), "ideal", idealColor, vg.Points(0.5)); err != nil {
		return nil, err
	}
	if err := addLines(p, GridLines(d.Transform, limit, lines, samples), "distorted", distortedColor, vg.Points(1)); err != nil {
		return nil, err
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

func addLines(p *plot.Plot, lines []plotter.XYs, label string, c color.Color, width vg.Length) error {
	for i, pts := range lines {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "failed to build %s line %d", label, i)
		}
		line.Color = c
		line.Width = width
		p.Add(line)
		if i == 0 {
			p.Legend.Add(label, line)
		}
	}
	return nil
}

// SaveDistortionGrid writes DistortionGrid to path. The image format follows the file extension,
// e.g. .png, .svg or .pdf.
func SaveDistortionGrid(d distortion.Distorter, limit float64, lines, samples int, size vg.Length, path string) error {
	p, err := DistortionGrid(d, limit, lines, samples)
	if err != nil {
		return err
	}
	return p.Save(size, size, path)
}
