package utils

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// Linspace returns n evenly spaced values over [start, end]. n < 2 yields just start.
func Linspace(start, end float64, n int) []float64 {
	if n < 2 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = end
	return out
}

// Meshgrid2D returns every (x, y) pair of xs × ys as the rows of a len(xs)*len(ys) by 2 matrix.
// x varies slowest.
func Meshgrid2D(xs, ys []float64) *mat.Dense {
	if len(xs) == 0 || len(ys) == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(len(xs)*len(ys), 2, nil)
	for i, x := range xs {
		for j, y := range ys {
			row := i*len(ys) + j
			out.Set(row, 0, x)
			out.Set(row, 1, y)
		}
	}
	return out
}

// GridPoints returns the rows of Meshgrid2D(xs, ys) as points.
func GridPoints(xs, ys []float64) []r2.Point {
	grid := Meshgrid2D(xs, ys)
	if grid.IsEmpty() {
		return nil
	}
	rows, _ := grid.Dims()
	pts := make([]r2.Point, rows)
	for i := range pts {
		pts[i] = r2.Point{X: grid.At(i, 0), Y: grid.At(i, 1)}
	}
	return pts
}

// SquareGrid returns a steps × steps grid of points covering [-limit, limit]².
func SquareGrid(limit float64, steps int) []r2.Point {
	axis := Linspace(-limit, limit, steps)
	return GridPoints(axis, axis)
}
