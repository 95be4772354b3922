package plotting

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/plot/vg"

	"go.viam.com/lensdistort/distortion"
)

func TestGridLines(t *testing.T) {
	lines := GridLines(identity, 1, 3, 5)
	test.That(t, len(lines), test.ShouldEqual, 6)
	for _, line := range lines {
		test.That(t, len(line), test.ShouldEqual, 5)
	}
	// First horizontal line runs along y = -1.
	test.That(t, lines[0][0].X, test.ShouldEqual, -1)
	test.That(t, lines[0][4].X, test.ShouldEqual, 1)
	test.That(t, lines[0][2].Y, test.ShouldEqual, -1)
	// Last vertical line runs along x = 1.
	test.That(t, lines[5][0].X, test.ShouldEqual, 1)
	test.That(t, lines[5][0].Y, test.ShouldEqual, -1)

	barrel := distortion.NewBrown(-0.2, 0, 0, 0, 0, 0, 0, 0)
	warped := GridLines(barrel.Transform, 0.5, 3, 5)
	// Corners move inwards under barrel distortion, the center stays put.
	test.That(t, warped[0][0].X, test.ShouldBeGreaterThan, -0.5)
	test.That(t, warped[1][2].X, test.ShouldEqual, 0)
	test.That(t, warped[1][2].Y, test.ShouldEqual, 0)
}

func TestDistortionGrid(t *testing.T) {
	model := distortion.NewOpenCV(-0.12, 0.08, -0.01, 0.02, -0.01, 0.005, 0.0008, -0.0012, 0, 0, 0, 0, 0, 0)

	p, err := DistortionGrid(model, 0.3, 5, 20)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Title.Text, test.ShouldEqual, "opencv distortion")

	_, err = DistortionGrid(model, 0, 5, 20)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = DistortionGrid(model, 0.3, 1, 20)
	test.That(t, err, test.ShouldNotBeNil)

	path := filepath.Join(t.TempDir(), "grid.png")
	test.That(t, SaveDistortionGrid(model.Inverse(), 0.3, 5, 20, 3*vg.Inch, path), test.ShouldBeNil)
	info, err := os.Stat(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}
