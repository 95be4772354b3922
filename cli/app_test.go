package cli

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/lensdistort/distortion"
)

const brownCoefficients = "--coefficients=-0.1047,0.25263,-0.0385946,0,0.000508056,-0.0027698,0,0"

func runApp(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	a := NewApp(out, errOut)
	a.Reader = strings.NewReader(stdin)
	err := a.Run(append([]string{"lensdistort"}, args...))
	return out.String(), errOut.String(), err
}

// parseCSV returns the data rows of a CSV rendered table, without its header.
func parseCSV(t *testing.T, out string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(records), test.ShouldBeGreaterThan, 0)
	return records[1:]
}

func parseFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	test.That(t, err, test.ShouldBeNil)
	return v
}

func TestConventionsAction(t *testing.T) {
	out, _, err := runApp(t, "", "conventions", "--format", "csv")
	test.That(t, err, test.ShouldBeNil)
	rows := parseCSV(t, out)
	test.That(t, len(rows), test.ShouldEqual, 3)
	test.That(t, rows[0][0], test.ShouldEqual, "agisoft-metashape")
	test.That(t, rows[0][1], test.ShouldEqual, "6 5 3")
	test.That(t, rows[0][3], test.ShouldEqual, "10")
	test.That(t, rows[0][4], test.ShouldEqual, "true")
	test.That(t, rows[1][0], test.ShouldEqual, "brown")
	test.That(t, rows[1][2], test.ShouldEqual, "k1 k2 k3 k4 p1 p2 p3 p4")
	test.That(t, rows[2][0], test.ShouldEqual, "opencv")
	test.That(t, rows[2][1], test.ShouldEqual, "14 12 8 5 4")
	test.That(t, rows[2][2], test.ShouldEqual, "k1 k2 p1 p2 k3 k4 k5 k6 s1 s2 s3 s4 tx ty")

	out, _, err = runApp(t, "", "conventions")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "CONVENTION")

	out, _, err = runApp(t, "", "conventions", "--format", "markdown")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "| brown |")

	_, _, err = runApp(t, "", "conventions", "--format", "yaml")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown output format "yaml"`)
}

func TestDistortAndUndistortActions(t *testing.T) {
	model := distortion.NewBrown(-0.1047, 0.25263, -0.0385946, 0, 0.000508056, -0.0027698, 0, 0)

	out, _, err := runApp(t, "", "distort", "--convention", "brown", brownCoefficients,
		"--format", "csv", "0.1,0.1", "-0.2,0.05")
	test.That(t, err, test.ShouldBeNil)
	rows := parseCSV(t, out)
	test.That(t, len(rows), test.ShouldEqual, 2)
	for i, p := range []r2.Point{{X: 0.1, Y: 0.1}, {X: -0.2, Y: 0.05}} {
		expected := model.Distort(&p)
		test.That(t, parseFloat(t, rows[i][1]), test.ShouldEqual, p.X)
		test.That(t, parseFloat(t, rows[i][2]), test.ShouldEqual, p.Y)
		test.That(t, parseFloat(t, rows[i][3]), test.ShouldAlmostEqual, expected.X, 1e-12)
		test.That(t, parseFloat(t, rows[i][4]), test.ShouldAlmostEqual, expected.Y, 1e-12)
	}

	// Undistorting the distorted points from stdin returns close to the originals.
	stdin := "# distorted\n" + rows[0][3] + "," + rows[0][4] + "\n" + rows[1][3] + "," + rows[1][4] + "\n"
	out, _, err = runApp(t, stdin, "undistort", "--convention", "brown", brownCoefficients,
		"--input", "-", "--format", "csv")
	test.That(t, err, test.ShouldBeNil)
	back := parseCSV(t, out)
	test.That(t, len(back), test.ShouldEqual, 2)
	test.That(t, parseFloat(t, back[0][3]), test.ShouldAlmostEqual, 0.1, 1e-3)
	test.That(t, parseFloat(t, back[0][4]), test.ShouldAlmostEqual, 0.1, 1e-3)
	test.That(t, parseFloat(t, back[1][3]), test.ShouldAlmostEqual, -0.2, 1e-3)
	test.That(t, parseFloat(t, back[1][4]), test.ShouldAlmostEqual, 0.05, 1e-3)

	pointsPath := filepath.Join(t.TempDir(), "points.txt")
	test.That(t, os.WriteFile(pointsPath, []byte("0,0\n"), 0o600), test.ShouldBeNil)
	out, _, err = runApp(t, "", "undistort", "--convention", "brown", brownCoefficients,
		"--input", pointsPath, "--format", "csv")
	test.That(t, err, test.ShouldBeNil)
	origin := parseCSV(t, out)
	test.That(t, origin[0][3], test.ShouldEqual, "0")
	test.That(t, origin[0][4], test.ShouldEqual, "0")
}

func TestModelFlagErrors(t *testing.T) {
	_, _, err := runApp(t, "", "distort", "0.1,0.1")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "either --config or --convention is required")

	_, _, err = runApp(t, "", "distort", "--convention", "brown", "--coefficients", "1,2", "0.1,0.1")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "incorrect coefficients length 2")

	_, _, err = runApp(t, "", "distort", "--convention", "fisheye", "0.1,0.1")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown distortion convention "fisheye"`)

	_, _, err = runApp(t, "", "distort", "--convention", "brown")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no points given")

	_, _, err = runApp(t, "", "distort", "--convention", "brown", "0.1")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "argument 1")

	_, _, err = runApp(t, "", "distort", "--convention", "brown", "--input", filepath.Join(t.TempDir(), "missing"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "could not open points file")

	_, _, err = runApp(t, "", "undistort", "--convention", "brown", "--undistort-iterations", "3", "0,0")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "fixed undistort iteration count")
}

func TestConfigFileLenses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lenses.json")
	contents := `{
		"lenses": [
			{"name": "front", "convention": "brown", "coefficients": [-0.1, 0.2, -0.03]},
			{"name": "rear", "convention": "agisoft-metashape",
			 "coefficients": [-0.0700973, 0.0505032, 0.0271614, -0.0224442, 0.000855335, 0.000181009]}
		]
	}`
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)

	out, _, err := runApp(t, "", "coefficients", "--config", path, "--lens", "rear",
		"--undistort-iterations", "30", "--format", "csv")
	test.That(t, err, test.ShouldBeNil)
	rows := parseCSV(t, out)
	test.That(t, rows[0], test.ShouldResemble, []string{"k1", "-0.0700973"})
	test.That(t, rows[5], test.ShouldResemble, []string{"p2", "0.000181009"})
	test.That(t, rows[6], test.ShouldResemble, []string{"convention", "agisoft-metashape"})
	test.That(t, rows[7], test.ShouldResemble, []string{"components", "radial_simple|tangential"})
	test.That(t, rows[8], test.ShouldResemble, []string{"undistort iterations", "30"})

	out, _, err = runApp(t, contents, "coefficients", "--config", "-", "--format", "csv")
	test.That(t, err, test.ShouldBeNil)
	rows = parseCSV(t, out)
	test.That(t, len(rows), test.ShouldEqual, 11)
	test.That(t, rows[9], test.ShouldResemble, []string{"components", "radial_simple"})

	_, _, err = runApp(t, "", "coefficients", "--config", path, "--lens", "side")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `no lens named "side"`)
}

func TestTiltAction(t *testing.T) {
	out, _, err := runApp(t, "", "tilt", "--format", "csv")
	test.That(t, err, test.ShouldBeNil)
	rows := parseCSV(t, out)
	test.That(t, len(rows), test.ShouldEqual, 12)
	for r := 0; r < 3; r++ {
		test.That(t, rows[r][0], test.ShouldEqual, "tilt")
		for col := 0; col < 3; col++ {
			expected := 0.
			if r == col {
				expected = 1
			}
			test.That(t, parseFloat(t, rows[r][2+col]), test.ShouldAlmostEqual, expected)
		}
	}

	_, _, err = runApp(t, "", "tilt", "--tau-x", "90")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "degenerate tilt projection")

	_, _, err = runApp(t, "", "tilt", "--tau-x", "0.1", "--radians")
	test.That(t, err, test.ShouldBeNil)
}

func TestCheckAction(t *testing.T) {
	out, _, err := runApp(t, "", "check", "--convention", "opencv",
		"--coefficients=-0.12,0.08,0.0008,-0.0012,-0.01,0.02,-0.01,0.005,0.0005,-0.0002,0.0003,-0.0001",
		"--steps", "7", "--format", "csv")
	test.That(t, err, test.ShouldBeNil)
	rows := parseCSV(t, out)
	test.That(t, len(rows), test.ShouldEqual, 2)
	for _, row := range rows {
		test.That(t, row[1], test.ShouldEqual, "49")
		test.That(t, parseFloat(t, row[2]), test.ShouldBeLessThan, 1e-3)
		test.That(t, parseFloat(t, row[3]), test.ShouldBeLessThanOrEqualTo, parseFloat(t, row[2]))
	}

	_, _, err = runApp(t, "", "check", "--convention", "brown", "--steps", "0")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPlotAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.svg")
	out, _, err := runApp(t, "", "plot", "--convention", "brown", brownCoefficients,
		"--output", path, "--lines", "5", "--size", "2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "wrote "+path)
	info, err := os.Stat(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}

func TestDebugLogging(t *testing.T) {
	_, errOut, err := runApp(t, "", "--debug", "coefficients", "--convention", "brown")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "built lens model")

	_, errOut, err = runApp(t, "", "coefficients", "--convention", "brown")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldNotContainSubstring, "built lens model")
}
