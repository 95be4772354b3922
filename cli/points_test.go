package cli

import (
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestParsePoints(t *testing.T) {
	points, err := ParsePoints(strings.NewReader("# header\n0.1,0.2\n\n  -0.3 , 4e-2 \n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, points, test.ShouldResemble, []r2.Point{{X: 0.1, Y: 0.2}, {X: -0.3, Y: 0.04}})

	points, err = ParsePoints(strings.NewReader(""))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, points, test.ShouldBeEmpty)

	_, err = ParsePoints(strings.NewReader("0.1,0.2\n0.3\n"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "line 2")
	test.That(t, err.Error(), test.ShouldContainSubstring, "x,y")

	_, err = ParsePoints(strings.NewReader("a,1"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid x")

	_, err = ParsePoints(strings.NewReader("1,b"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid y")
}
