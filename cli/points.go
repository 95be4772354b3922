package cli

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ParsePoints reads one "x,y" pair per line. Blank lines and lines starting with '#' are skipped;
// whitespace around either number is ignored.
func ParsePoints(r io.Reader) ([]r2.Point, error) {
	var points []r2.Point
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := parsePoint(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read points")
	}
	return points, nil
}

func parsePoint(s string) (r2.Point, error) {
	xStr, yStr, found := strings.Cut(s, ",")
	if !found {
		return r2.Point{}, errors.Errorf("point %q does not follow the format: x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xStr), 64)
	if err != nil {
		return r2.Point{}, errors.Wrapf(err, "invalid x in %q", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(yStr), 64)
	if err != nil {
		return r2.Point{}, errors.Wrapf(err, "invalid y in %q", s)
	}
	return r2.Point{X: x, Y: y}, nil
}
