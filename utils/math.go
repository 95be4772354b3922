// Package utils contains small numeric helpers shared across lensdistort.
package utils

import "math"

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Square returns n*n. math.Pow(n, 2) is slower.
func Square(n float64) float64 {
	return n * n
}

