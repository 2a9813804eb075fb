// Package pan implements the core's one panning law: equal-power.
//
// Adapted from the teacher's pkg/dsp/pan package, which offers Linear,
// ConstantPower, and Balanced laws behind a selector; corelx needs
// exactly one law, so the selector is dropped and only the
// ConstantPower formula survives, renamed to LeftPan/RightPan.
package pan

import "math"

// LeftPan returns the left-channel gain for pan position p in [-1, 1],
// using the equal-power law: cos((p+1)*pi/4).
func LeftPan(p float64) float64 {
	return math.Cos((p + 1) * math.Pi / 4)
}

// RightPan returns the right-channel gain for pan position p in [-1, 1],
// using the equal-power law: sin((p+1)*pi/4).
func RightPan(p float64) float64 {
	return math.Sin((p + 1) * math.Pi / 4)
}
