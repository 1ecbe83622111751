// Package surface provides a bicubic Hermite track surface: a rectangular
// lattice of patches over node coordinates and derivatives, with evaluation,
// in-plane projection, direction tracking, on-surface Hermite curve points
// and nearest-position projection.
package surface

import "errors"

var (
	// ErrPrecondition reports invalid input shapes or argument values.
	ErrPrecondition = errors.New("invalid precondition")
	// ErrDegenerateSurface reports a zero-area tangent pair where a
	// surface normal is required.
	ErrDegenerateSurface = errors.New("degenerate surface")
	// ErrTrackingFailed reports that tracking exceeded its step budget
	// without covering the requested distance.
	ErrTrackingFailed = errors.New("tracking failed")
)
