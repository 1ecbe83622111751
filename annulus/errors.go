// Package annulus generates a band of hexahedral cells bridging two
// rings of Hermite nodes, optionally constrained to lie on a track
// surface. Output goes through the Sink contract so any mesh backend can
// receive the nodes and cells.
package annulus

import "errors"

var (
	// ErrPrecondition reports invalid arguments such as a non-positive
	// radial subdivision count or missing surface proportions.
	ErrPrecondition = errors.New("invalid precondition")
	// ErrShapeMismatch reports rings whose layer or around counts do not
	// agree with each other or with their own optional arrays.
	ErrShapeMismatch = errors.New("ring shape mismatch")
)
