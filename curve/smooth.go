package curve

import (
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// ScalingMode selects the expression used to get a smoothed derivative
// magnitude from the arc lengths of the adjacent elements.
type ScalingMode uint8

const (
	// ArithmeticMean: derivative is half the sum of adjacent arc lengths.
	ArithmeticMean ScalingMode = iota
	// HarmonicMean: reciprocal of the mean of reciprocals; weights arc
	// lengths by the proportion from the other side, reducing magnitude
	// bias on non-uniform spacing.
	HarmonicMean
)

// SmoothOptions controls SmoothLine.
type SmoothOptions struct {
	// FixAllDirections smooths magnitudes only.
	FixAllDirections bool
	// FixStartDerivative and FixEndDerivative keep the respective end
	// derivative unchanged in direction and magnitude.
	FixStartDerivative bool
	FixEndDerivative   bool
	// FixStartDirection and FixEndDirection keep only the direction at
	// the respective end. Redundant with FixAllDirections or the
	// corresponding fixed derivative.
	FixStartDirection bool
	FixEndDirection   bool
	Mode              ScalingMode
}

const smoothIterations = 100

// SmoothLine returns derivatives smoothly varying and near arc length for
// the open curve with nodes nx and initial derivatives nd1. Initial
// derivatives are assumed zero or reasonable. Inputs are not modified; the
// best estimate is returned if the iteration does not converge.
func SmoothLine(nx, nd1 []r3.Vec, opts SmoothOptions) ([]r3.Vec, error) {
	nodesCount := len(nx)
	elementsCount := nodesCount - 1
	if elementsCount < 1 || len(nd1) != nodesCount {
		return nil, fmt.Errorf("curve: SmoothLine: %w: need >= 2 nodes and matching derivatives",
			ErrPrecondition)
	}
	md1 := make([]r3.Vec, nodesCount)
	copy(md1, nd1)
	if elementsCount == 1 {
		// single element special cases
		if !(opts.FixStartDerivative || opts.FixEndDerivative ||
			opts.FixStartDirection || opts.FixEndDirection || opts.FixAllDirections) {
			delta := r3.Sub(nx[1], nx[0])
			return []r3.Vec{delta, delta}, nil
		}
		if opts.FixAllDirections || (opts.FixStartDirection && opts.FixEndDirection) {
			arcLength := ComputeArcLength(nx[0], nd1[0], nx[1], nd1[1], true)
			return []r3.Vec{
				SetMagnitude(nd1[0], arcLength),
				SetMagnitude(nd1[1], arcLength),
			}, nil
		}
	}
	const tol = 1.0e-6
	arcLengths := make([]float64, elementsCount)
	lastmd1 := make([]r3.Vec, nodesCount)
	for iter := 0; iter < smoothIterations; iter++ {
		copy(lastmd1, md1)
		arcLengthSum := 0.0
		for e := 0; e < elementsCount; e++ {
			arcLengths[e] = ArcLength(nx[e], md1[e], nx[e+1], md1[e+1])
			arcLengthSum += arcLengths[e]
		}
		if !opts.FixStartDerivative {
			if opts.FixAllDirections || opts.FixStartDirection {
				mag := 2.0*arcLengths[0] - r3.Norm(lastmd1[1])
				if mag > 0.0 {
					md1[0] = SetMagnitude(nd1[0], mag)
				} else {
					md1[0] = r3.Vec{}
				}
			} else {
				md1[0] = LagrangeHermiteDerivative(nx[0], nx[1], lastmd1[1], 0.0)
			}
		}
		for n := 1; n < nodesCount-1; n++ {
			nm := n - 1
			if !opts.FixAllDirections {
				// mean of directions to adjacent points, weighted by
				// fraction towards that end
				md1[n] = meanChordDirection(nx[nm], nx[n], nx[n+1], arcLengths[nm], arcLengths[n])
			}
			md1[n] = SetMagnitude(md1[n], meanMagnitude(arcLengths[nm], arcLengths[n], opts.Mode))
		}
		if !opts.FixEndDerivative {
			last := nodesCount - 1
			if opts.FixAllDirections || opts.FixEndDirection {
				mag := 2.0*arcLengths[elementsCount-1] - r3.Norm(lastmd1[last-1])
				if mag > 0.0 {
					md1[last] = SetMagnitude(nd1[last], mag)
				} else {
					md1[last] = r3.Vec{}
				}
			} else {
				md1[last] = HermiteLagrangeDerivative(nx[last-1], lastmd1[last-1], nx[last], 1.0)
			}
		}
		if derivativesConverged(md1, lastmd1, tol*arcLengthSum/float64(elementsCount)) {
			break
		}
	}
	return md1, nil
}

// SmoothLoop is SmoothLine for a closed curve: the first point follows the
// last. Inputs are not modified.
func SmoothLoop(nx, nd1 []r3.Vec, fixAllDirections bool, mode ScalingMode) ([]r3.Vec, error) {
	nodesCount := len(nx)
	if nodesCount < 2 || len(nd1) != nodesCount {
		return nil, fmt.Errorf("curve: SmoothLoop: %w: need >= 2 nodes and matching derivatives",
			ErrPrecondition)
	}
	elementsCount := nodesCount
	md1 := make([]r3.Vec, nodesCount)
	copy(md1, nd1)
	const tol = 1.0e-6
	arcLengths := make([]float64, elementsCount)
	lastmd1 := make([]r3.Vec, nodesCount)
	for iter := 0; iter < smoothIterations; iter++ {
		copy(lastmd1, md1)
		arcLengthSum := 0.0
		for e := 0; e < elementsCount; e++ {
			ep := (e + 1) % elementsCount
			arcLengths[e] = ArcLength(nx[e], md1[e], nx[ep], md1[ep])
			arcLengthSum += arcLengths[e]
		}
		for n := 0; n < nodesCount; n++ {
			nm := (n - 1 + nodesCount) % nodesCount
			if !fixAllDirections {
				np := (n + 1) % nodesCount
				md1[n] = meanChordDirection(nx[nm], nx[n], nx[np], arcLengths[nm], arcLengths[n])
			}
			md1[n] = SetMagnitude(md1[n], meanMagnitude(arcLengths[nm], arcLengths[n], mode))
		}
		if derivativesConverged(md1, lastmd1, tol*arcLengthSum/float64(elementsCount)) {
			break
		}
	}
	return md1, nil
}

// meanChordDirection returns the directions from xm to x and x to xp,
// weighted by the fraction towards the other end, equivalent to a harmonic
// mean of the chords.
func meanChordDirection(xm, x, xp r3.Vec, arcLengthm, arcLength float64) r3.Vec {
	dirm := r3.Sub(x, xm)
	dirp := r3.Sub(xp, x)
	sum := arcLengthm + arcLength
	wm := arcLength / sum
	wp := arcLengthm / sum
	return r3.Add(r3.Scale(wm, dirm), r3.Scale(wp, dirp))
}

func meanMagnitude(a, b float64, mode ScalingMode) float64 {
	if mode == HarmonicMean {
		return 2.0 / (1.0/a + 1.0/b)
	}
	return 0.5 * (a + b)
}

func derivativesConverged(md1, lastmd1 []r3.Vec, dtol float64) bool {
	for n := range md1 {
		if !scalar.EqualWithinAbs(md1[n].X, lastmd1[n].X, dtol) ||
			!scalar.EqualWithinAbs(md1[n].Y, lastmd1[n].Y, dtol) ||
			!scalar.EqualWithinAbs(md1[n].Z, lastmd1[n].Z, dtol) {
			return false
		}
	}
	return true
}
