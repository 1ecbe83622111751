// Package curve provides cubic Hermite curve mathematics: basis evaluation,
// interpolation, arc length, curvature, arc-length resampling and derivative
// smoothing for polylines of nodes with derivatives.
package curve

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// HermiteBasis returns the four cubic Hermite basis function values at xi.
func HermiteBasis(xi float64) (f1, f2, f3, f4 float64) {
	xi2 := xi * xi
	xi3 := xi2 * xi
	f1 = 1.0 - 3.0*xi2 + 2.0*xi3
	f2 = xi - 2.0*xi2 + xi3
	f3 = 3.0*xi2 - 2.0*xi3
	f4 = -xi2 + xi3
	return
}

// HermiteBasisDerivatives returns the xi-derivatives of the four cubic
// Hermite basis functions at xi.
func HermiteBasisDerivatives(xi float64) (df1, df2, df3, df4 float64) {
	xi2 := xi * xi
	df1 = -6.0*xi + 6.0*xi2
	df2 = 1.0 - 4.0*xi + 3.0*xi2
	df3 = 6.0*xi - 6.0*xi2
	df4 = -2.0*xi + 3.0*xi2
	return
}

// Interpolate returns the value of the cubic Hermite curve from v1, d1 to
// v2, d2 at xi.
func Interpolate(v1, d1, v2, d2 r3.Vec, xi float64) r3.Vec {
	f1, f2, f3, f4 := HermiteBasis(xi)
	return r3.Add(r3.Add(r3.Add(r3.Scale(f1, v1), r3.Scale(f2, d1)), r3.Scale(f3, v2)), r3.Scale(f4, d2))
}

// InterpolateDerivative returns the xi-derivative of the cubic Hermite curve
// from v1, d1 to v2, d2 at xi.
func InterpolateDerivative(v1, d1, v2, d2 r3.Vec, xi float64) r3.Vec {
	df1, df2, df3, df4 := HermiteBasisDerivatives(xi)
	return r3.Add(r3.Add(r3.Add(r3.Scale(df1, v1), r3.Scale(df2, d1)), r3.Scale(df3, v2)), r3.Scale(df4, d2))
}

// InterpolateSecondDerivative returns the second xi-derivative of the cubic
// Hermite curve from v1, d1 to v2, d2 at xi.
func InterpolateSecondDerivative(v1, d1, v2, d2 r3.Vec, xi float64) r3.Vec {
	f1 := -6.0 + 12.0*xi
	f2 := -4.0 + 6.0*xi
	f3 := 6.0 - 12.0*xi
	f4 := -2.0 + 6.0*xi
	return r3.Add(r3.Add(r3.Add(r3.Scale(f1, v1), r3.Scale(f2, d1)), r3.Scale(f3, v2)), r3.Scale(f4, d2))
}

// HermiteLagrange returns the value at xi of the quadratic Hermite-Lagrange
// interpolation from v1 with derivative d1 to v2.
func HermiteLagrange(v1, d1, v2 r3.Vec, xi float64) r3.Vec {
	xi2 := xi * xi
	return r3.Add(r3.Add(r3.Scale(1.0-xi2, v1), r3.Scale(xi-xi2, d1)), r3.Scale(xi2, v2))
}

// HermiteLagrangeDerivative returns the xi-derivative at xi of the quadratic
// Hermite-Lagrange interpolation from v1 with derivative d1 to v2.
func HermiteLagrangeDerivative(v1, d1, v2 r3.Vec, xi float64) r3.Vec {
	return r3.Add(r3.Add(r3.Scale(-2.0*xi, v1), r3.Scale(1.0-2.0*xi, d1)), r3.Scale(2.0*xi, v2))
}

// LagrangeHermite returns the value at xi of the quadratic Lagrange-Hermite
// interpolation from v1 to v2 with derivative d2.
func LagrangeHermite(v1, v2, d2 r3.Vec, xi float64) r3.Vec {
	xi2 := xi * xi
	return r3.Add(r3.Add(r3.Scale(1.0-2.0*xi+xi2, v1), r3.Scale(2.0*xi-xi2, v2)), r3.Scale(-xi+xi2, d2))
}

// LagrangeHermiteDerivative returns the xi-derivative at xi of the quadratic
// Lagrange-Hermite interpolation from v1 to v2 with derivative d2.
func LagrangeHermiteDerivative(v1, v2, d2 r3.Vec, xi float64) r3.Vec {
	return r3.Add(r3.Add(r3.Scale(-2.0+2.0*xi, v1), r3.Scale(2.0-2.0*xi, v2)), r3.Scale(-1.0+2.0*xi, d2))
}

// SetMagnitude returns v rescaled to the given magnitude. A zero vector is
// returned unchanged.
func SetMagnitude(v r3.Vec, mag float64) r3.Vec {
	m := r3.Norm(v)
	if m == 0.0 {
		return v
	}
	return r3.Scale(mag/m, v)
}

// clamp limits x to [lo, hi].
func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
