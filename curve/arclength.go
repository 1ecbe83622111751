package curve

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/spatial/r3"
)

// ArcLength returns the approximate arc length of the cubic Hermite curve
// from v1, d1 to v2, d2, using 4 point Gauss-Legendre quadrature.
func ArcLength(v1, d1, v2, d2 r3.Vec) float64 {
	return quad.Fixed(func(xi float64) float64 {
		return r3.Norm(InterpolateDerivative(v1, d1, v2, d2, xi))
	}, 0, 1, 4, quad.Legendre{}, 0)
}

// ArcLengthToXi returns the approximate arc length of the cubic Hermite curve
// from v1, d1 up to the given xi coordinate.
func ArcLengthToXi(v1, d1, v2, d2 r3.Vec, xi float64) float64 {
	d1m := r3.Scale(xi, d1)
	v2m := Interpolate(v1, d1, v2, d2, xi)
	d2m := r3.Scale(xi, InterpolateDerivative(v1, d1, v2, d2, xi))
	return ArcLength(v1, d1m, v2m, d2m)
}

// ComputeArcLength computes the arc length between v1 and v2 for derivatives
// d1 and d2 rescaled to the arc length itself, by fixed point iteration.
// With rescale the iteration is seeded from the chord length, otherwise from
// the arc length of the supplied derivatives. Returns the best estimate if
// the iteration does not converge.
func ComputeArcLength(v1, d1, v2, d2 r3.Vec, rescale bool) float64 {
	var lastArcLength float64
	if rescale {
		lastArcLength = r3.Norm(r3.Sub(v2, v1))
	} else {
		lastArcLength = ArcLength(v1, d1, v2, d2)
	}
	u1 := SetMagnitude(d1, 1.0)
	u2 := SetMagnitude(d2, 1.0)
	const tol = 1.0e-6
	arcLength := lastArcLength
	for iter := 0; iter < 100; iter++ {
		arcLength = ArcLength(v1, r3.Scale(lastArcLength, u1), v2, r3.Scale(lastArcLength, u2))
		if iter > 9 {
			arcLength = 0.8*arcLength + 0.2*lastArcLength
		}
		if math.Abs(arcLength-lastArcLength) < tol*arcLength {
			return arcLength
		}
		lastArcLength = arcLength
	}
	return arcLength
}

// DerivativeScaling computes the scaling for d1 and d2 which makes their mean
// magnitude equal the resulting arc length, giving even curvature along the
// segment. Returns the best estimate if the iteration does not converge.
func DerivativeScaling(v1, d1, v2, d2 r3.Vec) float64 {
	origMag := 0.5 * (r3.Norm(d1) + r3.Norm(d2))
	scaling := 1.0
	for iter := 0; iter < 100; iter++ {
		mag := origMag * scaling
		arcLength := ArcLength(v1, r3.Scale(scaling, d1), v2, r3.Scale(scaling, d2))
		if math.Abs(arcLength-mag) < 1.0e-6*arcLength {
			break
		}
		scaling *= arcLength / mag
	}
	return scaling
}

// CurvesLength returns the total arc length of the cubic Hermite curves with
// nodes nx and derivatives nd1. With loop the last point connects back to the
// first.
func CurvesLength(nx, nd1 []r3.Vec, loop bool) float64 {
	elementsCount := len(nx)
	if !loop {
		elementsCount--
	}
	length := 0.0
	for e := 0; e < elementsCount; e++ {
		ep := (e + 1) % len(nx)
		length += ArcLength(nx[e], nd1[e], nx[ep], nd1[ep])
	}
	return length
}

// PointAtArcDistance returns the coordinates, derivative, element index and
// element xi at the given arc distance along the cubic Hermite curves with
// nodes nx and derivatives nd. Derivatives are used as supplied. The result
// is clamped to the first or last node if the distance is beyond the curves.
func PointAtArcDistance(nx, nd []r3.Vec, arcDistance float64) (x, d r3.Vec, element int, xi float64) {
	elementsCount := len(nx) - 1
	if arcDistance < 0.0 {
		return nx[0], nd[0], 0, 0.0
	}
	length := 0.0
	const xiDelta = 1.0e-6
	const xiTol = 1.0e-6
	for e := 0; e < elementsCount; e++ {
		partDistance := arcDistance - length
		v1, d1 := nx[e], nd[e]
		v2, d2 := nx[e+1], nd[e+1]
		arcLength := ArcLength(v1, d1, v2, d2)
		if partDistance <= arcLength {
			xi := partDistance / arcLength
			dxiLimit := 0.1
			for iter := 0; iter < 100; iter++ {
				xiLast := xi
				dist := ArcLengthToXi(v1, d1, v2, d2, xi)
				distp := ArcLengthToXi(v1, d1, v2, d2, xi+xiDelta)
				distm := ArcLengthToXi(v1, d1, v2, d2, xi-xiDelta)
				if (xi - xiDelta) < 0.0 {
					distm = -distm
				}
				dxi := 2.0 * xiDelta / (distp - distm) * (partDistance - dist)
				dxi = clamp(dxi, -dxiLimit, dxiLimit)
				xi += dxi
				if math.Abs(xi-xiLast) <= xiTol {
					return Interpolate(v1, d1, v2, d2, xi),
						InterpolateDerivative(v1, d1, v2, d2, xi), e, xi
				}
				switch iter {
				case 4, 10, 25, 62:
					dxiLimit *= 0.5
				}
			}
			return v2, d2, e, xi
		}
		length += arcLength
	}
	return nx[elementsCount], nd[elementsCount], elementsCount - 1, 1.0
}
