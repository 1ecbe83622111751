package curve

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Curvature returns the signed scalar curvature (1/R) of the cubic Hermite
// curve at xi, measured against radial, a unit vector assumed normal to the
// curve tangent at that point. Returns zero where the tangent vanishes.
func Curvature(v1, d1, v2, d2, radial r3.Vec, xi float64) float64 {
	tangent := InterpolateDerivative(v1, d1, v2, d2, xi)
	magTangent := r3.Norm(tangent)
	if magTangent == 0.0 {
		return 0.0
	}
	dTangent := InterpolateSecondDerivative(v1, d1, v2, d2, xi)
	return r3.Dot(dTangent, radial) / (magTangent * magTangent)
}

// CurvatureSimple returns the unsigned scalar curvature (1/R) of the cubic
// Hermite curve at xi, with the tangent and tangent derivative there. Where
// the tangent vanishes the curvature and tangent derivative are zero.
func CurvatureSimple(v1, d1, v2, d2 r3.Vec, xi float64) (curvature float64, tangent, dTangent r3.Vec) {
	tangent = InterpolateDerivative(v1, d1, v2, d2, xi)
	magTangent := r3.Norm(tangent)
	if magTangent == 0.0 {
		return 0.0, tangent, r3.Vec{}
	}
	dTangent = InterpolateSecondDerivative(v1, d1, v2, d2, xi)
	curvature = r3.Norm(r3.Cross(tangent, dTangent)) / (magTangent * magTangent * magTangent)
	return curvature, tangent, dTangent
}
