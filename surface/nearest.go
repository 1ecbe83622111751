package surface

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ABI-Software/scaffoldmaker-sub005/curve"
)

// FindNearestPosition returns the position on the surface nearest to
// targetx, iterating from start. Only reliable for simply shaped surfaces;
// use a close start position if not. The iteration is bounded and returns
// the best position found.
func (s *Surface) FindNearestPosition(targetx r3.Vec, start Position) Position {
	position := start
	const maxMag = 0.5 // target/maximum magnitude of xi increment
	const xiTol = 1.0e-7
	minCurvature := 0.1 / math.Max(s.xRange.X, math.Max(s.xRange.Y, s.xRange.Z))
	const maxCurvatureFactor = 100.0
	for it := 0; it < 100; it++ {
		x, d1, d2, err := s.EvaluateDerivatives(position)
		if err != nil {
			return position
		}
		var onBoundary int
		position, onBoundary = s.positionOnBoundary(position)
		r := r3.Sub(targetx, x)
		dxi1, dxi2 := DeltaXi(d1, d2, r)
		if onBoundary != 0 {
			// track along the boundary edge if the increment points
			// outward; d1 and d2 may not be orthogonal there
			bdxi1, bdxi2, _ := s.boundaryDirection(position)
			outward := normalize(r3.Add(r3.Scale(bdxi1, d1), r3.Scale(bdxi2, d2)))
			if r3.Dot(r, outward) > 0.0 {
				if onBoundary == 1 {
					magD := r3.Norm(d2)
					dxi1, dxi2 = 0.0, r3.Dot(d2, r)/(magD*magD)
				} else {
					magD := r3.Norm(d1)
					dxi1, dxi2 = r3.Dot(d1, r)/(magD*magD), 0.0
				}
			}
		}
		magDxi := math.Hypot(dxi1, dxi2)
		if magDxi == 0.0 {
			break
		}
		curvature, tangent, dTangent := s.directionalCurvature(position, dxi1, dxi2)
		if curvature > minCurvature {
			// non-linear increment using the radius of curvature
			radius := 1.0 / curvature
			jVector := normalize(tangent)
			iVector := normalize(r3.Cross(tangent, r3.Cross(tangent, dTangent)))
			centre := r3.Sub(x, r3.Scale(radius, iVector))
			delta := r3.Sub(targetx, centre)
			dj := r3.Dot(delta, jVector)
			di := r3.Dot(delta, iVector)
			angle := math.Atan2(dj, di)
			var curvatureFactor float64
			if it < 10 && math.Abs(angle) > 0.1 {
				arcLength := radius * angle
				originalLength := r3.Norm(r3.Add(r3.Scale(dxi1, d1), r3.Scale(dxi2, d2)))
				curvatureFactor = arcLength / originalLength
			} else {
				curvatureFactor = math.Min(radius/di, maxCurvatureFactor)
			}
			dxi1 *= curvatureFactor
			dxi2 *= curvatureFactor
		}
		var adxi1, adxi2 float64
		position, _, adxi1, adxi2 = s.advancePosition(position, dxi1, dxi2, maxMag)
		if math.Hypot(adxi1, adxi2) < xiTol {
			break
		}
	}
	return position
}

// directionalCurvature returns the positive scalar curvature (1/R) of the
// surface at a position in the xi direction (dxi1, dxi2), with the 3-D
// tangent and tangent derivative.
func (s *Surface) directionalCurvature(p Position, dxi1, dxi2 float64) (curvature float64, tangent, dTangent r3.Vec) {
	const deltaXi = 1.0e-5
	magDir := math.Hypot(dxi1, dxi2)
	hxi1 := deltaXi * dxi1 / magDir
	hxi2 := deltaXi * dxi2 / magDir
	pa := p.offsetXi(-0.5*hxi1, -0.5*hxi2)
	xa, d1, d2, err := s.EvaluateDerivatives(pa)
	if err != nil {
		return 0.0, r3.Vec{}, r3.Vec{}
	}
	da := r3.Add(r3.Scale(hxi1, d1), r3.Scale(hxi2, d2))
	pb := pa.offsetXi(hxi1, hxi2)
	xb, d1, d2, err := s.EvaluateDerivatives(pb)
	if err != nil {
		return 0.0, r3.Vec{}, r3.Vec{}
	}
	db := r3.Add(r3.Scale(hxi1, d1), r3.Scale(hxi2, d2))
	curvature, tangent, dTangent = curve.CurvatureSimple(xa, da, xb, db, 0.5)
	return curvature, r3.Scale(1.0/deltaXi, tangent), r3.Scale(1.0/(deltaXi*deltaXi), dTangent)
}

// advancePosition moves a position by an element xi increment, limited to
// maxMag and clamped to the lattice boundary. Returns the new position, the
// boundary reached (0 none, 1 xi1, 2 xi2) and the actual increments.
func (s *Surface) advancePosition(start Position, dxi1, dxi2, maxMag float64) (Position, int, float64, float64) {
	startProportion1, startProportion2 := s.Proportion(start)
	adxi1, adxi2 := dxi1, dxi2
	magDxi := math.Hypot(dxi1, dxi2)
	if magDxi > maxMag {
		factor := maxMag / magDxi
		adxi1 *= factor
		adxi2 *= factor
	}
	proportion1 := startProportion1 + adxi1/float64(s.elementsCount1)
	proportion2 := startProportion2 + adxi2/float64(s.elementsCount2)
	onBoundary := 0
	if proportion1 < 0.0 {
		proportion1 = 0.0
		onBoundary = 1
	} else if proportion1 > 1.0 {
		proportion1 = 1.0
		onBoundary = 1
	}
	if proportion2 < 0.0 {
		proportion2 = 0.0
		onBoundary = 2
	} else if proportion2 > 1.0 {
		proportion2 = 1.0
		onBoundary = 2
	}
	if onBoundary != 0 {
		adxi1 = (proportion1 - startProportion1) * float64(s.elementsCount1)
		adxi2 = (proportion2 - startProportion2) * float64(s.elementsCount2)
	}
	position, _ := s.PositionFromProportion(proportion1, proportion2)
	return position, onBoundary, adxi1, adxi2
}
