package surface

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ABI-Software/scaffoldmaker-sub005/curve"
)

// CurvePoints is a Hermite curve lying on a surface: coordinates, curve
// derivatives D1, in-plane cross derivatives D2 of similar magnitude, unit
// surface normals D3 and the surface proportions of each point.
type CurvePoints struct {
	X           []r3.Vec
	D1          []r3.Vec
	D2          []r3.Vec
	D3          []r3.Vec
	Proportions [][2]float64
}

// HermiteCurvePoints creates elementsCount+1 Hermite curve points between
// two points a and b on the surface, each given by proportions over the
// surface in directions 1 and 2, with smooth variation of element size.
// derivativeStart and derivativeEnd are optional 3-D world derivatives to
// match at the curve ends; omitted, the curve fits in with the other
// derivative or runs straight from a to b in proportion space.
func (s *Surface) HermiteCurvePoints(aProportion1, aProportion2, bProportion1, bProportion2 float64,
	elementsCount int, derivativeStart, derivativeEnd *r3.Vec) (*CurvePoints, error) {

	var dpStart, dpEnd r3.Vec // proportion-space derivatives, Z unused
	var magStart, magEnd float64
	if derivativeStart != nil {
		position, err := s.PositionFromProportion(aProportion1, aProportion2)
		if err != nil {
			return nil, err
		}
		_, sd1, sd2, err := s.EvaluateDerivatives(position)
		if err != nil {
			return nil, err
		}
		deltaXi1, deltaXi2 := DeltaXi(sd1, sd2, *derivativeStart)
		dpStart = r3.Vec{X: deltaXi1 / float64(s.elementsCount1), Y: deltaXi2 / float64(s.elementsCount2)}
		magStart = r3.Norm(dpStart)
		dpStart = r3.Scale(float64(elementsCount), dpStart)
	}
	if derivativeEnd != nil {
		position, err := s.PositionFromProportion(bProportion1, bProportion2)
		if err != nil {
			return nil, err
		}
		_, sd1, sd2, err := s.EvaluateDerivatives(position)
		if err != nil {
			return nil, err
		}
		deltaXi1, deltaXi2 := DeltaXi(sd1, sd2, *derivativeEnd)
		dpEnd = r3.Vec{X: deltaXi1 / float64(s.elementsCount1), Y: deltaXi2 / float64(s.elementsCount2)}
		magEnd = r3.Norm(dpEnd)
		dpEnd = r3.Scale(float64(elementsCount), dpEnd)
	}
	aProportion := r3.Vec{X: aProportion1, Y: aProportion2}
	bProportion := r3.Vec{X: bProportion1, Y: bProportion2}
	if derivativeStart == nil {
		if derivativeEnd != nil {
			dpStart = curve.LagrangeHermiteDerivative(aProportion, bProportion, dpEnd, 0.0)
		} else {
			dpStart = r3.Sub(bProportion, aProportion)
		}
		magStart = r3.Norm(dpStart) / float64(elementsCount)
	}
	if derivativeEnd == nil {
		if derivativeStart != nil {
			dpEnd = curve.HermiteLagrangeDerivative(aProportion, dpStart, bProportion, 1.0)
		} else {
			dpEnd = r3.Sub(bProportion, aProportion)
		}
		magEnd = r3.Norm(dpEnd) / float64(elementsCount)
	}
	smp, err := curve.SampleCurveSmooth(
		[]r3.Vec{aProportion, bProportion}, []r3.Vec{dpStart, dpEnd},
		elementsCount, magStart, magEnd)
	if err != nil {
		return nil, err
	}
	cp := &CurvePoints{
		X:           make([]r3.Vec, 0, elementsCount+1),
		D1:          make([]r3.Vec, 0, elementsCount+1),
		D2:          make([]r3.Vec, 0, elementsCount+1),
		D3:          make([]r3.Vec, 0, elementsCount+1),
		Proportions: make([][2]float64, 0, elementsCount+1),
	}
	for n := 0; n <= elementsCount; n++ {
		position, err := s.PositionFromProportion(clampUnit(smp.X[n].X), clampUnit(smp.X[n].Y))
		if err != nil {
			return nil, err
		}
		x, sd1, sd2, err := s.EvaluateDerivatives(position)
		if err != nil {
			return nil, err
		}
		f1 := smp.D1[n].X * float64(s.elementsCount1)
		f2 := smp.D1[n].Y * float64(s.elementsCount2)
		d1 := r3.Add(r3.Scale(f1, sd1), r3.Scale(f2, sd2))
		d3 := normalize(r3.Cross(sd1, sd2))
		d2 := r3.Cross(d3, d1)
		cp.X = append(cp.X, x)
		cp.D1 = append(cp.D1, d1)
		cp.D2 = append(cp.D2, d2)
		cp.D3 = append(cp.D3, d3)
		cp.Proportions = append(cp.Proportions, [2]float64{smp.X[n].X, smp.X[n].Y})
	}
	return cp, nil
}

// ResampleCurvePointsSmooth resamples on-surface curve points to smoothly
// varying element sizes fitting the optionally fixed end derivative
// magnitudes (NaN to derive), re-projecting interior points onto the
// surface and recalculating their cross derivatives and normals.
func (s *Surface) ResampleCurvePointsSmooth(cp *CurvePoints, magStart, magEnd float64) (*CurvePoints, error) {
	elementsCount := len(cp.X) - 1
	smp, err := curve.SampleCurveSmooth(cp.X, cp.D1, elementsCount, magStart, magEnd)
	if err != nil {
		return nil, err
	}
	out := &CurvePoints{
		X:           smp.X,
		D1:          smp.D1,
		D2:          append([]r3.Vec(nil), cp.D2...),
		D3:          append([]r3.Vec(nil), cp.D3...),
		Proportions: append([][2]float64(nil), cp.Proportions...),
	}
	if r3.Norm(out.D2[0]) > 0.0 {
		out.D2[0] = curve.SetMagnitude(out.D2[0], r3.Norm(out.D1[0]))
	}
	for n := 1; n < elementsCount; n++ {
		start, err := s.PositionFromProportion(out.Proportions[n][0], out.Proportions[n][1])
		if err != nil {
			return nil, err
		}
		p := s.FindNearestPosition(smp.X[n], start)
		proportion1, proportion2 := s.Proportion(p)
		out.Proportions[n] = [2]float64{proportion1, proportion2}
		_, sd1, sd2, err := s.EvaluateDerivatives(p)
		if err != nil {
			return nil, err
		}
		_, d2, d3, err := Axes(sd1, sd2, normalize(smp.D1[n]))
		if err != nil {
			return nil, err
		}
		out.D2[n] = curve.SetMagnitude(d2, r3.Norm(smp.D1[n]))
		out.D3[n] = d3
	}
	last := elementsCount
	if r3.Norm(out.D2[last]) > 0.0 {
		out.D2[last] = curve.SetMagnitude(out.D2[last], r3.Norm(out.D1[last]))
	}
	return out, nil
}

func clampUnit(p float64) float64 {
	return math.Min(math.Max(p, 0.0), 1.0)
}
