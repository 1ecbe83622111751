package surface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestHermiteCurvePointsStraightOnFlat(t *testing.T) {
	s := flatSurface(t, 4, 4)
	cp, err := s.HermiteCurvePoints(0.125, 0.25, 0.875, 0.25, 4, nil, nil)
	require.NoError(t, err)
	require.Len(t, cp.X, 5)
	for n, x := range cp.X {
		assert.InDelta(t, 1.0, x.Y, 1e-6, "point %d stays on the line", n)
		assert.InDelta(t, 0.0, x.Z, 1e-12)
	}
	// evenly spaced from 0.5 to 3.5 in world x
	for n := 0; n < 5; n++ {
		assert.InDelta(t, 0.5+0.75*float64(n), cp.X[n].X, 1e-6)
	}
	// d1 along the curve, d3 the surface normal, d2 = d3 x d1 in plane
	for n := range cp.D1 {
		assert.Greater(t, cp.D1[n].X, 0.0)
		assertVecInDelta(t, r3.Vec{Z: 1}, cp.D3[n], 1e-9)
		assert.InDelta(t, 0.0, cp.D2[n].X, 1e-9)
	}
	// proportions are monotonic along direction 1
	for n := 1; n < 5; n++ {
		assert.Greater(t, cp.Proportions[n][0], cp.Proportions[n-1][0])
		assert.InDelta(t, 0.25, cp.Proportions[n][1], 1e-9)
	}
}

func TestHermiteCurvePointsWithEndDerivatives(t *testing.T) {
	s := flatSurface(t, 4, 4)
	// small start derivative concentrates elements near the start
	derivativeStart := r3.Vec{X: 0.25}
	cp, err := s.HermiteCurvePoints(0.125, 0.5, 0.875, 0.5, 4, &derivativeStart, nil)
	require.NoError(t, err)
	require.Len(t, cp.X, 5)
	assert.InDelta(t, 0.25, r3.Norm(cp.D1[0]), 0.02, "start derivative matched")
	first := cp.X[1].X - cp.X[0].X
	last := cp.X[4].X - cp.X[3].X
	assert.Less(t, first, last)
}

func TestResampleCurvePointsSmooth(t *testing.T) {
	s := flatSurface(t, 4, 4)
	cp, err := s.HermiteCurvePoints(0.125, 0.25, 0.875, 0.25, 4, nil, nil)
	require.NoError(t, err)
	// unbalance derivative magnitudes then resample evenly
	cp.D1[1] = r3.Scale(1.5, cp.D1[1])
	cp.D1[3] = r3.Scale(0.6, cp.D1[3])
	nan := math.NaN()
	out, err := s.ResampleCurvePointsSmooth(cp, nan, nan)
	require.NoError(t, err)
	require.Len(t, out.X, len(cp.X))
	gap := out.X[1].X - out.X[0].X
	for n := 1; n < 4; n++ {
		assert.InDelta(t, gap, out.X[n+1].X-out.X[n].X, 1e-4, "even spacing after resample")
		assert.InDelta(t, 1.0, out.X[n].Y, 1e-4, "stays on the surface line")
	}
	for n := range out.D2 {
		assert.InDelta(t, r3.Norm(out.D1[n]), r3.Norm(out.D2[n]), 1e-6, "d2 magnitude follows d1")
	}
}

func TestFindNearestPositionOnFlat(t *testing.T) {
	s := flatSurface(t, 2, 2)
	start, err := s.PositionFromProportion(0.5, 0.5)
	require.NoError(t, err)
	p := s.FindNearestPosition(r3.Vec{X: 1.3, Y: 0.7, Z: 5.0}, start)
	x, err := s.Evaluate(p)
	require.NoError(t, err)
	assert.InDelta(t, 1.3, x.X, 1e-5)
	assert.InDelta(t, 0.7, x.Y, 1e-5)
}

func TestFindNearestPositionClampsToBoundary(t *testing.T) {
	s := flatSurface(t, 2, 2)
	start, err := s.PositionFromProportion(0.5, 0.5)
	require.NoError(t, err)
	p := s.FindNearestPosition(r3.Vec{X: 5.0, Y: 1.0}, start)
	x, err := s.Evaluate(p)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, x.X, 1e-5, "clamped to the far edge")
	assert.InDelta(t, 1.0, x.Y, 1e-5)
}

func TestFindNearestPositionOnCylinder(t *testing.T) {
	s := cylinderSurface(t, 4, 2, 2.0)
	start, err := s.PositionFromProportion(0.5, 0.5)
	require.NoError(t, err)
	// target off the surface radially
	theta := 0.3 * math.Pi
	target := r3.Vec{X: 2.0 * math.Cos(theta), Y: 2.0 * math.Sin(theta), Z: 1.2}
	p := s.FindNearestPosition(target, start)
	x, err := s.Evaluate(p)
	require.NoError(t, err)
	assert.InDelta(t, math.Cos(theta), x.X, 1e-3)
	assert.InDelta(t, math.Sin(theta), x.Y, 1e-3)
	assert.InDelta(t, 1.2, x.Z, 1e-3)
}
