package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// semicirclePoints returns nodes and tangent derivatives for a unit
// semicircle in the XY plane sampled at n+1 points, derivatives scaled to
// the true arc length per element.
func semicirclePoints(n int) (nx, nd1 []r3.Vec) {
	mag := math.Pi / float64(n)
	for i := 0; i <= n; i++ {
		theta := math.Pi * float64(i) / float64(n)
		nx = append(nx, r3.Vec{X: math.Cos(theta), Y: math.Sin(theta)})
		nd1 = append(nd1, r3.Vec{X: -math.Sin(theta) * mag, Y: math.Cos(theta) * mag})
	}
	return nx, nd1
}

func TestArcLengthStraightLine(t *testing.T) {
	v1 := r3.Vec{}
	v2 := r3.Vec{X: 3, Y: 4}
	d := r3.Sub(v2, v1)
	assert.InDelta(t, 5.0, ArcLength(v1, d, v2, d), 1e-12)
	assert.InDelta(t, 2.5, ArcLengthToXi(v1, d, v2, d, 0.5), 1e-12)
	assert.InDelta(t, 0.0, ArcLengthToXi(v1, d, v2, d, 0.0), 1e-12)
}

func TestArcLengthQuarterCircle(t *testing.T) {
	// quarter unit circle with arc-length derivatives
	mag := math.Pi / 2.0
	v1 := r3.Vec{X: 1}
	d1 := r3.Vec{Y: mag}
	v2 := r3.Vec{Y: 1}
	d2 := r3.Vec{X: -mag}
	assert.InDelta(t, mag, ArcLength(v1, d1, v2, d2), 1e-3)
}

func TestComputeArcLengthSemicircleSegment(t *testing.T) {
	// 90 degree arc, initial derivatives unit, rescaled internally
	v1 := r3.Vec{X: 1}
	d1 := r3.Vec{Y: 1}
	v2 := r3.Vec{Y: 1}
	d2 := r3.Vec{X: -1}
	arcLength := ComputeArcLength(v1, d1, v2, d2, true)
	assert.InDelta(t, math.Pi/2.0, arcLength, 1e-2)
}

func TestDerivativeScalingEvensMagnitudes(t *testing.T) {
	v1 := r3.Vec{X: 1}
	d1 := r3.Vec{Y: 0.5}
	v2 := r3.Vec{Y: 1}
	d2 := r3.Vec{X: -2.0}
	scaling := DerivativeScaling(v1, d1, v2, d2)
	sd1 := r3.Scale(scaling, d1)
	sd2 := r3.Scale(scaling, d2)
	arcLength := ArcLength(v1, sd1, v2, sd2)
	meanMag := 0.5 * (r3.Norm(sd1) + r3.Norm(sd2))
	assert.InDelta(t, arcLength, meanMag, 1e-5*arcLength)
}

func TestCurvesLength(t *testing.T) {
	nx, nd1 := semicirclePoints(8)
	assert.InDelta(t, math.Pi, CurvesLength(nx, nd1, false), 1e-3)

	// straight polyline of two unit elements
	px := []r3.Vec{{}, {X: 1}, {X: 2}}
	pd := []r3.Vec{{X: 1}, {X: 1}, {X: 1}}
	assert.InDelta(t, 2.0, CurvesLength(px, pd, false), 1e-12)
}

func TestPointAtArcDistanceStraightLine(t *testing.T) {
	nx := []r3.Vec{{}, {X: 2}, {X: 4}}
	nd := []r3.Vec{{X: 2}, {X: 2}, {X: 2}}
	x, d, element, xi := PointAtArcDistance(nx, nd, 3.0)
	assert.InDelta(t, 3.0, x.X, 1e-9)
	assert.InDelta(t, 2.0, d.X, 1e-9)
	assert.Equal(t, 1, element)
	assert.InDelta(t, 0.5, xi, 1e-9)
}

func TestPointAtArcDistanceClamped(t *testing.T) {
	nx := []r3.Vec{{}, {X: 1}}
	nd := []r3.Vec{{X: 1}, {X: 1}}
	x, _, element, xi := PointAtArcDistance(nx, nd, -0.5)
	assert.Equal(t, r3.Vec{}, x)
	assert.Equal(t, 0, element)
	assert.Equal(t, 0.0, xi)
	x, _, element, xi = PointAtArcDistance(nx, nd, 2.5)
	assert.Equal(t, r3.Vec{X: 1}, x)
	assert.Equal(t, 0, element)
	assert.Equal(t, 1.0, xi)
}

func TestPointAtArcDistanceOnSemicircle(t *testing.T) {
	nx, nd1 := semicirclePoints(8)
	// halfway along the semicircle is the apex (0, 1)
	x, d, _, _ := PointAtArcDistance(nx, nd1, math.Pi/2.0)
	require.InDelta(t, 0.0, x.X, 1e-3)
	require.InDelta(t, 1.0, x.Y, 1e-3)
	// tangent points in -X
	assert.Less(t, d.X, 0.0)
	assert.InDelta(t, 0.0, d.Y, 1e-2)
}
