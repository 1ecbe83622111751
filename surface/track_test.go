package surface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestIncrementXiOnSquareInside(t *testing.T) {
	nxi1, nxi2, proportion, face := incrementXiOnSquare(0.4, 0.5, 0.1, -0.2)
	assert.InDelta(t, 0.5, nxi1, 1e-12)
	assert.InDelta(t, 0.3, nxi2, 1e-12)
	assert.Equal(t, 1.0, proportion)
	assert.Equal(t, 0, face)
}

// The four face-clipping cases each move BOTH xi coordinates to the point
// where the increment hits the face, not just the clipped one.
func TestIncrementXiOnSquareFace1(t *testing.T) {
	// xi1 drops below 0 first
	nxi1, nxi2, proportion, face := incrementXiOnSquare(0.2, 0.5, -0.4, 0.2)
	assert.Equal(t, 1, face)
	assert.InDelta(t, 0.5, proportion, 1e-12)
	assert.Equal(t, 0.0, nxi1)
	assert.InDelta(t, 0.6, nxi2, 1e-12, "xi2 must advance by proportion*dxi2")
}

func TestIncrementXiOnSquareFace2(t *testing.T) {
	// xi1 exceeds 1 first
	nxi1, nxi2, proportion, face := incrementXiOnSquare(0.5, 0.5, 0.7, 0.3)
	assert.Equal(t, 2, face)
	assert.InDelta(t, 5.0/7.0, proportion, 1e-12)
	assert.Equal(t, 1.0, nxi1)
	assert.InDelta(t, 0.5+proportion*0.3, nxi2, 1e-12, "xi2 must advance by proportion*dxi2")
}

func TestIncrementXiOnSquareFace3(t *testing.T) {
	// xi2 drops below 0 first
	nxi1, nxi2, proportion, face := incrementXiOnSquare(0.5, 0.1, 0.2, -0.4)
	assert.Equal(t, 3, face)
	assert.InDelta(t, 0.25, proportion, 1e-12)
	assert.InDelta(t, 0.55, nxi1, 1e-12, "xi1 must advance by proportion*dxi1")
	assert.Equal(t, 0.0, nxi2)
}

func TestIncrementXiOnSquareFace4(t *testing.T) {
	// xi2 exceeds 1 first
	nxi1, nxi2, proportion, face := incrementXiOnSquare(0.5, 0.8, 0.1, 0.4)
	assert.Equal(t, 4, face)
	assert.InDelta(t, 0.5, proportion, 1e-12)
	assert.InDelta(t, 0.55, nxi1, 1e-12, "xi1 must advance by proportion*dxi1")
	assert.Equal(t, 1.0, nxi2)
}

func TestIncrementXiOnSquareNearestFaceWins(t *testing.T) {
	// heading towards both xi1==1 and xi2==1; xi2 is hit first
	_, _, proportion, face := incrementXiOnSquare(0.9, 0.95, 0.2, 0.2)
	assert.Equal(t, 4, face)
	assert.InDelta(t, 0.25, proportion, 1e-12)
}

func TestTrackWithinElement(t *testing.T) {
	s := flatSurface(t, 2, 2)
	start := Position{E1: 0, E2: 0, Xi1: 0.5, Xi2: 0.5}
	end, status, err := s.Track(start, r3.Vec{X: 1}, 0.3)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
	x, err := s.Evaluate(end)
	require.NoError(t, err)
	assertVecInDelta(t, r3.Vec{X: 0.8, Y: 0.5}, x, 1e-4)
}

func TestTrackAcrossElements(t *testing.T) {
	s := flatSurface(t, 2, 2)
	start := Position{E1: 0, E2: 0, Xi1: 0.5, Xi2: 0.5}
	end, status, err := s.Track(start, r3.Vec{X: 2, Y: 1}, 1.0)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
	x, err := s.Evaluate(end)
	require.NoError(t, err)
	want := r3.Add(r3.Vec{X: 0.5, Y: 0.5}, r3.Scale(1.0, r3.Unit(r3.Vec{X: 2, Y: 1})))
	assertVecInDelta(t, want, x, 1e-3)
	assert.Equal(t, 1, end.E1, "crossed into the next element in direction 1")
}

func TestTrackNegativeDistance(t *testing.T) {
	s := flatSurface(t, 2, 2)
	start := Position{E1: 1, E2: 1, Xi1: 0.5, Xi2: 0.5}
	end, status, err := s.Track(start, r3.Vec{X: 1}, -0.4)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
	x, err := s.Evaluate(end)
	require.NoError(t, err)
	assertVecInDelta(t, r3.Vec{X: 1.1, Y: 1.5}, x, 1e-4)
}

func TestTrackRoundTripOnCylinder(t *testing.T) {
	s := cylinderSurface(t, 4, 2, 2.0)
	start := Position{E1: 1, E2: 1, Xi1: 0.3, Xi2: 0.4}
	direction := r3.Vec{X: -0.4, Y: 0.6, Z: 0.7}
	distance := 0.5
	mid, status, err := s.Track(start, direction, distance)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, status)
	back, status, err := s.Track(mid, direction, -distance)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, status)
	startX, err := s.Evaluate(start)
	require.NoError(t, err)
	backX, err := s.Evaluate(back)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, r3.Norm(r3.Sub(backX, startX)), 1e-4)
}

func TestTrackAxialOnCylinder(t *testing.T) {
	s := cylinderSurface(t, 4, 2, 2.0)
	start := Position{E1: 2, E2: 0, Xi1: 0.5, Xi2: 0.0}
	end, status, err := s.Track(start, r3.Vec{Z: 1}, 1.5)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
	startX, err := s.Evaluate(start)
	require.NoError(t, err)
	endX, err := s.Evaluate(end)
	require.NoError(t, err)
	assert.InDelta(t, startX.Z+1.5, endX.Z, 1e-3)
	assert.InDelta(t, 1.0, math.Hypot(endX.X, endX.Y), 1e-3, "stays on the cylinder radius")
}

func TestTrackReachesBoundary(t *testing.T) {
	s := flatSurface(t, 2, 2)
	start := Position{E1: 1, E2: 0, Xi1: 0.5, Xi2: 0.5}
	end, status, err := s.Track(start, r3.Vec{X: 1}, 10.0)
	require.NoError(t, err)
	assert.Equal(t, StatusBoundary, status)
	assert.Equal(t, 1, end.E1)
	assert.Equal(t, 1.0, end.Xi1)
}

func TestTrackDegenerateDirection(t *testing.T) {
	s := flatSurface(t, 2, 2)
	start := Position{E1: 0, E2: 0, Xi1: 0.5, Xi2: 0.5}
	end, status, err := s.Track(start, r3.Vec{Z: 1}, 1.0)
	require.NoError(t, err)
	assert.Equal(t, StatusDegenerate, status)
	assert.Equal(t, start, end)
}

func TestTrackInvalidStart(t *testing.T) {
	s := flatSurface(t, 2, 2)
	_, _, err := s.Track(Position{E1: 5, E2: 0}, r3.Vec{X: 1}, 1.0)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestTrackZeroDistance(t *testing.T) {
	s := flatSurface(t, 2, 2)
	start := Position{E1: 0, E2: 1, Xi1: 0.25, Xi2: 0.75}
	end, status, err := s.Track(start, r3.Vec{X: 1}, 0.0)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
	assert.Equal(t, start, end)
}
