package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCurvatureCircle(t *testing.T) {
	// 90 degree arc of a circle radius 2: curvature 1/2
	r := 2.0
	mag := r * math.Pi / 2.0
	v1 := r3.Vec{X: r}
	d1 := r3.Vec{Y: mag}
	v2 := r3.Vec{Y: r}
	d2 := r3.Vec{X: -mag}
	inward := r3.Vec{X: -1} // at xi=0, towards centre
	c := Curvature(v1, d1, v2, d2, inward, 0.0)
	assert.InDelta(t, 1.0/r, c, 2e-2)
	// against the outward normal the sign flips
	c = Curvature(v1, d1, v2, d2, r3.Scale(-1, inward), 0.0)
	assert.InDelta(t, -1.0/r, c, 2e-2)

	cs, tangent, _ := CurvatureSimple(v1, d1, v2, d2, 0.0)
	assert.InDelta(t, 1.0/r, cs, 2e-2)
	assert.InDelta(t, 0.0, tangent.X, 1e-12)
	assert.Greater(t, tangent.Y, 0.0)
}

func TestCurvatureStraightLineIsZero(t *testing.T) {
	v1 := r3.Vec{}
	v2 := r3.Vec{X: 1, Y: 1}
	d := r3.Sub(v2, v1)
	assert.InDelta(t, 0.0, Curvature(v1, d, v2, d, r3.Vec{Z: 1}, 0.5), 1e-12)
	c, _, _ := CurvatureSimple(v1, d, v2, d, 0.5)
	assert.InDelta(t, 0.0, c, 1e-12)
}

func TestCurvatureZeroTangentGuard(t *testing.T) {
	// derivatives cancel at xi=0.5 midpoint of a degenerate segment
	v := r3.Vec{X: 1}
	zero := r3.Vec{}
	assert.Equal(t, 0.0, Curvature(v, zero, v, zero, r3.Vec{Z: 1}, 0.5))
	c, tangent, dTangent := CurvatureSimple(v, zero, v, zero, 0.5)
	assert.Equal(t, 0.0, c)
	assert.Equal(t, r3.Vec{}, tangent)
	assert.Equal(t, r3.Vec{}, dTangent)
}
