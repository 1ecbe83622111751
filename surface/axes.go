package surface

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// DeltaXi returns the in-plane xi components of a 3-D direction against the
// surface derivatives d1, d2, solving the overdetermined system by least
// squares. At a pole (linearly dependent derivatives) the direction is
// assumed inline with d1 or d2 and the other component is zero.
func DeltaXi(d1, d2, direction r3.Vec) (dxi1, dxi2 float64) {
	// normal equations: A transpose A x = A transpose b
	a := mat.NewSymDense(2, []float64{r3.Dot(d1, d1), r3.Dot(d1, d2), r3.Dot(d1, d2), r3.Dot(d2, d2)})
	b := mat.NewVecDense(2, []float64{r3.Dot(d1, direction), r3.Dot(d2, direction)})
	var chol mat.Cholesky
	if chol.Factorize(a) {
		var x mat.VecDense
		if err := chol.SolveVecTo(&x, b); err == nil {
			return x.AtVec(0), x.AtVec(1)
		}
	}
	// pole fallback
	if r3.Dot(d2, direction) != 0.0 {
		return 0.0, math.Copysign(r3.Norm(direction)/r3.Norm(d2), r3.Dot(d2, direction))
	}
	if r3.Dot(d1, direction) != 0.0 {
		return math.Copysign(r3.Norm(direction)/r3.Norm(d1), r3.Dot(d1, direction)), 0.0
	}
	return 0.0, 0.0
}

// Axes returns three unit vectors at a surface point with derivatives d1,
// d2: ax1 in-plane along the given 3-D direction, ax2 in-plane normal to
// ax1, and ax3 normal to the surface plane. A zero-area tangent pair fails
// with ErrDegenerateSurface.
func Axes(d1, d2, direction r3.Vec) (ax1, ax2, ax3 r3.Vec, err error) {
	dxi1, dxi2 := DeltaXi(d1, d2, direction)
	ax1 = normalize(r3.Add(r3.Scale(dxi1, d1), r3.Scale(dxi2, d2)))
	ax3 = r3.Cross(d1, d2)
	mag3 := r3.Norm(ax3)
	if mag3 == 0.0 {
		return r3.Vec{}, r3.Vec{}, r3.Vec{}, ErrDegenerateSurface
	}
	ax3 = r3.Scale(1.0/mag3, ax3)
	ax2 = normalize(r3.Cross(ax3, ax1))
	return ax1, ax2, ax3, nil
}

// normalize returns the unit vector of v, or zero for a zero vector.
func normalize(v r3.Vec) r3.Vec {
	mag := r3.Norm(v)
	if mag == 0.0 {
		return v
	}
	return r3.Scale(1.0/mag, v)
}
