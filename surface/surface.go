package surface

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ABI-Software/scaffoldmaker-sub005/curve"
)

// Position locates a point on a Surface: element indices and local xi
// coordinates, each nominally in [0, 1]. Positions are values; copies are
// independent.
type Position struct {
	E1, E2   int
	Xi1, Xi2 float64
}

func (p Position) String() string {
	return fmt.Sprintf("element (%d,%d) xi (%g,%g)", p.E1, p.E2, p.Xi1, p.Xi2)
}

// offsetXi returns the position with xi coordinates offset, which may leave
// the nominal [0, 1] range for evaluation just outside the element.
func (p Position) offsetXi(dxi1, dxi2 float64) Position {
	p.Xi1 += dxi1
	p.Xi2 += dxi2
	return p
}

// Surface is a lattice of elementsCount1*elementsCount2 bicubic Hermite
// patches, with nodes varying across direction 1 fastest and zero cross
// derivatives. Immutable after New; safe for concurrent use.
type Surface struct {
	elementsCount1 int
	elementsCount2 int
	nx             []r3.Vec
	nd1            []r3.Vec
	nd2            []r3.Vec
	xRange         r3.Vec // coordinate ranges for tolerance scaling
}

// New creates a Surface over (elementsCount1+1)*(elementsCount2+1) node
// coordinates and derivatives in both directions. Input slices are copied.
func New(elementsCount1, elementsCount2 int, nx, nd1, nd2 []r3.Vec) (*Surface, error) {
	if elementsCount1 < 1 || elementsCount2 < 1 {
		return nil, fmt.Errorf("surface: New: %w: element counts %d x %d must be positive",
			ErrPrecondition, elementsCount1, elementsCount2)
	}
	nodesCount := (elementsCount1 + 1) * (elementsCount2 + 1)
	if len(nx) != nodesCount || len(nd1) != nodesCount || len(nd2) != nodesCount {
		return nil, fmt.Errorf("surface: New: %w: need %d nodes with derivatives, got %d/%d/%d",
			ErrPrecondition, nodesCount, len(nx), len(nd1), len(nd2))
	}
	s := &Surface{
		elementsCount1: elementsCount1,
		elementsCount2: elementsCount2,
		nx:             append([]r3.Vec(nil), nx...),
		nd1:            append([]r3.Vec(nil), nd1...),
		nd2:            append([]r3.Vec(nil), nd2...),
	}
	xMin, xMax := nx[0], nx[0]
	for _, x := range nx {
		xMin = r3.Vec{X: math.Min(xMin.X, x.X), Y: math.Min(xMin.Y, x.Y), Z: math.Min(xMin.Z, x.Z)}
		xMax = r3.Vec{X: math.Max(xMax.X, x.X), Y: math.Max(xMax.Y, x.Y), Z: math.Max(xMax.Z, x.Z)}
	}
	s.xRange = r3.Sub(xMax, xMin)
	return s, nil
}

func (s *Surface) ElementsCount1() int { return s.elementsCount1 }
func (s *Surface) ElementsCount2() int { return s.elementsCount2 }

// PositionFromProportion returns the position for proportions across
// directions 1 and 2, each in [0, 1] with elements equally sized.
func (s *Surface) PositionFromProportion(proportion1, proportion2 float64) (Position, error) {
	if proportion1 < 0.0 || proportion1 > 1.0 || proportion2 < 0.0 || proportion2 > 1.0 {
		return Position{}, fmt.Errorf("surface: PositionFromProportion: %w: proportions (%g,%g) out of range",
			ErrPrecondition, proportion1, proportion2)
	}
	e1, xi1 := splitProportion(proportion1, s.elementsCount1)
	e2, xi2 := splitProportion(proportion2, s.elementsCount2)
	return Position{E1: e1, E2: e2, Xi1: xi1, Xi2: xi2}, nil
}

func splitProportion(proportion float64, elementsCount int) (element int, xi float64) {
	pe := proportion * float64(elementsCount)
	if pe < float64(elementsCount) {
		element = int(pe)
		return element, pe - float64(element)
	}
	return elementsCount - 1, 1.0
}

// Proportion returns the proportions across directions 1 and 2 of a
// position on this surface.
func (s *Surface) Proportion(p Position) (proportion1, proportion2 float64) {
	return (float64(p.E1) + p.Xi1) / float64(s.elementsCount1),
		(float64(p.E2) + p.Xi2) / float64(s.elementsCount2)
}

// nodeIndices returns the four grid node indices of the element at p,
// direction 1 first.
func (s *Surface) nodeIndices(p Position) ([4]int, error) {
	if p.E1 < 0 || p.E1 >= s.elementsCount1 || p.E2 < 0 || p.E2 >= s.elementsCount2 {
		return [4]int{}, fmt.Errorf("surface: %w: element (%d,%d) outside %d x %d lattice",
			ErrPrecondition, p.E1, p.E2, s.elementsCount1, s.elementsCount2)
	}
	nodesCount1 := s.elementsCount1 + 1
	n1 := p.E2*nodesCount1 + p.E1
	return [4]int{n1, n1 + 1, n1 + nodesCount1, n1 + nodesCount1 + 1}, nil
}

// Evaluate returns the surface coordinates at p. The element indices must be
// in range; xi coordinates slightly outside [0, 1] extrapolate the patch.
func (s *Surface) Evaluate(p Position) (r3.Vec, error) {
	nid, err := s.nodeIndices(p)
	if err != nil {
		return r3.Vec{}, err
	}
	f1x1, f1d1, f1x2, f1d2 := curve.HermiteBasis(p.Xi1)
	f2x1, f2d1, f2x2, f2d2 := curve.HermiteBasis(p.Xi2)
	fx := [4]float64{f1x1 * f2x1, f1x2 * f2x1, f1x1 * f2x2, f1x2 * f2x2}
	fd1 := [4]float64{f1d1 * f2x1, f1d2 * f2x1, f1d1 * f2x2, f1d2 * f2x2}
	fd2 := [4]float64{f1x1 * f2d1, f1x2 * f2d1, f1x1 * f2d2, f1x2 * f2d2}
	var x r3.Vec
	for ln, gn := range nid {
		x = r3.Add(r3.Add(r3.Add(x, r3.Scale(fx[ln], s.nx[gn])), r3.Scale(fd1[ln], s.nd1[gn])), r3.Scale(fd2[ln], s.nd2[gn]))
	}
	return x, nil
}

// EvaluateDerivatives returns the surface coordinates at p with the
// derivatives w.r.t. element xi1 and xi2.
func (s *Surface) EvaluateDerivatives(p Position) (x, d1, d2 r3.Vec, err error) {
	nid, err := s.nodeIndices(p)
	if err != nil {
		return r3.Vec{}, r3.Vec{}, r3.Vec{}, err
	}
	f1x1, f1d1, f1x2, f1d2 := curve.HermiteBasis(p.Xi1)
	f2x1, f2d1, f2x2, f2d2 := curve.HermiteBasis(p.Xi2)
	df1x1, df1d1, df1x2, df1d2 := curve.HermiteBasisDerivatives(p.Xi1)
	df2x1, df2d1, df2x2, df2d2 := curve.HermiteBasisDerivatives(p.Xi2)
	fx := [4]float64{f1x1 * f2x1, f1x2 * f2x1, f1x1 * f2x2, f1x2 * f2x2}
	fd1 := [4]float64{f1d1 * f2x1, f1d2 * f2x1, f1d1 * f2x2, f1d2 * f2x2}
	fd2 := [4]float64{f1x1 * f2d1, f1x2 * f2d1, f1x1 * f2d2, f1x2 * f2d2}
	d1fx := [4]float64{df1x1 * f2x1, df1x2 * f2x1, df1x1 * f2x2, df1x2 * f2x2}
	d1fd1 := [4]float64{df1d1 * f2x1, df1d2 * f2x1, df1d1 * f2x2, df1d2 * f2x2}
	d1fd2 := [4]float64{df1x1 * f2d1, df1x2 * f2d1, df1x1 * f2d2, df1x2 * f2d2}
	d2fx := [4]float64{f1x1 * df2x1, f1x2 * df2x1, f1x1 * df2x2, f1x2 * df2x2}
	d2fd1 := [4]float64{f1d1 * df2x1, f1d2 * df2x1, f1d1 * df2x2, f1d2 * df2x2}
	d2fd2 := [4]float64{f1x1 * df2d1, f1x2 * df2d1, f1x1 * df2d2, f1x2 * df2d2}
	for ln, gn := range nid {
		x = r3.Add(r3.Add(r3.Add(x, r3.Scale(fx[ln], s.nx[gn])), r3.Scale(fd1[ln], s.nd1[gn])), r3.Scale(fd2[ln], s.nd2[gn]))
		d1 = r3.Add(r3.Add(r3.Add(d1, r3.Scale(d1fx[ln], s.nx[gn])), r3.Scale(d1fd1[ln], s.nd1[gn])), r3.Scale(d1fd2[ln], s.nd2[gn]))
		d2 = r3.Add(r3.Add(r3.Add(d2, r3.Scale(d2fx[ln], s.nx[gn])), r3.Scale(d2fd1[ln], s.nd1[gn])), r3.Scale(d2fd2[ln], s.nd2[gn]))
	}
	return x, d1, d2, nil
}
