package annulus

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ABI-Software/scaffoldmaker-sub005/curve"
	"github.com/ABI-Software/scaffoldmaker-sub005/surface"
)

// BridgeOptions controls BuildAnnulus.
type BridgeOptions struct {
	// RadialSubdivisions is the number of cell rows between the rings.
	RadialSubdivisions int
	// MaxStartThickness and MaxEndThickness cap the wall thickness taken
	// from the ring layer spacing; zero means no cap.
	MaxStartThickness float64
	MaxEndThickness   float64
	// ForceLinearStart, ForceLinearMid and ForceLinearEnd make the
	// respective cell rows linear through the wall even where d3 is
	// supplied. Mid takes effect only when at least one end is linear.
	ForceLinearStart bool
	ForceLinearMid   bool
	ForceLinearEnd   bool
	// Surface constrains sampled radial points to lie on a track surface.
	// StartProportions and EndProportions then give the outer layer
	// surface proportions of each ring node and must be present.
	Surface          *surface.Surface
	StartProportions [][2]float64
	EndProportions   [][2]float64
}

// BuildAnnulus bridges the start and end rings with RadialSubdivisions
// rows of cells, deriving interior rings by smooth radial sampling of the
// outer layer and offsetting the inner layer along the surface normal by
// the interpolated wall thickness, with curvature-corrected derivatives.
// Emit the returned mesh into a Sink to assign node identifiers and
// produce cells.
func BuildAnnulus(start, end Ring, opts BridgeOptions) (*Mesh, error) {
	radialCount := opts.RadialSubdivisions
	if radialCount < 1 {
		return nil, fmt.Errorf("annulus: BuildAnnulus: %w: RadialSubdivisions must be >= 1, got %d",
			ErrPrecondition, radialCount)
	}
	nodesCountAround, err := start.validate("start")
	if err != nil {
		return nil, err
	}
	endCount, err := end.validate("end")
	if err != nil {
		return nil, err
	}
	if endCount != nodesCountAround {
		return nil, fmt.Errorf("annulus: BuildAnnulus: %w: start has %d nodes around, end has %d",
			ErrShapeMismatch, nodesCountAround, endCount)
	}
	layersCount := len(start.Layers)
	if len(end.Layers) != layersCount {
		return nil, fmt.Errorf("annulus: BuildAnnulus: %w: start has %d layers, end has %d",
			ErrShapeMismatch, layersCount, len(end.Layers))
	}
	if opts.Surface != nil &&
		(len(opts.StartProportions) != nodesCountAround || len(opts.EndProportions) != nodesCountAround) {
		return nil, fmt.Errorf("annulus: BuildAnnulus: %w: surface needs start and end proportions for all %d nodes around",
			ErrPrecondition, nodesCountAround)
	}
	outer := layersCount - 1

	startLinear := !start.hasD3() || opts.ForceLinearStart
	endLinear := !end.hasD3() || opts.ForceLinearEnd
	midLinear := (startLinear && endLinear) || ((startLinear || endLinear) && opts.ForceLinearMid)
	rowLinear := make([]bool, radialCount+1)
	rowLinear[0] = startLinear
	rowLinear[radialCount] = endLinear
	for n2 := 1; n2 < radialCount; n2++ {
		rowLinear[n2] = midLinear
	}

	px := vecGrid(layersCount, radialCount+1, nodesCountAround)
	pd1 := vecGrid(layersCount, radialCount+1, nodesCountAround)
	pd2 := vecGrid(layersCount, radialCount+1, nodesCountAround)
	pd3 := vecGrid(layersCount, radialCount+1, nodesCountAround)
	for n3 := 0; n3 < layersCount; n3++ {
		copy(px[n3][0], start.Layers[n3].X)
		copy(pd1[n3][0], start.Layers[n3].D1)
		copy(pd2[n3][0], start.Layers[n3].D2)
		if start.Layers[n3].D3 != nil {
			copy(pd3[n3][0], start.Layers[n3].D3)
		}
		copy(px[n3][radialCount], end.Layers[n3].X)
		copy(pd1[n3][radialCount], end.Layers[n3].D1)
		copy(pd2[n3][radialCount], end.Layers[n3].D2)
		if end.Layers[n3].D3 != nil {
			copy(pd3[n3][radialCount], end.Layers[n3].D3)
		}
	}

	// wall thickness per ring node; interior rings follow the radial
	// sampling
	thickness := make([][]float64, radialCount+1)
	for n2 := range thickness {
		thickness[n2] = make([]float64, nodesCountAround)
	}
	for n1 := 0; n1 < nodesCountAround; n1++ {
		th := r3.Norm(r3.Sub(start.Layers[outer].X[n1], start.Layers[0].X[n1]))
		if opts.MaxStartThickness > 0.0 {
			th = math.Min(th, opts.MaxStartThickness)
		}
		thickness[0][n1] = th
		th = r3.Norm(r3.Sub(end.Layers[outer].X[n1], end.Layers[0].X[n1]))
		if opts.MaxEndThickness > 0.0 {
			th = math.Min(th, opts.MaxEndThickness)
		}
		thickness[radialCount][n1] = th
	}

	if radialCount > 1 {
		if err := sampleOuterRadial(start, end, opts, px, pd1, pd2, thickness); err != nil {
			return nil, err
		}
		if err := deriveInteriorRings(px, pd1, pd2, pd3, thickness, midLinear); err != nil {
			return nil, err
		}
		if err := smoothRadialDerivatives(start, end, px, pd2); err != nil {
			return nil, err
		}
	}

	nodes := make([][][]Node, layersCount)
	for n3 := 0; n3 < layersCount; n3++ {
		nodes[n3] = make([][]Node, radialCount+1)
		for n2 := 0; n2 <= radialCount; n2++ {
			var ringHasD3 bool
			switch n2 {
			case 0:
				ringHasD3 = start.hasD3()
			case radialCount:
				ringHasD3 = end.hasD3()
			default:
				ringHasD3 = !midLinear && layersCount == 2
			}
			nodes[n3][n2] = make([]Node, nodesCountAround)
			for n1 := 0; n1 < nodesCountAround; n1++ {
				node := Node{X: px[n3][n2][n1], D1: pd1[n3][n2][n1], D2: pd2[n3][n2][n1]}
				if ringHasD3 {
					node.D3 = pd3[n3][n2][n1]
					node.HasD3 = true
				}
				nodes[n3][n2][n1] = node
			}
		}
		if start.Layers[n3].NodeID != nil {
			for n1 := 0; n1 < nodesCountAround; n1++ {
				nodes[n3][0][n1].ID = start.Layers[n3].NodeID[n1]
			}
		}
		if end.Layers[n3].NodeID != nil {
			for n1 := 0; n1 < nodesCountAround; n1++ {
				nodes[n3][radialCount][n1].ID = end.Layers[n3].NodeID[n1]
			}
		}
	}

	pinched := make([]bool, nodesCountAround)
	if layersCount == 2 {
		for n1 := range pinched {
			pinched[n1] = start.collapsedAt(n1) || end.collapsedAt(n1)
		}
	}
	return &Mesh{Nodes: nodes, RowLinear: rowLinear, pinched: pinched}, nil
}

// sampleOuterRadial fills the interior rings of the outer layer by
// sampling radial Hermite curves between the mapped end derivatives, with
// derivative scaling for even curvature, and interpolates wall thickness
// and around derivatives to the sampled locations.
func sampleOuterRadial(start, end Ring, opts BridgeOptions,
	px, pd1, pd2 [][][]r3.Vec, thickness [][]float64) error {

	radialCount := opts.RadialSubdivisions
	outer := len(start.Layers) - 1
	aLayer := &start.Layers[outer]
	bLayer := &end.Layers[outer]
	nodesCountAround := len(aLayer.X)
	for n1 := 0; n1 < nodesCountAround; n1++ {
		ax := aLayer.X[n1]
		ad1, ad2 := aLayer.mappedD1D2(n1)
		bx := bLayer.X[n1]
		bd1, bd2 := bLayer.mappedD1D2(n1)

		// scaling end derivatives to arc length gives even curvature
		// along the radial curve
		aMag := r3.Norm(ad2)
		bMag := r3.Norm(bd2)
		blendMag := 0.5 * (aMag + bMag)
		var ad2Scaled, bd2Scaled r3.Vec
		if aMag > 0.0 {
			ad2Scaled = curve.SetMagnitude(ad2, blendMag)
		}
		if bMag > 0.0 {
			bd2Scaled = curve.SetMagnitude(bd2, blendMag)
		}
		if blendMag > 0.0 {
			scaling := curve.DerivativeScaling(ax, ad2Scaled, bx, bd2Scaled)
			ad2Scaled = r3.Scale(scaling, ad2Scaled)
			bd2Scaled = r3.Scale(scaling, bd2Scaled)
		}

		var mx, md1, md2 []r3.Vec
		var thi []float64
		if opts.Surface != nil {
			derivativeStart := r3.Scale(1.0/float64(radialCount), ad2Scaled)
			derivativeEnd := r3.Scale(1.0/float64(radialCount), bd2Scaled)
			cp, err := opts.Surface.HermiteCurvePoints(
				opts.StartProportions[n1][0], opts.StartProportions[n1][1],
				opts.EndProportions[n1][0], opts.EndProportions[n1][1],
				radialCount, &derivativeStart, &derivativeEnd)
			if err != nil {
				return err
			}
			cp, err = opts.Surface.ResampleCurvePointsSmooth(cp, aMag, bMag)
			if err != nil {
				return err
			}
			mx = cp.X
			md2 = cp.D1 // radial, along the sampled curve
			md1 = cp.D2 // around, across the sampled curve
			// thickness varies with radial arc length fraction
			thi = make([]float64, radialCount+1)
			total := 0.0
			arcs := make([]float64, radialCount)
			for n2 := 0; n2 < radialCount; n2++ {
				arcs[n2] = curve.ArcLength(mx[n2], md2[n2], mx[n2+1], md2[n2+1])
				total += arcs[n2]
			}
			distance := 0.0
			for n2 := 0; n2 <= radialCount; n2++ {
				xi := 0.0
				if total > 0.0 {
					xi = distance / total
				}
				thi[n2] = thickness[0][n1]*(1.0-xi) + thickness[radialCount][n1]*xi
				if n2 < radialCount {
					distance += arcs[n2]
				}
			}
		} else {
			smp, err := curve.SampleCurveSmooth([]r3.Vec{ax, bx}, []r3.Vec{ad2Scaled, bd2Scaled},
				radialCount, aMag, bMag)
			if err != nil {
				return err
			}
			mx = smp.X
			md2 = smp.D1
			md1 = curve.LerpSample([]r3.Vec{ad1, bd1}, smp.Element, smp.Xi)
			thi = curve.LerpSampleScalar([]float64{thickness[0][n1], thickness[radialCount][n1]},
				smp.Element, smp.Xi)
		}
		for n2 := 1; n2 < radialCount; n2++ {
			px[outer][n2][n1] = mx[n2]
			pd1[outer][n2][n1] = md1[n2]
			pd2[outer][n2][n1] = md2[n2]
			thickness[n2][n1] = thi[n2]
		}
	}
	return nil
}

// deriveInteriorRings smooths the around derivatives of each interior
// outer ring, then derives inner layer positions from the surface normal
// and wall thickness, with derivatives corrected by the local curvature.
func deriveInteriorRings(px, pd1, pd2, pd3 [][][]r3.Vec, thickness [][]float64, midLinear bool) error {
	layersCount := len(px)
	outer := layersCount - 1
	radialCount := len(px[0]) - 1
	nodesCountAround := len(px[0][0])
	for n2 := 1; n2 < radialCount; n2++ {
		sd1, err := curve.SmoothLoop(px[outer][n2], pd1[outer][n2], false, curve.HarmonicMean)
		if err != nil {
			return err
		}
		pd1[outer][n2] = sd1
		if layersCount == 1 {
			continue
		}
		for n1 := 0; n1 < nodesCountAround; n1++ {
			normalDir := r3.Cross(pd1[outer][n2][n1], pd2[outer][n2][n1])
			if r3.Norm(normalDir) == 0.0 {
				return fmt.Errorf("annulus: BuildAnnulus: %w: zero normal at ring %d index %d",
					surface.ErrDegenerateSurface, n2, n1)
			}
			normal := curve.SetMagnitude(normalDir, 1.0)
			th := thickness[n2][n1]
			px[0][n2][n1] = r3.Sub(px[outer][n2][n1], r3.Scale(th, normal))
			// inner d1 from curvature around
			n1m := (n1 - 1 + nodesCountAround) % nodesCountAround
			n1p := (n1 + 1) % nodesCountAround
			curvatureAround := 0.5 * (curve.Curvature(px[outer][n2][n1m], pd1[outer][n2][n1m],
				px[outer][n2][n1], pd1[outer][n2][n1], normal, 1.0) +
				curve.Curvature(px[outer][n2][n1], pd1[outer][n2][n1],
					px[outer][n2][n1p], pd1[outer][n2][n1p], normal, 0.0))
			pd1[0][n2][n1] = r3.Scale(1.0+curvatureAround*th, pd1[outer][n2][n1])
			// inner d2 from curvature radially; keep direction if the
			// factor reverses it
			curvatureRadial := 0.5 * (curve.Curvature(px[outer][n2-1][n1], pd2[outer][n2-1][n1],
				px[outer][n2][n1], pd2[outer][n2][n1], normal, 1.0) +
				curve.Curvature(px[outer][n2][n1], pd2[outer][n2][n1],
					px[outer][n2+1][n1], pd2[outer][n2+1][n1], normal, 0.0))
			pd2[0][n2][n1] = r3.Scale(math.Abs(1.0+curvatureRadial*th), pd2[outer][n2][n1])
			if !midLinear {
				d3 := r3.Scale(th, normal)
				pd3[0][n2][n1] = d3
				pd3[outer][n2][n1] = d3
			}
		}
		sd1, err = curve.SmoothLoop(px[0][n2], pd1[0][n2], false, curve.HarmonicMean)
		if err != nil {
			return err
		}
		pd1[0][n2] = sd1
	}
	return nil
}

// smoothRadialDerivatives smooths interior radial derivatives along each
// node column, holding the mapped end derivatives fixed.
func smoothRadialDerivatives(start, end Ring, px, pd2 [][][]r3.Vec) error {
	layersCount := len(px)
	radialCount := len(px[0]) - 1
	nodesCountAround := len(px[0][0])
	for n3 := 0; n3 < layersCount; n3++ {
		for n1 := 0; n1 < nodesCountAround; n1++ {
			mx := make([]r3.Vec, radialCount+1)
			md2 := make([]r3.Vec, radialCount+1)
			for n2 := 0; n2 <= radialCount; n2++ {
				mx[n2] = px[n3][n2][n1]
				md2[n2] = pd2[n3][n2][n1]
			}
			_, md2[0] = start.Layers[n3].mappedD1D2(n1)
			_, md2[radialCount] = end.Layers[n3].mappedD1D2(n1)
			sd2, err := curve.SmoothLine(mx, md2, curve.SmoothOptions{
				FixAllDirections:   true,
				FixStartDerivative: true,
				FixEndDerivative:   true,
				Mode:               curve.HarmonicMean,
			})
			if err != nil {
				return err
			}
			for n2 := 1; n2 < radialCount; n2++ {
				pd2[n3][n2][n1] = sd2[n2]
			}
		}
	}
	return nil
}

func vecGrid(layers, rings, around int) [][][]r3.Vec {
	g := make([][][]r3.Vec, layers)
	for n3 := range g {
		g[n3] = make([][]r3.Vec, rings)
		for n2 := range g[n3] {
			g[n3][n2] = make([]r3.Vec, around)
		}
	}
	return g
}
