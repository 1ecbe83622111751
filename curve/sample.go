package curve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sample holds resampled curve points with provenance into the source
// curves. Element and Xi locate each output point in the input elements for
// the partner Lerp functions; ScaleFactor converts derivatives from old to
// new xi spacing, dxi(old)/dxi(new).
type Sample struct {
	X           []r3.Vec
	D1          []r3.Vec
	Element     []int
	Xi          []float64
	ScaleFactor []float64
}

// SampleOptions controls SampleCurve spacing. The zero value gives equal
// arc length spacing.
type SampleOptions struct {
	// AddLengthStart and AddLengthEnd are extra lengths to add to the
	// start and end elements.
	AddLengthStart float64
	AddLengthEnd   float64
	// LengthFractionStart and LengthFractionEnd are fractions of the mid
	// element length used for the start and end elements; zero means 1.
	// Combined with AddLength these blend into known end derivatives.
	LengthFractionStart float64
	LengthFractionEnd   float64
	// StartEndRatio is the start/end element length ratio, with lengths
	// varying smoothly in between; zero means 1. Requires at least 2
	// output elements.
	StartEndRatio float64
	// ArcLengthDerivatives rescales each input section to arc length
	// before sampling; otherwise derivatives are used as supplied.
	ArcLengthDerivatives bool
}

// SampleCurve returns n+1 systematically spaced points and derivatives over
// the cubic Hermite curves with nodes nx and derivatives nd1, subdivided
// into n output elements.
func SampleCurve(nx, nd1 []r3.Vec, n int, opts SampleOptions) (*Sample, error) {
	elementsCountIn := len(nx) - 1
	if elementsCountIn < 1 || len(nd1) != len(nx) || n < 1 {
		return nil, fmt.Errorf("curve: SampleCurve: %w: need >= 2 nodes, matching derivatives and n >= 1",
			ErrPrecondition)
	}
	fractionStart := opts.LengthFractionStart
	if fractionStart == 0.0 {
		fractionStart = 1.0
	}
	fractionEnd := opts.LengthFractionEnd
	if fractionEnd == 0.0 {
		fractionEnd = 1.0
	}
	ratio := opts.StartEndRatio
	if ratio == 0.0 {
		ratio = 1.0
	}

	lengths := make([]float64, 1, elementsCountIn+1)
	nd1a := make([]r3.Vec, 0, elementsCountIn)
	nd1b := make([]r3.Vec, 0, elementsCountIn)
	length := 0.0
	for e := 0; e < elementsCountIn; e++ {
		var arcLength float64
		if opts.ArcLengthDerivatives {
			arcLength = ComputeArcLength(nx[e], nd1[e], nx[e+1], nd1[e+1], true)
			nd1a = append(nd1a, SetMagnitude(nd1[e], arcLength))
			nd1b = append(nd1b, SetMagnitude(nd1[e+1], arcLength))
		} else {
			arcLength = ArcLength(nx[e], nd1[e], nx[e+1], nd1[e+1])
		}
		length += arcLength
		lengths = append(lengths, length)
	}
	proportionEnd := 2.0 / (ratio + 1.0)
	proportionStart := ratio * proportionEnd
	var elementLengthMid float64
	if n == 1 {
		elementLengthMid = length
	} else {
		elementLengthMid = (length - opts.AddLengthStart - opts.AddLengthEnd) /
			(float64(n) - 2.0 + proportionStart*fractionStart + proportionEnd*fractionEnd)
	}
	elementLengthProportionStart := proportionStart * fractionStart * elementLengthMid
	elementLengthProportionEnd := proportionEnd * fractionEnd * elementLengthMid
	// smoothly varying element lengths, before start/end adjustment
	elementLengths := make([]float64, n)
	if n == 1 || ratio == 1.0 {
		for e := range elementLengths {
			elementLengths[e] = elementLengthMid
		}
	} else {
		for e := range elementLengths {
			xi := float64(e) / float64(n-1)
			elementLengths[e] = ((1.0-xi)*proportionStart + xi*proportionEnd) * elementLengthMid
		}
	}
	nodeDerivativeMagnitudes := make([]float64, n+1)
	for i := 1; i < n; i++ {
		nodeDerivativeMagnitudes[i] = 0.5 * (elementLengths[i-1] + elementLengths[i])
	}
	elementLengths[0] = opts.AddLengthStart + elementLengthProportionStart
	elementLengths[n-1] = opts.AddLengthEnd + elementLengthProportionEnd
	if n == 1 {
		nodeDerivativeMagnitudes[0] = elementLengths[0]
		nodeDerivativeMagnitudes[1] = elementLengths[0]
	} else {
		nodeDerivativeMagnitudes[0] = elementLengths[0]*2.0 - nodeDerivativeMagnitudes[1]
		nodeDerivativeMagnitudes[n] = elementLengths[n-1]*2.0 - nodeDerivativeMagnitudes[n-1]
	}

	out := &Sample{
		X:           make([]r3.Vec, 0, n+1),
		D1:          make([]r3.Vec, 0, n+1),
		Element:     make([]int, 0, n+1),
		Xi:          make([]float64, 0, n+1),
		ScaleFactor: make([]float64, 0, n+1),
	}
	distance := 0.0
	e := 0
	for nOut := 0; nOut < n; nOut++ {
		for e < elementsCountIn {
			if distance < lengths[e+1] {
				partDistance := distance - lengths[e]
				var x, d1 r3.Vec
				var xi float64
				if opts.ArcLengthDerivatives {
					xi = partDistance / (lengths[e+1] - lengths[e])
					x = Interpolate(nx[e], nd1a[e], nx[e+1], nd1b[e], xi)
					d1 = InterpolateDerivative(nx[e], nd1a[e], nx[e+1], nd1b[e], xi)
				} else {
					x, d1, _, xi = PointAtArcDistance(nx[e:e+2], nd1[e:e+2], partDistance)
				}
				sf := nodeDerivativeMagnitudes[nOut] / r3.Norm(d1)
				out.X = append(out.X, x)
				out.D1 = append(out.D1, r3.Scale(sf, d1))
				out.Element = append(out.Element, e)
				out.Xi = append(out.Xi, xi)
				out.ScaleFactor = append(out.ScaleFactor, sf)
				break
			}
			e++
		}
		distance += elementLengths[nOut]
	}
	sf := nodeDerivativeMagnitudes[n] / r3.Norm(nd1[elementsCountIn])
	out.X = append(out.X, nx[elementsCountIn])
	out.D1 = append(out.D1, r3.Scale(sf, nd1[elementsCountIn]))
	out.Element = append(out.Element, elementsCountIn-1)
	out.Xi = append(out.Xi, 1.0)
	out.ScaleFactor = append(out.ScaleFactor, sf)
	return out, nil
}

// SampleCurveSmooth returns n+1 smoothly spaced points and derivatives over
// the cubic Hermite curves with nodes nx and derivatives nd1, subdivided
// into n output elements with smooth variation of element size fitting the
// supplied end derivative magnitudes. Pass NaN for magStart or magEnd to
// derive it from the other end, or for even spacing when both are NaN.
// Zero is a valid magnitude.
func SampleCurveSmooth(nx, nd1 []r3.Vec, n int, magStart, magEnd float64) (*Sample, error) {
	elementsCountIn := len(nx) - 1
	if elementsCountIn < 1 || len(nd1) != len(nx) || n < 1 {
		return nil, fmt.Errorf("curve: SampleCurveSmooth: %w: need >= 2 nodes, matching derivatives and n >= 1",
			ErrPrecondition)
	}
	lengthToNodeIn := make([]float64, 1, elementsCountIn+1)
	length := 0.0
	for e := 0; e < elementsCountIn; e++ {
		length += ArcLength(nx[e], nd1[e], nx[e+1], nd1[e+1])
		lengthToNodeIn = append(lengthToNodeIn, length)
	}
	hasStart := !math.IsNaN(magStart)
	hasEnd := !math.IsNaN(magEnd)
	switch {
	case hasStart && hasEnd:
	case hasEnd:
		magStart = (2.0*length - float64(n)*magEnd) / float64(n)
	case hasStart:
		magEnd = (2.0*length - float64(n)*magStart) / float64(n)
	default:
		magStart = length / float64(n)
		magEnd = magStart
	}
	// Hermite-sample distance along the curves to place element boundaries
	x2 := length
	d1 := magStart * float64(n)
	d2 := magEnd * float64(n)
	nodeDistances := make([]float64, n+1)
	nodeDerivativeMagnitudes := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		xi := float64(i) / float64(n)
		_, f2, f3, f4 := HermiteBasis(xi)
		nodeDistances[i] = f2*d1 + f3*x2 + f4*d2 // distance starts at 0
		_, df2, df3, df4 := HermiteBasisDerivatives(xi)
		nodeDerivativeMagnitudes[i] = (df2*d1 + df3*x2 + df4*d2) / float64(n)
	}
	out := &Sample{
		X:           make([]r3.Vec, 0, n+1),
		D1:          make([]r3.Vec, 0, n+1),
		Element:     make([]int, 0, n+1),
		Xi:          make([]float64, 0, n+1),
		ScaleFactor: make([]float64, 0, n+1),
	}
	e := 0
	lastElementIn := elementsCountIn - 1
	for i := 0; i <= n; i++ {
		distance := nodeDistances[i]
		for e < lastElementIn && distance >= lengthToNodeIn[e+1] {
			e++
		}
		partDistance := distance - lengthToNodeIn[e]
		x, d, _, xi := PointAtArcDistance(nx[e:e+2], nd1[e:e+2], partDistance)
		sf := nodeDerivativeMagnitudes[i] / r3.Norm(d)
		out.X = append(out.X, x)
		out.D1 = append(out.D1, r3.Scale(sf, d))
		out.Element = append(out.Element, e)
		out.Xi = append(out.Xi, xi)
		out.ScaleFactor = append(out.ScaleFactor, sf)
	}
	return out, nil
}

// LerpSample linearly interpolates additional node vectors at the element
// and xi locations of a sample. len(v) must equal the input node count of
// the sampled curves.
func LerpSample(v []r3.Vec, element []int, xi []float64) []r3.Vec {
	out := make([]r3.Vec, len(element))
	for i := range element {
		wp := xi[i]
		wm := 1.0 - wp
		out[i] = r3.Add(r3.Scale(wm, v[element[i]]), r3.Scale(wp, v[element[i]+1]))
	}
	return out
}

// LerpSampleScalar linearly interpolates additional node scalars at the
// element and xi locations of a sample.
func LerpSampleScalar(v []float64, element []int, xi []float64) []float64 {
	out := make([]float64, len(element))
	for i := range element {
		wp := xi[i]
		out[i] = (1.0-wp)*v[element[i]] + wp*v[element[i]+1]
	}
	return out
}
