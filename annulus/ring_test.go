package annulus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func singleNodeLayer(d1, d2 r3.Vec, d3 *r3.Vec, m *DerivativeMap) RingLayer {
	l := RingLayer{
		X:  []r3.Vec{{}},
		D1: []r3.Vec{d1},
		D2: []r3.Vec{d2},
	}
	if d3 != nil {
		l.D3 = []r3.Vec{*d3}
	}
	if m != nil {
		l.Maps = []DerivativeMap{*m}
	}
	return l
}

func TestMappedDerivativesDefault(t *testing.T) {
	d1in := r3.Vec{X: 1}
	d2in := r3.Vec{Y: 2}
	l := singleNodeLayer(d1in, d2in, nil, nil)
	d1, d2 := l.mappedD1D2(0)
	assert.Equal(t, d1in, d1)
	assert.Equal(t, d2in, d2)
}

func TestMappedDerivativesCombination(t *testing.T) {
	d1in := r3.Vec{X: 1}
	d2in := r3.Vec{Y: 2}
	d3in := r3.Vec{Z: 3}
	// d1 = d2 + d3, d2 = -d1
	m := DerivativeMap{D1: &Terms{0, 1, 1}, D2: &Terms{-1, 0, 0}}
	l := singleNodeLayer(d1in, d2in, &d3in, &m)
	d1, d2 := l.mappedD1D2(0)
	assert.Equal(t, r3.Vec{Y: 2, Z: 3}, d1)
	assert.Equal(t, r3.Vec{X: -1}, d2)
}

func TestMappedDerivativesD3IgnoredWithoutLayerD3(t *testing.T) {
	// the d3 coefficient has no effect when the layer has no d3
	m := DerivativeMap{D1: &Terms{1, 0, 1}}
	l := singleNodeLayer(r3.Vec{X: 1}, r3.Vec{Y: 2}, nil, &m)
	d1, _ := l.mappedD1D2(0)
	assert.Equal(t, r3.Vec{X: 1}, d1)
}

func TestMappedDerivativesOtherSideAverage(t *testing.T) {
	d1in := r3.Vec{X: 1}
	d2in := r3.Vec{Y: 2}
	m := DerivativeMap{D1: &Terms{1, 0, 0}, D1Other: &Terms{0, 1, 0}}
	l := singleNodeLayer(d1in, d2in, nil, &m)
	d1, _ := l.mappedD1D2(0)
	assert.Equal(t, r3.Vec{X: 0.5, Y: 1}, d1)
}

func TestCollapsed(t *testing.T) {
	zero := Terms{}
	assert.True(t, DerivativeMap{D1: &zero, D1Other: &zero}.Collapsed())
	assert.False(t, DerivativeMap{D1: &zero}.Collapsed())
	assert.False(t, DerivativeMap{}.Collapsed())
	one := Terms{1, 0, 0}
	assert.False(t, DerivativeMap{D1: &one, D1Other: &zero}.Collapsed())
}

func TestRingValidate(t *testing.T) {
	good := Ring{Layers: []RingLayer{{
		X:  make([]r3.Vec, 4),
		D1: make([]r3.Vec, 4),
		D2: make([]r3.Vec, 4),
	}}}
	n, err := good.validate("start")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	short := Ring{Layers: []RingLayer{{
		X:  make([]r3.Vec, 4),
		D1: make([]r3.Vec, 3),
		D2: make([]r3.Vec, 4),
	}}}
	_, err = short.validate("start")
	assert.ErrorIs(t, err, ErrShapeMismatch)

	disagree := Ring{Layers: []RingLayer{
		{X: make([]r3.Vec, 4), D1: make([]r3.Vec, 4), D2: make([]r3.Vec, 4), D3: make([]r3.Vec, 4)},
		{X: make([]r3.Vec, 4), D1: make([]r3.Vec, 4), D2: make([]r3.Vec, 4)},
	}}
	_, err = disagree.validate("end")
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = (&Ring{}).validate("start")
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
