package annulus

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Terms holds signed coefficients, each -1, 0 or 1, combining a node's
// stored derivatives (d1, d2, d3) into an effective derivative.
type Terms [3]int8

func (t Terms) isZero() bool {
	return t[0] == 0 && t[1] == 0 && t[2] == 0
}

// apply returns the signed combination of the first count source
// derivatives.
func (t Terms) apply(gds [3]r3.Vec, count int) r3.Vec {
	var out r3.Vec
	for i := 0; i < count; i++ {
		switch t[i] {
		case 1:
			out = r3.Add(out, gds[i])
		case -1:
			out = r3.Sub(out, gds[i])
		}
	}
	return out
}

// DerivativeMap remaps a boundary node's stored derivatives into the
// effective around (d1) and radial (d2) directions of the annulus. A nil
// slot keeps the stored derivative unchanged. D1Other, when set, is the
// d1 combination applying on the other side of the node; the effective
// d1 becomes the average of both sides. Both d1 slots set and all-zero
// marks the node column as collapsed, producing wedge cells.
type DerivativeMap struct {
	D1      *Terms
	D2      *Terms
	D3      *Terms
	D1Other *Terms
}

// Collapsed reports whether the map pins the around derivative to zero on
// both sides of the node.
func (m DerivativeMap) Collapsed() bool {
	return m.D1 != nil && m.D1Other != nil && m.D1.isZero() && m.D1Other.isZero()
}

// RingLayer is one layer of a boundary ring: coordinates with around (D1)
// and radial (D2) derivatives for each node. D3 derivatives through the
// wall, existing node identifiers and derivative maps are optional.
type RingLayer struct {
	X      []r3.Vec
	D1     []r3.Vec
	D2     []r3.Vec
	D3     []r3.Vec
	NodeID []int
	Maps   []DerivativeMap
}

// mappedD1D2 returns the effective around and radial derivatives at node
// n1 after applying the layer's derivative map.
func (l *RingLayer) mappedD1D2(n1 int) (d1, d2 r3.Vec) {
	gds := [3]r3.Vec{l.D1[n1], l.D2[n1]}
	count := 2
	if l.D3 != nil {
		gds[2] = l.D3[n1]
		count = 3
	}
	var m DerivativeMap
	if l.Maps != nil {
		m = l.Maps[n1]
	}
	if m.D1 == nil {
		d1 = gds[0]
	} else {
		d1 = m.D1.apply(gds, count)
		if m.D1Other != nil {
			d1 = r3.Add(r3.Scale(0.5, d1), r3.Scale(0.5, m.D1Other.apply(gds, count)))
		}
	}
	if m.D2 == nil {
		d2 = gds[1]
	} else {
		d2 = m.D2.apply(gds, count)
	}
	return d1, d2
}

// Ring is a closed loop of boundary nodes in 1 or 2 layers, inner first.
// A single layer describes a zero thickness shell.
type Ring struct {
	Layers []RingLayer
}

// validate checks internal consistency and returns the node count around.
func (r *Ring) validate(name string) (nodesCountAround int, err error) {
	layersCount := len(r.Layers)
	if layersCount < 1 || layersCount > 2 {
		return 0, fmt.Errorf("annulus: %w: %s ring needs 1 or 2 layers, got %d",
			ErrShapeMismatch, name, layersCount)
	}
	nodesCountAround = len(r.Layers[0].X)
	if nodesCountAround < 2 {
		return 0, fmt.Errorf("annulus: %w: %s ring needs at least 2 nodes around, got %d",
			ErrShapeMismatch, name, nodesCountAround)
	}
	hasD3 := r.Layers[0].D3 != nil
	for n3 := range r.Layers {
		l := &r.Layers[n3]
		if len(l.X) != nodesCountAround || len(l.D1) != nodesCountAround ||
			len(l.D2) != nodesCountAround ||
			(l.D3 != nil && len(l.D3) != nodesCountAround) ||
			(l.NodeID != nil && len(l.NodeID) != nodesCountAround) ||
			(l.Maps != nil && len(l.Maps) != nodesCountAround) {
			return 0, fmt.Errorf("annulus: %w: %s ring layer %d array lengths do not match %d nodes around",
				ErrShapeMismatch, name, n3, nodesCountAround)
		}
		if (l.D3 != nil) != hasD3 {
			return 0, fmt.Errorf("annulus: %w: %s ring layers disagree on d3 presence",
				ErrShapeMismatch, name)
		}
	}
	return nodesCountAround, nil
}

// hasD3 reports whether the ring supplies through-wall derivatives.
func (r *Ring) hasD3() bool {
	return r.Layers[0].D3 != nil
}

// collapsedAt reports whether any layer marks node column n1 as collapsed.
func (r *Ring) collapsedAt(n1 int) bool {
	for n3 := range r.Layers {
		if r.Layers[n3].Maps != nil && r.Layers[n3].Maps[n1].Collapsed() {
			return true
		}
	}
	return false
}
