package annulus

import "gonum.org/v1/gonum/spatial/r3"

// Node is one emitted mesh node. D3 is valid only when HasD3 is set; rows
// linear through the wall omit it. ID is zero until assigned by a sink or
// supplied by the caller on a boundary ring.
type Node struct {
	ID    int
	X     r3.Vec
	D1    r3.Vec
	D2    r3.Vec
	D3    r3.Vec
	HasD3 bool
}

// Cell is one emitted mesh cell between radial rings Ring and Ring+1 at
// circumferential index Index. NodeIDs lists the corner node identifiers
// varying fastest around, then radially, then through the wall: 8 for a
// hexahedron, 6 for a wedge collapsed through the wall, 4 for a shell
// cell of a single layer ring pair.
type Cell struct {
	Ring    int
	Index   int
	Wedge   bool
	NodeIDs []int
}

// Sink receives generated nodes and cells. AddNode assigns and returns
// the identifier for a new node; boundary nodes carrying caller
// identifiers are never passed to it. Cells arrive after all of their
// corner nodes.
type Sink interface {
	AddNode(Node) int
	AddCell(Cell) error
}

// MemorySink collects nodes and cells in memory, assigning sequential
// node identifiers from 1. It is the reference Sink used in tests.
type MemorySink struct {
	Nodes  []Node
	Cells  []Cell
	nextID int
}

func (s *MemorySink) AddNode(n Node) int {
	if s.nextID == 0 {
		s.nextID = 1
	}
	n.ID = s.nextID
	s.nextID++
	s.Nodes = append(s.Nodes, n)
	return n.ID
}

func (s *MemorySink) AddCell(c Cell) error {
	s.Cells = append(s.Cells, c)
	return nil
}

// Mesh is the generated annulus: node slots indexed by
// [layer][ring][indexAround] with layer 0 innermost and ring 0 the start,
// and the cells connecting them. RowLinear flags rings whose elements are
// linear through the wall. Cells is populated by Emit.
type Mesh struct {
	Nodes     [][][]Node
	Cells     []Cell
	RowLinear []bool

	pinched []bool
}

// Emit sends every node without a caller-supplied identifier to the sink,
// assigns the returned identifiers, then sends one cell per ring pair and
// circumferential index. Collapsed node columns share a single identifier
// between layers and degenerate their adjacent cells to wedges. Emit is
// one-shot per mesh.
func (m *Mesh) Emit(sink Sink) error {
	layersCount := len(m.Nodes)
	ringsCount := len(m.Nodes[0])
	nodesCountAround := len(m.Nodes[0][0])
	for n2 := 0; n2 < ringsCount; n2++ {
		for n3 := 0; n3 < layersCount; n3++ {
			for n1 := 0; n1 < nodesCountAround; n1++ {
				node := &m.Nodes[n3][n2][n1]
				if node.ID != 0 {
					continue
				}
				if n3 > 0 && m.pinched[n1] {
					node.ID = m.Nodes[0][n2][n1].ID
					continue
				}
				node.ID = sink.AddNode(*node)
			}
		}
	}
	for e2 := 0; e2 < ringsCount-1; e2++ {
		for e1 := 0; e1 < nodesCountAround; e1++ {
			en := (e1 + 1) % nodesCountAround
			var ids []int
			if layersCount == 2 {
				ids = []int{
					m.Nodes[0][e2][e1].ID, m.Nodes[0][e2][en].ID,
					m.Nodes[0][e2+1][e1].ID, m.Nodes[0][e2+1][en].ID,
					m.Nodes[1][e2][e1].ID, m.Nodes[1][e2][en].ID,
					m.Nodes[1][e2+1][e1].ID, m.Nodes[1][e2+1][en].ID,
				}
			} else {
				ids = []int{
					m.Nodes[0][e2][e1].ID, m.Nodes[0][e2][en].ID,
					m.Nodes[0][e2+1][e1].ID, m.Nodes[0][e2+1][en].ID,
				}
			}
			wedge := layersCount == 2 && (m.pinched[e1] || m.pinched[en])
			if wedge {
				ids = uniqueIDs(ids)
			}
			cell := Cell{Ring: e2, Index: e1, Wedge: wedge, NodeIDs: ids}
			if err := sink.AddCell(cell); err != nil {
				return err
			}
			m.Cells = append(m.Cells, cell)
		}
	}
	return nil
}

// uniqueIDs removes repeated identifiers keeping first occurrence order.
func uniqueIDs(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		seen := false
		for _, v := range out {
			if v == id {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, id)
		}
	}
	return out
}
