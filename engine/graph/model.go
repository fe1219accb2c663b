// Package graph builds one candidate hit-pair graph per detector sector:
// edge-candidate generation over adjacent layer pairs with geometric and
// data-driven cuts, plus truth labeling and duplicate transition-edge
// accounting.
package graph

import "github.com/exatrkx/trackgraph/engine/domain"

// Graph is one sector's training example. EdgeIndex values are positional
// indices into X, never hit ids. A sector without edges still carries a valid
// node matrix and zero-length edge arrays.
type Graph struct {
	// X holds one row of scaled (r, phi, z) features per hit.
	X [][3]float32 `json:"x"`
	// EdgeIndex holds source and target node indices in COO layout.
	EdgeIndex [2][]int `json:"edge_index"`
	// EdgeAttr holds scaled dr, dphi, dz rows and an unscaled dR row,
	// one column per edge.
	EdgeAttr [4][]float64 `json:"edge_attr"`
	// Y labels each edge 1 (both endpoints share a non-noise particle)
	// or 0.
	Y []float32 `json:"y"`
	// S is the (eta_sector, phi_sector) label.
	S domain.SectorID `json:"s"`
	// NIncorrect counts particles with duplicate surviving transition
	// edges; the summary subtracts it from the naive true-edge count.
	NIncorrect int `json:"n_incorrect"`
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.X) }

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int { return len(g.Y) }

// TrueEdges returns the number of edges labeled 1, before the duplicate
// transition correction.
func (g *Graph) TrueEdges() int {
	n := 0
	for _, y := range g.Y {
		if y == 1 {
			n++
		}
	}
	return n
}

// FalseEdges returns the number of edges labeled 0.
func (g *Graph) FalseEdges() int {
	return g.NumEdges() - g.TrueEdges()
}
