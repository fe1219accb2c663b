// Package summary rolls edge labels, particle expectations, and sector
// bookkeeping up into per-sector, per-event, and per-batch statistics.
package summary

import (
	"sort"

	"github.com/exatrkx/trackgraph/engine/domain"
	"github.com/exatrkx/trackgraph/engine/graph"
	"github.com/exatrkx/trackgraph/engine/particles"
)

// SectorStats summarizes one sector's graph.
type SectorStats struct {
	S          domain.SectorID `json:"s"`
	EtaRange   [2]float64      `json:"eta_range"`
	PhiRange   [2]float64      `json:"phi_range"`
	NNodes     int             `json:"n_nodes"`
	NEdges     int             `json:"n_edges"`
	Purity     float64         `json:"purity"`
	Efficiency float64         `json:"efficiency"`
}

// Summary holds one event's aggregate graph statistics.
type Summary struct {
	EvtID  int `json:"evtid"`
	NNodes int `json:"n_nodes"`
	NEdges int `json:"n_edges"`
	NTrue  int `json:"n_true"`
	NFalse int `json:"n_false"`
	// Efficiency is total corrected true edges over the unsectored
	// expected segment count; Purity is over total edges.
	Efficiency float64 `json:"efficiency"`
	Purity     float64 `json:"purity"`
	// BoundaryFraction is the share of expected segments lost solely to
	// particles straddling sector boundaries.
	BoundaryFraction float64       `json:"boundary_fraction"`
	Sectors          []SectorStats `json:"sector_stats"`
}

// div is the pipeline-wide ratio rule: absence of data is a reportable zero,
// never a fault.
func div(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Summarize compiles per-sector and per-event statistics for one event.
// The corrected true-edge count per sector is sum(y) minus the sector's
// duplicate transition count, deliberately unclamped. Sector order in the
// result follows ascending (eta, phi).
func Summarize(evtid int, graphs []graph.Graph, props map[int]particles.Property,
	segsPerSector map[domain.SectorID]map[int]int, bounds map[domain.SectorID]domain.SectorBounds) Summary {

	totalSegs := 0
	for _, p := range props {
		totalSegs += p.NTrackSegs
	}

	sum := Summary{EvtID: evtid, Sectors: make([]SectorStats, 0, len(graphs))}
	sectoredSegs := 0
	for _, g := range graphs {
		nTrue := g.TrueEdges() - g.NIncorrect
		sum.NNodes += g.NumNodes()
		sum.NEdges += g.NumEdges()
		sum.NTrue += nTrue
		sum.NFalse += g.FalseEdges()

		segs := 0
		for _, n := range segsPerSector[g.S] {
			segs += n
		}
		sectoredSegs += segs

		b := bounds[g.S]
		sum.Sectors = append(sum.Sectors, SectorStats{
			S:          g.S,
			EtaRange:   [2]float64{b.EtaMin, b.EtaMax},
			PhiRange:   [2]float64{b.PhiMin, b.PhiMax},
			NNodes:     g.NumNodes(),
			NEdges:     g.NumEdges(),
			Purity:     div(float64(nTrue), float64(g.NumEdges())),
			Efficiency: div(float64(nTrue), float64(segs)),
		})
	}
	sort.Slice(sum.Sectors, func(i, j int) bool {
		a, b := sum.Sectors[i].S, sum.Sectors[j].S
		if a.Eta != b.Eta {
			return a.Eta < b.Eta
		}
		return a.Phi < b.Phi
	})

	sum.Efficiency = div(float64(sum.NTrue), float64(totalSegs))
	sum.Purity = div(float64(sum.NTrue), float64(sum.NEdges))
	sum.BoundaryFraction = div(float64(totalSegs-sectoredSegs), float64(totalSegs))
	return sum
}
