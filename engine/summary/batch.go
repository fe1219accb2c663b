package summary

import (
	"math"

	"github.com/exatrkx/trackgraph/engine/domain"
)

// MeanStd is a sample mean with its population standard deviation, matching
// the original analysis convention.
type MeanStd struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// BatchStats aggregates event summaries across a batch.
type BatchStats struct {
	Events           int     `json:"events"`
	NNodes           MeanStd `json:"n_nodes"`
	NEdges           MeanStd `json:"n_edges"`
	Purity           MeanStd `json:"purity"`
	Efficiency       MeanStd `json:"efficiency"`
	BoundaryFraction MeanStd `json:"boundary_fraction"`
}

// SectorBatchStats aggregates one sector's stats across a batch.
type SectorBatchStats struct {
	S          domain.SectorID `json:"s"`
	EtaRange   [2]float64      `json:"eta_range"`
	PhiRange   [2]float64      `json:"phi_range"`
	NNodes     MeanStd         `json:"n_nodes"`
	NEdges     MeanStd         `json:"n_edges"`
	Purity     MeanStd         `json:"purity"`
	Efficiency MeanStd         `json:"efficiency"`
}

func meanStd(vals []float64) MeanStd {
	if len(vals) == 0 {
		return MeanStd{}
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	var sq float64
	for _, v := range vals {
		sq += (v - mean) * (v - mean)
	}
	return MeanStd{Mean: mean, Std: math.Sqrt(sq / float64(len(vals)))}
}

// Aggregate computes batch-level mean/std statistics over event summaries.
func Aggregate(sums []Summary) BatchStats {
	n := len(sums)
	nodes := make([]float64, n)
	edges := make([]float64, n)
	purity := make([]float64, n)
	eff := make([]float64, n)
	boundary := make([]float64, n)
	for i, s := range sums {
		nodes[i] = float64(s.NNodes)
		edges[i] = float64(s.NEdges)
		purity[i] = s.Purity
		eff[i] = s.Efficiency
		boundary[i] = s.BoundaryFraction
	}
	return BatchStats{
		Events:           n,
		NNodes:           meanStd(nodes),
		NEdges:           meanStd(edges),
		Purity:           meanStd(purity),
		Efficiency:       meanStd(eff),
		BoundaryFraction: meanStd(boundary),
	}
}

// AggregateSectors computes per-sector mean/std statistics across events.
// The result follows each event's sector ordering (ascending eta, phi);
// sector bounds are constant across a batch and taken from the last event.
func AggregateSectors(sums []Summary) []SectorBatchStats {
	perSector := make(map[domain.SectorID]*SectorBatchStats)
	samples := make(map[domain.SectorID]*[4][]float64) // nodes, edges, purity, efficiency
	var order []domain.SectorID
	for _, sum := range sums {
		for _, st := range sum.Sectors {
			acc, ok := samples[st.S]
			if !ok {
				acc = &[4][]float64{}
				samples[st.S] = acc
				perSector[st.S] = &SectorBatchStats{S: st.S}
				order = append(order, st.S)
			}
			perSector[st.S].EtaRange = st.EtaRange
			perSector[st.S].PhiRange = st.PhiRange
			acc[0] = append(acc[0], float64(st.NNodes))
			acc[1] = append(acc[1], float64(st.NEdges))
			acc[2] = append(acc[2], st.Purity)
			acc[3] = append(acc[3], st.Efficiency)
		}
	}

	out := make([]SectorBatchStats, 0, len(order))
	for _, s := range order {
		st := perSector[s]
		acc := samples[s]
		st.NNodes = meanStd(acc[0])
		st.NEdges = meanStd(acc[1])
		st.Purity = meanStd(acc[2])
		st.Efficiency = meanStd(acc[3])
		out = append(out, *st)
	}
	return out
}
