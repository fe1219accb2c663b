package graph

import (
	"github.com/exatrkx/trackgraph/engine/detector"
	"github.com/exatrkx/trackgraph/engine/domain"
)

// countDuplicateTransitions counts particles whose true edges survive under
// more than one distinct barrel-to-endcap transition type. The intersecting
// line cut can misfire near the barrel edge and leave one such duplicate per
// extra transition type; the count flags affected particles (one each, not
// one per edge) so the summary can subtract them from naive true-edge totals.
// The duplicate edges themselves stay in the graph.
func countDuplicateTransitions(hits []domain.Hit, src, dst []int, y []float32) int {
	transitions := detector.BarrelToEndcapPairs()

	perParticle := make(map[int]map[domain.LayerPair]bool)
	for k := range src {
		if y[k] != 1 {
			continue
		}
		lp := domain.LayerPair{L1: hits[src[k]].Layer, L2: hits[dst[k]].Layer}
		if !transitions[lp] {
			continue
		}
		pid := hits[src[k]].ParticleID
		if perParticle[pid] == nil {
			perParticle[pid] = make(map[domain.LayerPair]bool)
		}
		perParticle[pid][lp] = true
	}

	n := 0
	for _, types := range perParticle {
		if len(types) > 1 {
			n++
		}
	}
	return n
}
