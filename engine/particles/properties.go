// Package particles derives per-particle truth quantities: kinematics,
// reconstructability, and expected track-segment counts, globally and per
// sector.
package particles

import (
	"sort"

	"github.com/exatrkx/trackgraph/engine/domain"
	"github.com/exatrkx/trackgraph/pkg/fn"
)

// Property is the per-particle truth record computed over a whole event.
type Property struct {
	Pt  float64 `json:"pt"`
	Eta float64 `json:"eta"`
	// NTrackSegs is a combinatorial upper bound on the true edges the
	// particle can contribute: the product of per-layer hit counts,
	// summed over its valid consecutive layer pairs.
	NTrackSegs int `json:"n_track_segs"`
	// Reconstructable is true iff every consecutive layer pair of the
	// particle is a valid detector transition.
	Reconstructable bool `json:"reconstructable"`
}

// GroupByParticle buckets hits by their dense particle id.
func GroupByParticle(hits []domain.Hit) map[int][]domain.Hit {
	return fn.GroupBy(hits, func(h domain.Hit) int { return h.ParticleID })
}

// Properties computes the truth record for every particle with hits in the
// event. Noise (id 0) always yields a zero record. Kinematics come from the
// particle table; segment counts from the hit layer profile.
func Properties(byPID map[int][]domain.Hit, parts []domain.Particle, validPairs map[domain.LayerPair]bool) map[int]Property {
	kin := make(map[int]domain.Particle, len(parts))
	for _, p := range parts {
		kin[p.ID] = p
	}

	props := make(map[int]Property, len(byPID))
	for pid, hits := range byPID {
		if pid == 0 {
			props[0] = Property{}
			continue
		}
		p := Property{Pt: kin[pid].Pt, Eta: kin[pid].EtaPt}

		layers, perLayer := layerProfile(hits)
		if len(layers) == 1 {
			// A single-layer particle produces no segments and is
			// never reconstructable.
			props[pid] = p
			continue
		}

		p.Reconstructable = true
		for k := 0; k < len(layers)-1; k++ {
			lp := domain.LayerPair{L1: layers[k], L2: layers[k+1]}
			if !validPairs[lp] {
				p.Reconstructable = false
				continue
			}
			p.NTrackSegs += perLayer[lp.L1] * perLayer[lp.L2]
		}
		props[pid] = p
	}
	return props
}

// TrackSegments computes only the expected segment count per particle for a
// hit subset, typically one sector's hits. A particle's global
// reconstructability is sector-independent, but its segment yield is not.
func TrackSegments(byPID map[int][]domain.Hit, validPairs map[domain.LayerPair]bool) map[int]int {
	segs := make(map[int]int, len(byPID))
	for pid, hits := range byPID {
		if pid == 0 {
			segs[0] = 0
			continue
		}
		layers, perLayer := layerProfile(hits)
		n := 0
		for k := 0; k < len(layers)-1; k++ {
			lp := domain.LayerPair{L1: layers[k], L2: layers[k+1]}
			if validPairs[lp] {
				n += perLayer[lp.L1] * perLayer[lp.L2]
			}
		}
		segs[pid] = n
	}
	return segs
}

// layerProfile returns the sorted unique layers a particle hit and its hit
// multiplicity per layer. Consecutive pairs are formed from the sorted
// order, matching a monotonic trajectory through increasing layer index.
func layerProfile(hits []domain.Hit) ([]int, map[int]int) {
	perLayer := make(map[int]int)
	for _, h := range hits {
		perLayer[h.Layer]++
	}
	layers := make([]int, 0, len(perLayer))
	for l := range perLayer {
		layers = append(layers, l)
	}
	sort.Ints(layers)
	return layers, perLayer
}
