// Package selection filters and annotates raw event tables: layer remapping,
// transverse-momentum selection, noise and duplicate handling, and dense
// particle-id relabeling.
package selection

import (
	"math"

	"github.com/exatrkx/trackgraph/engine/detector"
	"github.com/exatrkx/trackgraph/engine/domain"
	"github.com/exatrkx/trackgraph/engine/geom"
)

// kinematics carries momentum-derived quantities of a pt-selected particle.
type kinematics struct {
	pt    float64
	etaPt float64
}

// SelectHits cleans one event's raw tables into annotated hits and
// dense-indexed particles.
//
// Hits whose (volume, layer) is outside the layer table are dropped, as are
// hits of particles below the pt threshold. Noise hits (particle id 0) are
// kept only when RemoveNoise is unset. With RemoveDuplicates set, each
// (particle, layer) group keeps only its smallest-radius hit. Surviving
// particle ids are relabeled into 1..N, with 0 left for noise. Empty inputs
// yield empty outputs.
func SelectHits(ev domain.Event, cfg domain.Config, layers *detector.LayerMap) ([]domain.Hit, []domain.Particle) {
	// Particle kinematics and pt selection, preserving table order.
	kin := make(map[int64]kinematics)
	var keptOrder []int64
	for _, p := range ev.Particles {
		pt := math.Hypot(p.Px, p.Py)
		if pt <= cfg.PtMin {
			continue
		}
		kin[p.ParticleID] = kinematics{pt: pt, etaPt: geom.Eta(pt, p.Pz)}
		keptOrder = append(keptOrder, p.ParticleID)
	}

	truth := make(map[int]int64, len(ev.Truth))
	for _, t := range ev.Truth {
		truth[t.HitID] = t.ParticleID
	}

	// Bucket hits by dense layer so output follows layer order.
	buckets := make([][]domain.Hit, layers.Layers())
	rawPID := make(map[int]int64) // hit id -> raw particle id
	for _, rh := range ev.Hits {
		layer, ok := layers.Lookup(rh.VolumeID, rh.LayerID)
		if !ok {
			continue
		}
		pid, ok := truth[rh.HitID]
		if !ok {
			continue
		}
		if pid == 0 {
			if cfg.RemoveNoise {
				continue
			}
		} else if _, ok := kin[pid]; !ok {
			continue // particle below pt threshold
		}
		r, phi := geom.Polar(rh.X, rh.Y)
		buckets[layer] = append(buckets[layer], domain.Hit{
			HitID:    rh.HitID,
			R:        r,
			Phi:      phi,
			Eta:      geom.Eta(r, rh.Z),
			Z:        rh.Z,
			Layer:    layer,
			ModuleID: rh.ModuleID,
			EvtID:    ev.ID,
		})
		rawPID[rh.HitID] = pid
	}

	var hits []domain.Hit
	for _, b := range buckets {
		hits = append(hits, b...)
	}

	if cfg.RemoveDuplicates {
		hits = dropDuplicates(hits, rawPID)
	}

	// Relabel surviving particle ids into a dense 1..N space.
	present := make(map[int64]bool, len(hits))
	for _, h := range hits {
		present[rawPID[h.HitID]] = true
	}
	idMap := map[int64]int{0: 0}
	var particles []domain.Particle
	for _, pid := range keptOrder {
		if !present[pid] {
			continue
		}
		dense := len(particles) + 1
		idMap[pid] = dense
		k := kin[pid]
		particles = append(particles, domain.Particle{ID: dense, Pt: k.pt, EtaPt: k.etaPt})
	}
	for i := range hits {
		hits[i].ParticleID = idMap[rawPID[hits[i].HitID]]
	}
	return hits, particles
}

// particleLayer keys a duplicate-removal group.
type particleLayer struct {
	pid   int64
	layer int
}

// dropDuplicates keeps, for every (particle, layer) group, only the hit
// closest to the beamline. Noise hits pass through untouched.
func dropDuplicates(hits []domain.Hit, rawPID map[int]int64) []domain.Hit {
	best := make(map[particleLayer]int) // group -> index of min-r hit
	for i, h := range hits {
		pid := rawPID[h.HitID]
		if pid == 0 {
			continue
		}
		key := particleLayer{pid, h.Layer}
		if j, ok := best[key]; !ok || h.R < hits[j].R {
			best[key] = i
		}
	}
	keep := make(map[int]bool, len(best))
	for _, i := range best {
		keep[i] = true
	}
	out := hits[:0]
	for i, h := range hits {
		if rawPID[h.HitID] == 0 || keep[i] {
			out = append(out, h)
		}
	}
	return out
}
