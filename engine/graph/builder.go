package graph

import (
	"math"

	"github.com/exatrkx/trackgraph/engine/detector"
	"github.com/exatrkx/trackgraph/engine/domain"
	"github.com/exatrkx/trackgraph/engine/geom"
)

// Cuts holds the geometric edge-selection thresholds. Both comparisons are
// strict.
type Cuts struct {
	PhiSlopeMax float64
	Z0Max       float64
}

// Build constructs the candidate graph for one sector. Edges are generated
// only between hits of declared layer pairs, in the declared order, and kept
// when they pass the phi-slope and z0 cuts, the intersecting-layer veto, and
// (when a module map covers the pair) module adjacency. Layer pairs with no
// hits on either side contribute nothing.
func Build(hits []domain.Hit, pairs []domain.LayerPair, cuts Cuts, maps detector.ModuleMaps, scale [3]float64, s domain.SectorID) Graph {
	byLayer := make(map[int][]int)
	for i, h := range hits {
		byLayer[h.Layer] = append(byLayer[h.Layer], i)
	}

	var src, dst []int
	var dr, dphi, dz, dR []float64
	for _, pair := range pairs {
		hits1, hits2 := byLayer[pair.L1], byLayer[pair.L2]
		if len(hits1) == 0 || len(hits2) == 0 {
			continue
		}
		adj := maps.ForPair(pair)

		for _, i1 := range hits1 {
			h1 := hits[i1]
			for _, i2 := range hits2 {
				h2 := hits[i2]
				if adj != nil && !adj.Allowed(h1.ModuleID, h2.ModuleID) {
					continue
				}

				edphi := geom.DeltaPhi(h1.Phi, h2.Phi)
				edz := h2.Z - h1.Z
				edr := h2.R - h1.R

				// A vanishing dr makes phiSlope and z0 non-finite;
				// the strict cuts below then reject the pair.
				phiSlope := edphi / edr
				z0 := h1.Z - h1.R*edz/edr

				if !(math.Abs(phiSlope) < cuts.PhiSlopeMax) {
					continue
				}
				if !(math.Abs(z0) < cuts.Z0Max) {
					continue
				}
				if intersectsInnerBarrel(pair.L1, pair.L2, edz/edr, z0) {
					continue
				}

				deta := geom.Eta(h2.R, h2.Z) - geom.Eta(h1.R, h1.Z)
				src = append(src, i1)
				dst = append(dst, i2)
				dr = append(dr, edr)
				dphi = append(dphi, edphi)
				dz = append(dz, edz)
				dR = append(dR, math.Hypot(deta, edphi))
			}
		}
	}

	g := Graph{
		X: make([][3]float32, len(hits)),
		S: s,
	}
	for i, h := range hits {
		g.X[i] = [3]float32{
			float32(h.R / scale[0]),
			float32(h.Phi / scale[1]),
			float32(h.Z / scale[2]),
		}
	}
	if len(src) == 0 {
		return g
	}

	g.EdgeIndex = [2][]int{src, dst}
	g.EdgeAttr = [4][]float64{
		scaled(dr, scale[0]),
		scaled(dphi, scale[1]),
		scaled(dz, scale[2]),
		dR,
	}
	g.Y = make([]float32, len(src))
	for k := range src {
		pid1, pid2 := hits[src[k]].ParticleID, hits[dst[k]].ParticleID
		if pid1 == pid2 && pid1 > 0 {
			g.Y[k] = 1
		}
	}
	g.NIncorrect = countDuplicateTransitions(hits, src, dst, g.Y)
	return g
}

// intersectsInnerBarrel vetoes hit pairs whose connecting line crosses an
// intervening barrel layer inside the barrel's longitudinal extent. Only the
// two innermost barrel layers paired with an innermost endcap disk are
// affected; every other layer pair passes.
func intersectsInnerBarrel(l1, l2 int, dzdr, z0 float64) bool {
	if l2 != detector.LeftEndcapInner && l2 != detector.RightEndcapInner {
		return false
	}
	var radius float64
	switch l1 {
	case 0:
		radius = detector.BarrelRadius1
	case 1:
		radius = detector.BarrelRadius2
	default:
		return false
	}
	zc := radius*dzdr + z0
	return zc > -detector.BarrelHalfZ && zc < detector.BarrelHalfZ
}

func scaled(vals []float64, scale float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v / scale
	}
	return out
}
