// Package sector partitions an event's hits into (eta, phi) detector sectors
// ahead of per-sector graph construction.
package sector

import (
	"github.com/exatrkx/trackgraph/engine/domain"
	"github.com/exatrkx/trackgraph/engine/geom"
)

// PhiEdges returns the ascending phi boundary array for n sectors over the
// full azimuth.
func PhiEdges(cfg domain.Config) []float64 {
	r := cfg.PhiRange()
	return geom.Linspace(r[0], r[1], cfg.NPhiSectors)
}

// EtaEdges returns the ascending eta boundary array for the configured range.
func EtaEdges(cfg domain.Config) []float64 {
	return geom.Linspace(cfg.EtaRange[0], cfg.EtaRange[1], cfg.NEtaSectors)
}

// Split partitions hits by the given phi and eta boundaries. Each sector's
// hits are a copy with phi recentred on the sector midpoint, so downstream
// linear cuts see a locally unwrapped azimuth. Boundaries are exclusive on
// both ends: hits exactly on a boundary belong to no sector. That is a
// deliberate, reproducibility-critical simplification.
func Split(hits []domain.Hit, phiEdges, etaEdges []float64) (map[domain.SectorID][]domain.Hit, map[domain.SectorID]domain.SectorBounds) {
	sectors := make(map[domain.SectorID][]domain.Hit)
	bounds := make(map[domain.SectorID]domain.SectorBounds)

	for i := 0; i < len(phiEdges)-1; i++ {
		phiMin, phiMax := phiEdges[i], phiEdges[i+1]
		mid := (phiMin + phiMax) / 2

		var phiHits []domain.Hit
		for _, h := range hits {
			if h.Phi > phiMin && h.Phi < phiMax {
				h.Phi -= mid
				phiHits = append(phiHits, h)
			}
		}

		for j := 0; j < len(etaEdges)-1; j++ {
			etaMin, etaMax := etaEdges[j], etaEdges[j+1]
			s := domain.SectorID{Eta: j, Phi: i}

			var secHits []domain.Hit
			for _, h := range phiHits {
				eta := geom.Eta(h.R, h.Z)
				if eta > etaMin && eta < etaMax {
					secHits = append(secHits, h)
				}
			}
			sectors[s] = secHits
			bounds[s] = domain.SectorBounds{
				EtaMin: etaMin, EtaMax: etaMax,
				PhiMin: phiMin, PhiMax: phiMax,
			}
		}
	}
	return sectors, bounds
}
