package sector

import (
	"math"
	"testing"

	"github.com/exatrkx/trackgraph/engine/domain"
)

func hitAt(id int, phi, eta float64) domain.Hit {
	// Pick r and solve z so the hit lands at the requested eta.
	r := 100.0
	return domain.Hit{HitID: id, R: r, Phi: phi, Eta: eta, Z: r * math.Sinh(eta)}
}

func TestSplitCoversAllSectors(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.NPhiSectors = 4
	cfg.NEtaSectors = 2

	sectors, bounds := Split(nil, PhiEdges(cfg), EtaEdges(cfg))
	if len(sectors) != 8 || len(bounds) != 8 {
		t.Fatalf("expected 8 sectors, got %d sectors, %d bounds", len(sectors), len(bounds))
	}
	for s, b := range bounds {
		if b.PhiMin >= b.PhiMax || b.EtaMin >= b.EtaMax {
			t.Fatalf("sector %v has inverted bounds %+v", s, b)
		}
	}
}

func TestSplitAssignsEachHitOnce(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.NPhiSectors = 8
	cfg.NEtaSectors = 2

	hits := []domain.Hit{
		hitAt(1, 0.1, -2.5),
		hitAt(2, 0.1, 2.5),
		hitAt(3, -3.0, 0.5),
		hitAt(4, 3.0, -0.5),
		hitAt(5, 2.2, 4.0),
	}
	sectors, _ := Split(hits, PhiEdges(cfg), EtaEdges(cfg))

	seen := make(map[int]int)
	for _, secHits := range sectors {
		for _, h := range secHits {
			seen[h.HitID]++
		}
	}
	if len(seen) != len(hits) {
		t.Fatalf("expected %d hits assigned, got %d", len(hits), len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("hit %d assigned to %d sectors", id, n)
		}
	}
}

func TestSplitDropsBoundaryHits(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.NPhiSectors = 4
	cfg.NEtaSectors = 2
	phiEdges := PhiEdges(cfg)
	etaEdges := EtaEdges(cfg)

	onPhiEdge := hitAt(1, phiEdges[1], 1.0)
	onEtaEdge := hitAt(2, 0.1, etaEdges[1])
	// Eta is recomputed from (r, z); make z land exactly on the boundary.
	onEtaEdge.Z = onEtaEdge.R * math.Sinh(etaEdges[1])

	sectors, _ := Split([]domain.Hit{onPhiEdge, onEtaEdge}, phiEdges, etaEdges)
	for s, secHits := range sectors {
		if len(secHits) != 0 {
			t.Fatalf("boundary hits must be dropped, sector %v got %v", s, secHits)
		}
	}
}

func TestSplitRecentresPhi(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.NPhiSectors = 4
	cfg.NEtaSectors = 1
	phiEdges := PhiEdges(cfg)

	// A hit in the middle of phi sector 2 must come out with phi near zero.
	mid := (phiEdges[2] + phiEdges[3]) / 2
	hits := []domain.Hit{hitAt(1, mid+0.05, 0.3)}

	sectors, _ := Split(hits, phiEdges, EtaEdges(cfg))
	secHits := sectors[domain.SectorID{Eta: 0, Phi: 2}]
	if len(secHits) != 1 {
		t.Fatalf("expected hit in sector (0,2), got %v", sectors)
	}
	if math.Abs(secHits[0].Phi-0.05) > 1e-12 {
		t.Fatalf("recentred phi = %v, want 0.05", secHits[0].Phi)
	}
	// The original slice must be untouched.
	if hits[0].Phi != mid+0.05 {
		t.Fatalf("input hit mutated: %v", hits[0].Phi)
	}
}
