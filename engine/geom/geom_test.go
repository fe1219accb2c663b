package geom

import (
	"math"
	"testing"
)

func TestDeltaPhiWraps(t *testing.T) {
	tests := []struct {
		name       string
		phi1, phi2 float64
		want       float64
	}{
		{"no wrap", 0.5, 1.0, 0.5},
		{"negative", 1.0, 0.5, -0.5},
		{"wrap positive", -3.0, 3.0, 6.0 - 2*math.Pi},
		{"wrap negative", 3.0, -3.0, 2*math.Pi - 6.0},
		{"zero", 1.2, 1.2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeltaPhi(tt.phi1, tt.phi2)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("DeltaPhi(%v, %v) = %v, want %v", tt.phi1, tt.phi2, got, tt.want)
			}
			if got > math.Pi || got < -math.Pi {
				t.Fatalf("DeltaPhi(%v, %v) = %v outside (-pi, pi]", tt.phi1, tt.phi2, got)
			}
		})
	}
}

func TestEta(t *testing.T) {
	// On the transverse plane eta is zero.
	if got := Eta(100, 0); math.Abs(got) > 1e-12 {
		t.Fatalf("Eta(100, 0) = %v, want 0", got)
	}
	// Forward z gives positive eta, backward negative, symmetrically.
	fwd := Eta(100, 250)
	bwd := Eta(100, -250)
	if fwd <= 0 {
		t.Fatalf("Eta(100, 250) = %v, want > 0", fwd)
	}
	if math.Abs(fwd+bwd) > 1e-12 {
		t.Fatalf("eta not symmetric: %v vs %v", fwd, bwd)
	}
	// Cross-check against the sinh identity: z = r*sinh(eta).
	eta := Eta(72, 310)
	if math.Abs(72*math.Sinh(eta)-310) > 1e-9 {
		t.Fatalf("eta %v does not satisfy z = r*sinh(eta)", eta)
	}
}

func TestPolar(t *testing.T) {
	r, phi := Polar(3, 4)
	if math.Abs(r-5) > 1e-12 {
		t.Fatalf("r = %v, want 5", r)
	}
	if math.Abs(phi-math.Atan2(4, 3)) > 1e-12 {
		t.Fatalf("phi = %v", phi)
	}
}

func TestLinspace(t *testing.T) {
	edges := Linspace(-math.Pi, math.Pi, 8)
	if len(edges) != 9 {
		t.Fatalf("expected 9 edges, got %d", len(edges))
	}
	if edges[0] != -math.Pi || edges[8] != math.Pi {
		t.Fatalf("bad endpoints: %v, %v", edges[0], edges[8])
	}
	step := edges[1] - edges[0]
	for i := 1; i < len(edges); i++ {
		if math.Abs(edges[i]-edges[i-1]-step) > 1e-12 {
			t.Fatalf("uneven step at %d", i)
		}
	}
}
