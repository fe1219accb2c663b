package detector

import (
	"testing"

	"github.com/exatrkx/trackgraph/engine/domain"
)

func TestLayerMapBarrelOnly(t *testing.T) {
	m := NewLayerMap(false)
	if m.Layers() != 4 {
		t.Fatalf("expected 4 layers, got %d", m.Layers())
	}
	idx, ok := m.Lookup(8, 2)
	if !ok || idx != 0 {
		t.Fatalf("Lookup(8, 2) = %d, %v", idx, ok)
	}
	if _, ok := m.Lookup(7, 14); ok {
		t.Fatal("endcap volume should be unknown without endcaps")
	}
	if _, ok := m.Lookup(8, 3); ok {
		t.Fatal("odd layer id should be unknown")
	}
}

func TestLayerMapWithEndcaps(t *testing.T) {
	m := NewLayerMap(true)
	if m.Layers() != 18 {
		t.Fatalf("expected 18 layers, got %d", m.Layers())
	}
	tests := []struct {
		volume, layer, want int
	}{
		{8, 8, 3},
		{7, 14, LeftEndcapInner},  // innermost left disk
		{7, 2, 10},                // outermost left disk
		{9, 2, RightEndcapInner},  // innermost right disk
		{9, 14, 17},
	}
	for _, tt := range tests {
		idx, ok := m.Lookup(tt.volume, tt.layer)
		if !ok || idx != tt.want {
			t.Errorf("Lookup(%d, %d) = %d, %v, want %d", tt.volume, tt.layer, idx, ok, tt.want)
		}
	}
}

func TestLayerPairs(t *testing.T) {
	barrel := LayerPairs(false)
	if len(barrel) != 3 {
		t.Fatalf("expected 3 barrel pairs, got %d", len(barrel))
	}

	full := LayerPairs(true)
	set := PairSet(full)
	if len(set) != len(full) {
		t.Fatal("duplicate layer pairs")
	}
	for p := range BarrelToEndcapPairs() {
		if !set[p] {
			t.Errorf("transition pair %v missing from layer pairs", p)
		}
	}
	// Endcap chains are consecutive disk pairs only.
	if set[(domain.LayerPair{L1: 4, L2: 6})] {
		t.Fatal("non-consecutive endcap pair should not be valid")
	}
	if set[(domain.LayerPair{L1: 10, L2: 11})] {
		t.Fatal("left and right endcaps must not connect")
	}
}
