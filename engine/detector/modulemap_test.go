package detector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/exatrkx/trackgraph/engine/domain"
)

func TestLoadModuleMaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maps.json")
	content := `{"0-1": [[10, 20], [10, 21]], "1-2": [[30, 40]]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	maps, err := LoadModuleMaps(path)
	if err != nil {
		t.Fatalf("LoadModuleMaps: %v", err)
	}
	if len(maps) != 2 {
		t.Fatalf("expected 2 layer pairs, got %d", len(maps))
	}

	adj := maps.ForPair(domain.LayerPair{L1: 0, L2: 1})
	if adj == nil {
		t.Fatal("missing adjacency for 0-1")
	}
	if !adj.Allowed(10, 20) || !adj.Allowed(10, 21) {
		t.Fatal("expected listed module pairs to be allowed")
	}
	if adj.Allowed(20, 10) {
		t.Fatal("adjacency is directional, reversed pair must be excluded")
	}
	if adj.Allowed(99, 99) {
		t.Fatal("unlisted module pair must be excluded")
	}
}

func TestLoadModuleMapsBadKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maps.json")
	if err := os.WriteFile(path, []byte(`{"zero-one": [[1, 2]]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadModuleMaps(path); err == nil {
		t.Fatal("expected error for malformed layer-pair key")
	}
}

func TestModuleMapsNilSafe(t *testing.T) {
	var maps ModuleMaps
	if adj := maps.ForPair(domain.LayerPair{L1: 0, L2: 1}); adj != nil {
		t.Fatal("nil maps must yield nil adjacency")
	}
}
