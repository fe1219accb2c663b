package detector

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/exatrkx/trackgraph/engine/domain"
)

// ModulePair keys one adjacency entry by the module ids of both hits.
type ModulePair struct {
	M1 int
	M2 int
}

// Adjacency is the set of module pairs flagged as adjacent for one layer
// pair. Pairs absent from the set are excluded regardless of geometry.
type Adjacency map[ModulePair]bool

// Allowed reports whether a hit pair on the given modules may form an edge.
func (a Adjacency) Allowed(m1, m2 int) bool {
	return a[ModulePair{m1, m2}]
}

// ModuleMaps holds one adjacency set per layer pair. A nil ModuleMaps (or a
// layer pair without an entry) means geometric cuts alone gate edges.
type ModuleMaps map[domain.LayerPair]Adjacency

// ForPair returns the adjacency set for a layer pair, or nil when none was
// supplied.
func (m ModuleMaps) ForPair(p domain.LayerPair) Adjacency {
	if m == nil {
		return nil
	}
	return m[p]
}

// moduleMapFile is the on-disk JSON layout: adjacent module-id pairs keyed
// by "l1-l2". Maps are precomputed offline from simulation.
type moduleMapFile map[string][][2]int

// LoadModuleMaps reads module adjacency maps from a JSON file.
func LoadModuleMaps(path string) (ModuleMaps, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("detector: read module maps: %w", err)
	}
	var file moduleMapFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("detector: parse module maps %s: %w", path, err)
	}

	maps := make(ModuleMaps, len(file))
	for key, pairs := range file {
		var lp domain.LayerPair
		if _, err := fmt.Sscanf(key, "%d-%d", &lp.L1, &lp.L2); err != nil {
			return nil, fmt.Errorf("detector: bad layer-pair key %q: %w", key, err)
		}
		adj := make(Adjacency, len(pairs))
		for _, mp := range pairs {
			adj[ModulePair{mp[0], mp[1]}] = true
		}
		maps[lp] = adj
	}
	return maps, nil
}
