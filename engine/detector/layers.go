// Package detector encodes the fixed TrackML detector geometry used by the
// pipeline: the (volume, layer) to dense-layer mapping, the set of valid
// layer-pair transitions, and the module adjacency maps.
package detector

import "github.com/exatrkx/trackgraph/engine/domain"

// VolumeLayer is a raw (volume_id, layer_id) pair from the event files.
type VolumeLayer struct {
	Volume int
	Layer  int
}

// barrelVolumeLayers are the four pixel-barrel layers, in dense-index order.
var barrelVolumeLayers = []VolumeLayer{
	{8, 2}, // 0
	{8, 4}, // 1
	{8, 6}, // 2
	{8, 8}, // 3
}

// endcapVolumeLayers extend the table with the left (volume 7) and right
// (volume 9) endcap disks, dense indices 4..17. Volume 7 disks are ordered
// innermost-first (decreasing layer id).
var endcapVolumeLayers = []VolumeLayer{
	{7, 14}, // 4
	{7, 12}, // 5
	{7, 10}, // 6
	{7, 8},  // 7
	{7, 6},  // 8
	{7, 4},  // 9
	{7, 2},  // 10
	{9, 2},  // 11
	{9, 4},  // 12
	{9, 6},  // 13
	{9, 8},  // 14
	{9, 10}, // 15
	{9, 12}, // 16
	{9, 14}, // 17
}

// Dense layer indices of the innermost endcap disks.
const (
	LeftEndcapInner  = 4
	RightEndcapInner = 11
)

// Geometry of the intersecting-line veto: a hit pair connecting one of the
// two innermost barrel layers to an innermost endcap disk is rejected when
// the line through the pair crosses the next barrel layer inside the barrel's
// longitudinal extent.
const (
	BarrelRadius1 = 71.56298065185547  // mm, mean radius of barrel layer 1
	BarrelRadius2 = 115.37811279296875 // mm, mean radius of barrel layer 2
	BarrelHalfZ   = 490.975            // mm
)

// LayerMap resolves raw (volume, layer) ids to dense layer indices 0..K-1.
type LayerMap struct {
	index  map[VolumeLayer]int
	layers int
}

// NewLayerMap builds the dense layer mapping. With endcaps disabled only the
// four barrel layers are mapped; anything else is unknown.
func NewLayerMap(endcaps bool) *LayerMap {
	vls := barrelVolumeLayers
	if endcaps {
		vls = append(append([]VolumeLayer{}, barrelVolumeLayers...), endcapVolumeLayers...)
	}
	m := &LayerMap{index: make(map[VolumeLayer]int, len(vls)), layers: len(vls)}
	for i, vl := range vls {
		m.index[vl] = i
	}
	return m
}

// Lookup returns the dense layer index for a raw (volume, layer) pair.
// Unknown combinations report ok=false and are silently excluded upstream.
func (m *LayerMap) Lookup(volume, layer int) (idx int, ok bool) {
	idx, ok = m.index[VolumeLayer{volume, layer}]
	return idx, ok
}

// Layers returns the number of mapped detector layers.
func (m *LayerMap) Layers() int { return m.layers }

// LayerPairs returns the ordered set of valid layer-pair transitions. The
// same set gates edge construction and per-particle reconstructability; the
// two uses must never diverge.
func LayerPairs(endcaps bool) []domain.LayerPair {
	pairs := []domain.LayerPair{{L1: 0, L2: 1}, {L1: 1, L2: 2}, {L1: 2, L2: 3}} // barrel chain
	if !endcaps {
		return pairs
	}
	return append(pairs, []domain.LayerPair{
		{L1: 0, L2: 4}, {L1: 1, L2: 4}, {L1: 2, L2: 4}, // barrel to left EC
		{L1: 0, L2: 11}, {L1: 1, L2: 11}, {L1: 2, L2: 11}, // barrel to right EC
		{L1: 4, L2: 5}, {L1: 5, L2: 6}, {L1: 6, L2: 7}, // left EC chain
		{L1: 7, L2: 8}, {L1: 8, L2: 9}, {L1: 9, L2: 10},
		{L1: 11, L2: 12}, {L1: 12, L2: 13}, {L1: 13, L2: 14}, // right EC chain
		{L1: 14, L2: 15}, {L1: 15, L2: 16}, {L1: 16, L2: 17},
	}...)
}

// PairSet converts a layer-pair list into a membership set.
func PairSet(pairs []domain.LayerPair) map[domain.LayerPair]bool {
	set := make(map[domain.LayerPair]bool, len(pairs))
	for _, p := range pairs {
		set[p] = true
	}
	return set
}

// BarrelToEndcapPairs is the set of transition layer pairs subject to the
// intersecting-line veto and to duplicate transition-edge accounting.
func BarrelToEndcapPairs() map[domain.LayerPair]bool {
	return map[domain.LayerPair]bool{
		{L1: 0, L2: LeftEndcapInner}: true, {L1: 1, L2: LeftEndcapInner}: true, {L1: 2, L2: LeftEndcapInner}: true,
		{L1: 0, L2: RightEndcapInner}: true, {L1: 1, L2: RightEndcapInner}: true, {L1: 2, L2: RightEndcapInner}: true,
	}
}
