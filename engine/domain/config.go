package domain

import "math"

// Config is the immutable pipeline configuration. One value is built per run
// (or per sweep cell) and shared read-only across event workers.
type Config struct {
	// PtMin drops particles with transverse momentum at or below this
	// threshold, in GeV.
	PtMin float64 `json:"pt_min"`
	// PhiSlopeMax and Z0Max are the geometric edge cuts.
	PhiSlopeMax float64 `json:"phi_slope_max"`
	Z0Max       float64 `json:"z0_max"` // mm
	// Sector grid.
	NPhiSectors int        `json:"n_phi_sectors"`
	NEtaSectors int        `json:"n_eta_sectors"`
	EtaRange    [2]float64 `json:"eta_range"`
	// Endcaps extends the layer table and layer pairs beyond the barrel.
	Endcaps bool `json:"endcaps"`
	// RemoveNoise drops hits with particle id 0.
	RemoveNoise bool `json:"remove_noise"`
	// RemoveDuplicates keeps only the smallest-radius hit per
	// (particle, layer).
	RemoveDuplicates bool `json:"remove_duplicates"`
}

// DefaultConfig mirrors the production graph-construction settings.
func DefaultConfig() Config {
	return Config{
		PtMin:            2, // GeV
		PhiSlopeMax:      0.0006,
		Z0Max:            15000,
		NPhiSectors:      8,
		NEtaSectors:      2,
		EtaRange:         [2]float64{-5, 5},
		Endcaps:          true,
		RemoveNoise:      true,
		RemoveDuplicates: true,
	}
}

// PhiRange is fixed: sectors always tile the full azimuth.
func (Config) PhiRange() [2]float64 {
	return [2]float64{-math.Pi, math.Pi}
}

// FeatureScale returns the per-feature node scaling (r, phi, z). The phi
// scale follows the sector granularity so network inputs stay in a
// comparable range across sweeps.
func (c Config) FeatureScale() [3]float64 {
	return [3]float64{1000, math.Pi / float64(c.NPhiSectors), 1000}
}
