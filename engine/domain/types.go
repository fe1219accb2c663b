// Package domain defines the core detector-event types, configuration, and
// validation for the trackgraph pipeline. It acts as the validation gate at
// pipeline entry points.
package domain

// RawHit is a single detector measurement as read from an event file,
// before selection and annotation.
type RawHit struct {
	HitID    int     `json:"hit_id"`
	X        float64 `json:"x"` // mm
	Y        float64 `json:"y"` // mm
	Z        float64 `json:"z"` // mm
	VolumeID int     `json:"volume_id"`
	LayerID  int     `json:"layer_id"`
	ModuleID int     `json:"module_id"`
}

// TruthRow associates a hit with the particle that produced it.
// ParticleID 0 marks a noise hit.
type TruthRow struct {
	HitID      int   `json:"hit_id"`
	ParticleID int64 `json:"particle_id"`
}

// RawParticle is a generated particle as read from an event file.
type RawParticle struct {
	ParticleID int64   `json:"particle_id"`
	Px         float64 `json:"px"` // GeV
	Py         float64 `json:"py"` // GeV
	Pz         float64 `json:"pz"` // GeV
}

// EventRef identifies one event in a dataset directory: its numeric id and
// the shared path prefix of its CSV files.
type EventRef struct {
	ID     int    `json:"id"`
	Prefix string `json:"prefix"`
}

// Event bundles the three raw tables of one detector event.
type Event struct {
	ID        int
	Hits      []RawHit
	Truth     []TruthRow
	Particles []RawParticle
}

// Hit is a selected hit with derived cylindrical coordinates, a dense layer
// index, and a dense particle id (0 = noise). Immutable once selected; a
// sector's hits are a filtered, phi-recentred copy.
type Hit struct {
	HitID      int     `json:"hit_id"`
	R          float64 `json:"r"`
	Phi        float64 `json:"phi"`
	Eta        float64 `json:"eta"`
	Z          float64 `json:"z"`
	Layer      int     `json:"layer"`
	ModuleID   int     `json:"module_id"`
	ParticleID int     `json:"particle_id"`
	EvtID      int     `json:"evtid"`
}

// Particle is a pt-selected particle with momentum-derived kinematics and a
// dense id in 1..N (0 is reserved for noise).
type Particle struct {
	ID    int     `json:"particle_id"`
	Pt    float64 `json:"pt"`
	EtaPt float64 `json:"eta_pt"`
}

// LayerPair is an ordered pair of dense layer indices representing a
// physically valid hit-to-hit transition.
type LayerPair struct {
	L1 int `json:"l1"`
	L2 int `json:"l2"`
}

// SectorID labels an (eta, phi) detector sector.
type SectorID struct {
	Eta int `json:"eta_sector"`
	Phi int `json:"phi_sector"`
}

// SectorBounds holds the open-interval eta and phi bounds of one sector.
type SectorBounds struct {
	EtaMin float64 `json:"eta_min"`
	EtaMax float64 `json:"eta_max"`
	PhiMin float64 `json:"phi_min"`
	PhiMax float64 `json:"phi_max"`
}
