package domain

import "fmt"

// ValidateConfig checks a Config before it is shared across workers.
func ValidateConfig(c Config) error {
	if c.PtMin < 0 {
		return NewValidationError("pt_min", fmt.Sprintf("%g", c.PtMin), ErrNegativePtMin)
	}
	if c.PhiSlopeMax <= 0 {
		return NewValidationError("phi_slope_max", fmt.Sprintf("%g", c.PhiSlopeMax), ErrNegativeCut)
	}
	if c.Z0Max <= 0 {
		return NewValidationError("z0_max", fmt.Sprintf("%g", c.Z0Max), ErrNegativeCut)
	}
	if c.NPhiSectors < 1 {
		return NewValidationError("n_phi_sectors", fmt.Sprintf("%d", c.NPhiSectors), ErrBadSectorCount)
	}
	if c.NEtaSectors < 1 {
		return NewValidationError("n_eta_sectors", fmt.Sprintf("%d", c.NEtaSectors), ErrBadSectorCount)
	}
	if c.EtaRange[0] >= c.EtaRange[1] {
		return NewValidationError("eta_range",
			fmt.Sprintf("[%g,%g]", c.EtaRange[0], c.EtaRange[1]), ErrBadEtaRange)
	}
	return nil
}
